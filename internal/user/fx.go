package user

import (
	"github.com/vitalpath/vitalpath/internal/user/repository"
	"github.com/vitalpath/vitalpath/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
