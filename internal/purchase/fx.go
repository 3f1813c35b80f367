package purchase

import (
	"github.com/vitalpath/vitalpath/internal/purchase/repository"
	"github.com/vitalpath/vitalpath/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
