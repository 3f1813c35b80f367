package guestsession

import (
	"github.com/vitalpath/vitalpath/internal/guestsession/repository"
	"github.com/vitalpath/vitalpath/internal/guestsession/service"
	"go.uber.org/fx"
)

var Module = fx.Module("guestsession.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
