package catalog

import (
	"github.com/vitalpath/vitalpath/internal/catalog/repository"
	"github.com/vitalpath/vitalpath/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
