package reconcile

import (
	"github.com/vitalpath/vitalpath/internal/reconcile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconcile.service",
	fx.Provide(service.New),
)
