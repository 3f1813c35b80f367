package email

import (
	"github.com/vitalpath/vitalpath/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.email",
	fx.Provide(func(cfg config.Config) Provider {
		if cfg.SMTP.Host == "" {
			return &NoOpProvider{}
		}
		return NewSMTP(cfg.SMTP)
	}),
)
