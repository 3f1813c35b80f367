package payment

import (
	"github.com/vitalpath/vitalpath/internal/config"
	"github.com/vitalpath/vitalpath/internal/payment/domain"
	"github.com/vitalpath/vitalpath/internal/payment/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.gateway",
	fx.Provide(func(cfg config.Config) domain.Gateway {
		return stripe.NewClient(cfg)
	}),
)
