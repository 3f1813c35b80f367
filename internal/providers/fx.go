package providers

import (
	"github.com/vitalpath/vitalpath/internal/providers/email"
	"github.com/vitalpath/vitalpath/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
