package providers

import (
	"github.com/pulsehub/pulsehub/internal/providers/email"
	"github.com/pulsehub/pulsehub/internal/providers/payment"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	payment.Module,
)
