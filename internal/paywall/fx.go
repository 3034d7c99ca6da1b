package paywall

import (
	"github.com/pulsehub/pulsehub/internal/paywall/repository"
	"github.com/pulsehub/pulsehub/internal/paywall/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paywall.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
