package ticket

import (
	"github.com/pulsehub/pulsehub/internal/ticket/repository"
	"github.com/pulsehub/pulsehub/internal/ticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ticket.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
