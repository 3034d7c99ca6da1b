package event

import (
	"github.com/pulsehub/pulsehub/internal/event/repository"
	"github.com/pulsehub/pulsehub/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
