package space

import (
	"github.com/pulsehub/pulsehub/internal/space/repository"
	"github.com/pulsehub/pulsehub/internal/space/service"
	"go.uber.org/fx"
)

var Module = fx.Module("space.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
