package announcement

import (
	"github.com/pulsehub/pulsehub/internal/announcement/repository"
	"github.com/pulsehub/pulsehub/internal/announcement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("announcement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
