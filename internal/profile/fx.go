package profile

import (
	"github.com/pulsehub/pulsehub/internal/profile/repository"
	"github.com/pulsehub/pulsehub/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
