package notification

import (
	"github.com/pulsehub/pulsehub/internal/notification/repository"
	"github.com/pulsehub/pulsehub/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
