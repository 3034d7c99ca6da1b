package course

import (
	"github.com/pulsehub/pulsehub/internal/course/repository"
	"github.com/pulsehub/pulsehub/internal/course/service"
	"go.uber.org/fx"
)

var Module = fx.Module("course.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
