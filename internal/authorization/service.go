package authorization

import (
	"context"
	"errors"

	"go.uber.org/fx"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidSpace  = errors.New("invalid_space")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)

// Service answers whether an actor may perform an action on an object
// within a space. Actors are encoded as "user:<id>" or "system".
type Service interface {
	Authorize(ctx context.Context, actor string, spaceID string, object string, action string) error
}

var Module = fx.Module("authorization",
	fx.Provide(
		NewEnforcer,
		NewService,
	),
)
