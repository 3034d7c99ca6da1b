package spacectx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// SpaceContextKey is the request context key for the active space ID.
type SpaceContextKey struct{}

// WithSpaceID stores the space ID in the context.
func WithSpaceID(ctx context.Context, spaceID int64) context.Context {
	return context.WithValue(ctx, SpaceContextKey{}, spaceID)
}

// SpaceIDFromContext returns the space ID from context, if set.
func SpaceIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	value := ctx.Value(SpaceContextKey{})
	if value == nil {
		return 0, false
	}
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
