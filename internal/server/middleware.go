package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	spacedomain "github.com/pulsehub/pulsehub/internal/space/domain"
	"github.com/pulsehub/pulsehub/internal/spacectx"
)

const (
	HeaderSpace = "X-Space-ID"
	HeaderUser  = "X-User-ID"

	contextUserIDKey = "user_id"
)

// UserRequired resolves the caller's identity from the gateway-injected
// user header. The edge proxy authenticates the session and forwards
// only the user id.
func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUser))
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

// SpaceContext resolves the active space from the space header and
// injects it into the request context for the space-scoped services.
func (s *Server) SpaceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderSpace))
		if raw == "" {
			AbortWithError(c, spacedomain.ErrInvalidSpace)
			return
		}

		space, err := s.spaceSvc.Get(c.Request.Context(), spacedomain.GetSpaceRequest{ID: raw})
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := spacectx.WithSpaceID(c.Request.Context(), int64(space.ID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole gates a space-scoped route on the caller's membership role.
func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(contextUserIDKey)
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		role, err := s.spaceSvc.RoleOf(c.Request.Context(), userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(contextUserIDKey)
}
