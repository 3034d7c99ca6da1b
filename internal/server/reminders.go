package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SchedulerSecretRequired guards operator endpoints with the shared
// scheduler secret. An empty configured secret disables the surface.
func (s *Server) SchedulerSecretRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := s.cfg.SchedulerSecret
		if secret == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(secret)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RunReminders triggers a single email reminder sweep, for cron-style
// deployments that drive the scheduler over HTTP.
func (s *Server) RunReminders(c *gin.Context) {
	if s.scheduler == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	stats, err := s.scheduler.RunEmailReminders(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "reminders processed",
		"eventsProcessed": stats.EventsProcessed,
		"emailsSent":      stats.EmailsSent,
		"emailsFailed":    stats.EmailsFailed,
	})
}
