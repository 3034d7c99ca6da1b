package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CheckoutRateLimit throttles endpoints that open gateway checkout
// sessions. Backend errors fail open so the gateway outage story does
// not start with the limiter.
func (s *Server) CheckoutRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.checkoutLimiter == nil {
			c.Next()
			return
		}

		result, err := s.checkoutLimiter.Allow(c.Request.Context(), currentUserID(c))
		if err != nil || result == nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if result.Allowed {
			c.Next()
			return
		}

		if result.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
			Type:    "rate_limited",
			Message: "too many checkout attempts",
		}})
	}
}
