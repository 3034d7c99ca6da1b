package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/pulsehub/pulsehub/internal/checkout/domain"
)

// ResolveCheckout is the landing endpoint for the hosted gateway's
// browser redirect. It always answers with a redirect; resolution
// failures land on the payment error page rather than an API error.
func (s *Server) ResolveCheckout(c *gin.Context) {
	token := strings.TrimSpace(c.PostForm("token"))
	if token == "" {
		token = strings.TrimSpace(c.Query("token"))
	}

	outcome, err := s.checkoutSvc.Resolve(c.Request.Context(), token)
	if err != nil {
		reason := "internal_error"
		if errors.Is(err, checkoutdomain.ErrInvalidToken) {
			reason = "invalid_token"
		}
		c.Redirect(http.StatusFound, "/payment/error?reason="+reason)
		return
	}

	c.Redirect(http.StatusFound, outcome.RedirectURL)
}
