package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/pulsehub/pulsehub/internal/checkout/domain"
	"github.com/stretchr/testify/assert"
)

type stubCheckout struct {
	outcome checkoutdomain.Outcome
	err     error
}

func (s stubCheckout) Resolve(ctx context.Context, token string) (checkoutdomain.Outcome, error) {
	return s.outcome, s.err
}

func resolveCheckout(svc checkoutdomain.Service, token string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	srv := &Server{checkoutSvc: svc}
	r.POST("/callbacks/checkout", srv.ResolveCheckout)

	req := httptest.NewRequest(http.MethodPost, "/callbacks/checkout", strings.NewReader("token="+token))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResolveCheckoutRedirectsToOutcome(t *testing.T) {
	w := resolveCheckout(stubCheckout{outcome: checkoutdomain.Outcome{
		Kind:        checkoutdomain.OutcomeTicketConfirmed,
		RedirectURL: "/events/42?payment=success",
	}}, "tok_001")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/events/42?payment=success", w.Header().Get("Location"))
}

func TestResolveCheckoutBadTokenReason(t *testing.T) {
	w := resolveCheckout(stubCheckout{err: checkoutdomain.ErrInvalidToken}, "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/payment/error?reason=invalid_token", w.Header().Get("Location"))
}

func TestResolveCheckoutInternalFaultReason(t *testing.T) {
	w := resolveCheckout(stubCheckout{err: fmt.Errorf("query tickets: disk I/O error")}, "tok_001")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/payment/error?reason=internal_error", w.Header().Get("Location"))
}
