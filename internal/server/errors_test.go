package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/pulsehub/pulsehub/internal/authorization"
	checkoutdomain "github.com/pulsehub/pulsehub/internal/checkout/domain"
	coursedomain "github.com/pulsehub/pulsehub/internal/course/domain"
	eventdomain "github.com/pulsehub/pulsehub/internal/event/domain"
	paywalldomain "github.com/pulsehub/pulsehub/internal/paywall/domain"
	"github.com/pulsehub/pulsehub/internal/providers/payment"
	spacedomain "github.com/pulsehub/pulsehub/internal/space/domain"
	ticketdomain "github.com/pulsehub/pulsehub/internal/ticket/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"nil", nil, http.StatusInternalServerError, "internal_error"},
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "validation_error"},
		{"invalid token", checkoutdomain.ErrInvalidToken, http.StatusBadRequest, "validation_error"},
		{"event full", ticketdomain.ErrEventFull, http.StatusBadRequest, "validation_error"},
		{"payout missing", ticketdomain.ErrPayoutNotConfigured, http.StatusBadRequest, "validation_error"},
		{"not for sale", paywalldomain.ErrNotForSale, http.StatusBadRequest, "validation_error"},
		{"paywalled course", coursedomain.ErrPaywalled, http.StatusBadRequest, "validation_error"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", authorization.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"not a member", spacedomain.ErrNotMember, http.StatusForbidden, "forbidden"},
		{"space missing", spacedomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"event missing", eventdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"checkout init wrapped", fmt.Errorf("%w: gateway said no", payment.ErrCheckoutInit), http.StatusBadGateway, "checkout_init_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantType, payload.Type)
		})
	}
}

func TestMapErrorValidationDetails(t *testing.T) {
	status, payload := mapError(ticketdomain.ErrEventFull)
	assert.Equal(t, http.StatusBadRequest, status)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "event_full", payload.Errors[0].Code)
		assert.Equal(t, "event is at capacity", payload.Errors[0].Message)
	}

	_, payload = mapError(paywalldomain.ErrInvalidPrice)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "invalid_price", payload.Errors[0].Code)
		assert.Equal(t, "price", payload.Errors[0].Field)
	}
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, code := classifyErrorForLog(paywalldomain.ErrAlreadyEnrolled)
	assert.Equal(t, "validation_error", errType)
	assert.Equal(t, "already_enrolled", code)

	errType, code = classifyErrorForLog(coursedomain.ErrNotFound)
	assert.Equal(t, "not_found", errType)
	assert.Equal(t, "course_not_found", code)

	errType, code = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal_error", errType)
	assert.Equal(t, "internal_error", code)

	errType, code = classifyErrorForLog(nil)
	assert.Empty(t, errType)
	assert.Empty(t, code)
}
