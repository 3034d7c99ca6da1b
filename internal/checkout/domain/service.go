package domain

import (
	"context"
	"errors"
)

const (
	OutcomeTicketConfirmed   = "ticket_confirmed"
	OutcomePurchaseConfirmed = "purchase_confirmed"
	OutcomePaymentFailed     = "payment_failed"
	OutcomeUnknown           = "unknown"
)

// Outcome tells the HTTP layer where to send the buyer after the
// gateway called back. Resolve never surfaces gateway failures as
// errors; they become error-page redirects.
type Outcome struct {
	Kind        string
	RedirectURL string
}

type Service interface {
	Resolve(ctx context.Context, token string) (Outcome, error)
}

var ErrInvalidToken = errors.New("invalid_token")
