package domain

import (
	"context"
	"errors"
)

// TicketResult reports how a ticket request resolved. Exactly one of
// Restored, Free, or CheckoutURL-bearing paid flow applies.
type TicketResult struct {
	Ticket      Ticket `json:"ticket"`
	Restored    bool   `json:"restored,omitempty"`
	Free        bool   `json:"free,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

type Service interface {
	RequestTicket(ctx context.Context, eventID, userID string) (TicketResult, error)
}

var (
	ErrInvalidEvent        = errors.New("invalid_event")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrEventNotFound       = errors.New("event_not_found")
	ErrEventFull           = errors.New("event_full")
	ErrPayoutNotConfigured = errors.New("payout_not_configured")
)
