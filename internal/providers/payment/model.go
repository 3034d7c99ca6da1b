package payment

import (
	"context"
	"errors"
)

var (
	ErrInvalidConfig   = errors.New("invalid_gateway_config")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrCheckoutInit    = errors.New("checkout_init_failed")
	ErrSessionNotFound = errors.New("checkout_session_not_found")
)

// CheckoutRequest describes a hosted checkout session to create.
type CheckoutRequest struct {
	BuyerID         string
	BuyerEmail      string
	SellerPayoutKey string
	ItemName        string
	AmountCents     int64
	Currency        string
	CommissionCents int64
	CallbackURL     string
}

// CheckoutSession is the gateway's answer to a session create call.
type CheckoutSession struct {
	SessionToken string
	CheckoutURL  string
}

// Verification is the gateway's authoritative view of a checkout session.
type Verification struct {
	Confirmed     bool
	PaymentID     string
	FailureReason string
	AmountCents   int64
	Currency      string
}

// Gateway abstracts the hosted marketplace-payments provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifyPayment(ctx context.Context, sessionToken string) (*Verification, error)
}
