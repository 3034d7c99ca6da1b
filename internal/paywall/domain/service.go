package domain

import (
	"context"
	"errors"
)

type UpsertPaywallRequest struct {
	SpaceID    string
	EntityID   string
	Kind       string
	PriceCents int64
	Currency   string
}

// PurchaseResult is the handle returned to the buyer: the pending
// purchase row plus the hosted checkout page to redirect to.
type PurchaseResult struct {
	Purchase    PaywallPurchase
	CheckoutURL string
}

type Service interface {
	Get(ctx context.Context, entityID, kind string) (*Paywall, error)
	Upsert(ctx context.Context, req UpsertPaywallRequest) (*Paywall, error)
	Delete(ctx context.Context, entityID, kind string) error
	InitiateCoursePurchase(ctx context.Context, courseID, buyerID string) (PurchaseResult, error)
}

var (
	ErrInvalidSpace        = errors.New("invalid_space")
	ErrInvalidEntity       = errors.New("invalid_entity")
	ErrInvalidKind         = errors.New("invalid_kind")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrCourseNotFound      = errors.New("course_not_found")
	ErrNotForSale          = errors.New("not_for_sale")
	ErrAlreadyEnrolled     = errors.New("already_enrolled")
	ErrPayoutNotConfigured = errors.New("payout_not_configured")
)
