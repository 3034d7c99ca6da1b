package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, paywall *Paywall) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Paywall, error)
	FindByEntity(ctx context.Context, db *gorm.DB, entityID snowflake.ID, kind string) (*Paywall, error)
	UpdatePrice(ctx context.Context, db *gorm.DB, id snowflake.ID, priceCents int64, currency string, at time.Time) error
	DeleteByEntity(ctx context.Context, db *gorm.DB, entityID snowflake.ID, kind string) error

	InsertPurchase(ctx context.Context, db *gorm.DB, purchase *PaywallPurchase) error
	FindPurchaseBySessionToken(ctx context.Context, db *gorm.DB, token string) (*PaywallPurchase, error)
	ConfirmPurchase(ctx context.Context, db *gorm.DB, purchaseID snowflake.ID, paymentID string, at time.Time) error
	MarkPurchaseFailed(ctx context.Context, db *gorm.DB, purchaseID snowflake.ID, at time.Time) error
	DeletePurchase(ctx context.Context, db *gorm.DB, purchaseID snowflake.ID) error
	DeletePendingOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) (int64, error)
}
