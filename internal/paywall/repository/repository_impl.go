package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/paywall/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func entityColumn(kind string) string {
	if kind == domain.KindChannel {
		return "channel_id"
	}
	return "course_id"
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, paywall *domain.Paywall) error {
	return db.WithContext(ctx).Create(paywall).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Paywall, error) {
	var paywall domain.Paywall
	err := db.WithContext(ctx).
		Model(&domain.Paywall{}).
		Where("id = ?", id).
		Limit(1).
		Find(&paywall).Error
	if err != nil {
		return nil, err
	}
	if paywall.ID == 0 {
		return nil, nil
	}
	return &paywall, nil
}

func (r *repo) FindByEntity(ctx context.Context, db *gorm.DB, entityID snowflake.ID, kind string) (*domain.Paywall, error) {
	var paywall domain.Paywall
	err := db.WithContext(ctx).
		Model(&domain.Paywall{}).
		Where(entityColumn(kind)+" = ?", entityID).
		Limit(1).
		Find(&paywall).Error
	if err != nil {
		return nil, err
	}
	if paywall.ID == 0 {
		return nil, nil
	}
	return &paywall, nil
}

func (r *repo) UpdatePrice(ctx context.Context, db *gorm.DB, id snowflake.ID, priceCents int64, currency string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE paywalls SET price_cents = ?, currency = ?, updated_at = ? WHERE id = ?`,
		priceCents,
		currency,
		at,
		id,
	).Error
}

func (r *repo) DeleteByEntity(ctx context.Context, db *gorm.DB, entityID snowflake.ID, kind string) error {
	return db.WithContext(ctx).
		Where(entityColumn(kind)+" = ?", entityID).
		Delete(&domain.Paywall{}).Error
}

func (r *repo) InsertPurchase(ctx context.Context, db *gorm.DB, purchase *domain.PaywallPurchase) error {
	return db.WithContext(ctx).Create(purchase).Error
}

func (r *repo) FindPurchaseBySessionToken(ctx context.Context, db *gorm.DB, token string) (*domain.PaywallPurchase, error) {
	var purchase domain.PaywallPurchase
	err := db.WithContext(ctx).
		Model(&domain.PaywallPurchase{}).
		Where("session_token = ?", token).
		Limit(1).
		Find(&purchase).Error
	if err != nil {
		return nil, err
	}
	if purchase.ID == 0 {
		return nil, nil
	}
	return &purchase, nil
}

func (r *repo) ConfirmPurchase(ctx context.Context, db *gorm.DB, purchaseID snowflake.ID, paymentID string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE paywall_purchases
		 SET status = ?, payment_id = ?, session_token = NULL, updated_at = ?
		 WHERE id = ?`,
		domain.PurchaseConfirmed,
		paymentID,
		at,
		purchaseID,
	).Error
}

func (r *repo) MarkPurchaseFailed(ctx context.Context, db *gorm.DB, purchaseID snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE paywall_purchases SET status = ?, updated_at = ? WHERE id = ?`,
		domain.PurchaseFailed,
		at,
		purchaseID,
	).Error
}

func (r *repo) DeletePurchase(ctx context.Context, db *gorm.DB, purchaseID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM paywall_purchases WHERE id = ?`,
		purchaseID,
	).Error
}

func (r *repo) DeletePendingOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM paywall_purchases
		 WHERE id IN (
			SELECT id FROM paywall_purchases
			WHERE status = ? AND created_at < ?
			ORDER BY created_at
			LIMIT ?
		 )`,
		domain.PurchasePending,
		cutoff,
		limit,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
