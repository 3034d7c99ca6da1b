package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	KindCourse  = "course"
	KindChannel = "channel"
)

const (
	PurchasePending   = "pending"
	PurchaseConfirmed = "confirmed"
	PurchaseFailed    = "failed"
)

// Paywall prices exactly one entity: either a course or a channel,
// never both.
type Paywall struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	SpaceID    snowflake.ID  `gorm:"not null;index" json:"space_id"`
	CourseID   *snowflake.ID `gorm:"uniqueIndex" json:"course_id,omitempty"`
	ChannelID  *snowflake.ID `gorm:"uniqueIndex" json:"channel_id,omitempty"`
	PriceCents int64         `gorm:"not null;default:0" json:"price_cents"`
	Currency   string        `gorm:"not null;default:USD" json:"currency"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// PaywallPurchase carries the checkout session token while pending and
// the gateway payment id once confirmed. The two never share a column.
type PaywallPurchase struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	PaywallID    snowflake.ID `gorm:"not null;index" json:"paywall_id"`
	UserID       snowflake.ID `gorm:"not null;index" json:"user_id"`
	AmountCents  int64        `gorm:"not null" json:"amount_cents"`
	Currency     string       `gorm:"not null;default:USD" json:"currency"`
	Status       string       `gorm:"not null;default:pending" json:"status"`
	SessionToken *string      `gorm:"index" json:"session_token,omitempty"`
	PaymentID    *string      `json:"payment_id,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
