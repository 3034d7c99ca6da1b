package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Profile is the member profile. PayoutKey is the sub-merchant key the
// payment gateway pays event and course revenue out to; it is required
// before a member can sell anything.
type Profile struct {
	UserID      snowflake.ID `gorm:"primaryKey;column:user_id" json:"user_id"`
	DisplayName string       `gorm:"not null" json:"display_name"`
	Email       string       `gorm:"not null" json:"email"`
	PayoutKey   *string      `gorm:"column:payout_key" json:"payout_key,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
