package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// Ticket is one seat at an event. SessionToken is set while a checkout is
// in flight; PaymentID is set once the gateway confirms. The two never
// share a column.
type Ticket struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	EventID      snowflake.ID `gorm:"not null;uniqueIndex:idx_tickets_event_user" json:"event_id"`
	UserID       snowflake.ID `gorm:"not null;uniqueIndex:idx_tickets_event_user" json:"user_id"`
	Status       string       `gorm:"not null;default:pending" json:"status"`
	SessionToken *string      `gorm:"index" json:"session_token,omitempty"`
	PaymentID    *string      `json:"payment_id,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
