package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	AudienceGoing = "going"
	AudienceAll   = "all"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type ScheduledAnnouncement struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	SpaceID     snowflake.ID `gorm:"not null;index" json:"space_id"`
	EventID     snowflake.ID `gorm:"not null;index" json:"event_id"`
	Audience    string       `gorm:"not null;default:going" json:"audience"`
	Subject     string       `gorm:"not null" json:"subject"`
	Body        string       `gorm:"not null" json:"body"`
	ScheduledAt time.Time    `gorm:"not null;index" json:"scheduled_at"`
	Status      string       `gorm:"not null;default:pending;index" json:"status"`
	Error       *string      `json:"error,omitempty"`
	SentAt      *time.Time   `json:"sent_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
