package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	KindEventReminder = "event_reminder"
	KindAnnouncement  = "announcement"
)

type Notification struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	SpaceID   snowflake.ID  `gorm:"not null;index" json:"space_id"`
	UserID    snowflake.ID  `gorm:"not null;index" json:"user_id"`
	Kind      string        `gorm:"not null" json:"kind"`
	Title     string        `gorm:"not null" json:"title"`
	Body      string        `json:"body"`
	EventID   *snowflake.ID `gorm:"index" json:"event_id,omitempty"`
	ReadAt    *time.Time    `json:"read_at,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
