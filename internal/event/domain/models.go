package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TypeOnlineConference = "online_conference"
	TypeInPerson         = "in_person"
	TypeTBD              = "tbd"
	TypePlatformLive     = "platform_live"
)

const (
	ReminderChannelEmail = "email"
	ReminderChannelInApp = "in_app"
)

const ResponseAttending = "attending"

type Event struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	SpaceID      snowflake.ID      `gorm:"not null;index" json:"space_id"`
	ChannelID    snowflake.ID      `gorm:"not null;index" json:"channel_id"`
	OwnerID      snowflake.ID      `gorm:"not null" json:"owner_id"`
	Title        string            `gorm:"not null" json:"title"`
	Type         string            `gorm:"not null;default:tbd" json:"type"`
	Location     string            `json:"location,omitempty"`
	StartsAt     time.Time         `gorm:"not null;index" json:"starts_at"`
	EndsAt       *time.Time        `json:"ends_at,omitempty"`
	PriceCents   int64             `gorm:"not null;default:0" json:"price_cents"`
	Currency     string            `gorm:"not null;default:USD" json:"currency"`
	MaxAttendees *int              `json:"max_attendees,omitempty"`
	Settings     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"settings,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Free reports whether the event needs no payment.
func (e *Event) Free() bool {
	return e.PriceCents <= 0
}

type EventResponse struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	EventID   snowflake.ID `gorm:"not null;uniqueIndex:idx_event_responses_event_user" json:"event_id"`
	UserID    snowflake.ID `gorm:"not null;uniqueIndex:idx_event_responses_event_user" json:"user_id"`
	Status    string       `gorm:"not null;default:attending" json:"status"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// EventReminderState is the authoritative at-most-once gate for reminder
// delivery. The row insert is the claim; the JSON settings flags are a read
// model mirrored after the fact.
type EventReminderState struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	EventID snowflake.ID `gorm:"not null;uniqueIndex:idx_event_reminder_states_event_channel" json:"event_id"`
	Channel string       `gorm:"not null;uniqueIndex:idx_event_reminder_states_event_channel" json:"channel"`
	SentAt  time.Time    `gorm:"not null" json:"sent_at"`
}

// ReminderSettings are the per-event reminder toggles and mirror flags
// stored inside the settings JSON blob.
type ReminderSettings struct {
	EmailEnabled    bool `json:"email_enabled"`
	InAppEnabled    bool `json:"in_app_enabled"`
	SystemEmailSent bool `json:"system_email_sent"`
	SystemInAppSent bool `json:"system_in_app_sent"`
}

type EventSettings struct {
	Reminders ReminderSettings `json:"reminders"`
}

// DefaultSettings enables both reminder channels.
func DefaultSettings() EventSettings {
	return EventSettings{
		Reminders: ReminderSettings{
			EmailEnabled: true,
			InAppEnabled: true,
		},
	}
}

// ParseSettings decodes the settings blob, falling back to defaults for an
// empty blob.
func ParseSettings(blob datatypes.JSONMap) EventSettings {
	if len(blob) == 0 {
		return DefaultSettings()
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		return DefaultSettings()
	}
	var settings EventSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return DefaultSettings()
	}
	return settings
}

// ToBlob encodes settings back into the stored JSON shape.
func (s EventSettings) ToBlob() datatypes.JSONMap {
	return datatypes.JSONMap{
		"reminders": map[string]interface{}{
			"email_enabled":      s.Reminders.EmailEnabled,
			"in_app_enabled":     s.Reminders.InAppEnabled,
			"system_email_sent":  s.Reminders.SystemEmailSent,
			"system_in_app_sent": s.Reminders.SystemInAppSent,
		},
	}
}
