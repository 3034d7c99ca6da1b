package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Event, error)
	Update(ctx context.Context, db *gorm.DB, event *Event) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ListBySpace(ctx context.Context, db *gorm.DB, spaceID snowflake.ID, from *time.Time) ([]*Event, error)

	// ListStartingBetween returns events whose start falls inside
	// [from, to] inclusive, oldest first.
	ListStartingBetween(ctx context.Context, db *gorm.DB, from, to time.Time, limit int) ([]*Event, error)

	UpdateSettings(ctx context.Context, db *gorm.DB, eventID snowflake.ID, settings datatypes.JSONMap) error

	// InsertReminderState claims the reminder send for an event/channel pair.
	// A duplicate-key error means another pass already claimed it.
	InsertReminderState(ctx context.Context, db *gorm.DB, state *EventReminderState) error

	UpsertResponse(ctx context.Context, db *gorm.DB, response *EventResponse) error
	DeleteResponsesByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) error
}
