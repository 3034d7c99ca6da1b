package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, announcement *ScheduledAnnouncement) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ScheduledAnnouncement, error)
	ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*ScheduledAnnouncement, error)
	ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*ScheduledAnnouncement, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, at time.Time) error
}
