package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	InsertBatch(ctx context.Context, db *gorm.DB, notifications []*Notification) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Notification, error)
	// ListByUser returns a cursor page of notifications, newest first.
	// The page carries one extra row past the page size so callers can
	// detect another page.
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, unreadOnly bool, page pagination.Pagination) ([]*Notification, error)
	MarkRead(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID, at time.Time) (int64, error)
}
