package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ticket *Ticket) error
	FindByEventAndUser(ctx context.Context, db *gorm.DB, eventID, userID snowflake.ID) (*Ticket, error)
	FindBySessionToken(ctx context.Context, db *gorm.DB, token string) (*Ticket, error)
	DeleteBySessionToken(ctx context.Context, db *gorm.DB, token string) error

	// Confirm sets the ticket confirmed with the gateway payment id and
	// clears the session token.
	Confirm(ctx context.Context, db *gorm.DB, ticketID snowflake.ID, paymentID string, at time.Time) error

	CountByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (int64, error)
	ListConfirmedHolders(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]snowflake.ID, error)
	DeletePendingOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) (int64, error)
}
