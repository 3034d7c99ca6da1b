package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/ticket/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ticket *domain.Ticket) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tickets (id, event_id, user_id, status, session_token, payment_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ticket.ID,
		ticket.EventID,
		ticket.UserID,
		ticket.Status,
		ticket.SessionToken,
		ticket.PaymentID,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Error
}

func (r *repo) FindByEventAndUser(ctx context.Context, db *gorm.DB, eventID, userID snowflake.ID) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT id, event_id, user_id, status, session_token, payment_id, created_at, updated_at
		 FROM tickets WHERE event_id = ? AND user_id = ?`,
		eventID,
		userID,
	).Scan(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.ID == 0 {
		return nil, nil
	}
	return &ticket, nil
}

func (r *repo) FindBySessionToken(ctx context.Context, db *gorm.DB, token string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT id, event_id, user_id, status, session_token, payment_id, created_at, updated_at
		 FROM tickets WHERE session_token = ?`,
		token,
	).Scan(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.ID == 0 {
		return nil, nil
	}
	return &ticket, nil
}

func (r *repo) DeleteBySessionToken(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM tickets WHERE session_token = ? AND status = ?`,
		token,
		domain.StatusPending,
	).Error
}

func (r *repo) Confirm(ctx context.Context, db *gorm.DB, ticketID snowflake.ID, paymentID string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tickets
		 SET status = ?, payment_id = ?, session_token = NULL, updated_at = ?
		 WHERE id = ?`,
		domain.StatusConfirmed,
		paymentID,
		at,
		ticketID,
	).Error
}

func (r *repo) CountByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListConfirmedHolders(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]snowflake.ID, error) {
	var rows []struct {
		UserID snowflake.ID `gorm:"column:user_id"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT user_id FROM tickets WHERE event_id = ? AND status = ? ORDER BY id`,
		eventID,
		domain.StatusConfirmed,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	holders := make([]snowflake.ID, 0, len(rows))
	for _, row := range rows {
		holders = append(holders, row.UserID)
	}
	return holders, nil
}

func (r *repo) DeletePendingOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) (int64, error) {
	stmt := db.WithContext(ctx).Exec(
		`DELETE FROM tickets
		 WHERE id IN (
		   SELECT id FROM tickets
		   WHERE status = ? AND created_at < ?
		   ORDER BY created_at
		   LIMIT ?
		 )`,
		domain.StatusPending,
		cutoff,
		limit,
	)
	return stmt.RowsAffected, stmt.Error
}
