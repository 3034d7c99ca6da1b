package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/announcement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, announcement *domain.ScheduledAnnouncement) error {
	return db.WithContext(ctx).Create(announcement).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ScheduledAnnouncement, error) {
	var announcement domain.ScheduledAnnouncement
	err := db.WithContext(ctx).
		Model(&domain.ScheduledAnnouncement{}).
		Where("id = ?", id).
		Limit(1).
		Find(&announcement).Error
	if err != nil {
		return nil, err
	}
	if announcement.ID == 0 {
		return nil, nil
	}
	return &announcement, nil
}

func (r *repo) ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*domain.ScheduledAnnouncement, error) {
	var announcements []*domain.ScheduledAnnouncement
	err := db.WithContext(ctx).
		Model(&domain.ScheduledAnnouncement{}).
		Where("event_id = ?", eventID).
		Order("scheduled_at asc, id asc").
		Find(&announcements).Error
	if err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *repo) ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*domain.ScheduledAnnouncement, error) {
	var announcements []*domain.ScheduledAnnouncement
	stmt := db.WithContext(ctx).
		Model(&domain.ScheduledAnnouncement{}).
		Where("status = ? AND scheduled_at <= ?", domain.StatusPending, now).
		Order("scheduled_at asc, id asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM scheduled_announcements WHERE id = ?`,
		id,
	).Error
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE scheduled_announcements
		 SET status = ?, sent_at = ?, error = NULL, updated_at = ?
		 WHERE id = ?`,
		domain.StatusSent,
		at,
		at,
		id,
	).Error
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE scheduled_announcements
		 SET status = ?, error = ?, updated_at = ?
		 WHERE id = ?`,
		domain.StatusFailed,
		reason,
		at,
		id,
	).Error
}
