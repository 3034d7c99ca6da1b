package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/event/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Event, error) {
	var event domain.Event
	err := db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("id = ?", id).
		Limit(1).
		Find(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"title":         event.Title,
			"type":          event.Type,
			"location":      event.Location,
			"starts_at":     event.StartsAt,
			"ends_at":       event.EndsAt,
			"price_cents":   event.PriceCents,
			"max_attendees": event.MaxAttendees,
			"settings":      event.Settings,
			"updated_at":    event.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM events WHERE id = ?`, id).Error
}

func (r *repo) ListBySpace(ctx context.Context, db *gorm.DB, spaceID snowflake.ID, from *time.Time) ([]*domain.Event, error) {
	var events []*domain.Event
	stmt := db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("space_id = ?", spaceID)
	if from != nil {
		stmt = stmt.Where("starts_at >= ?", *from)
	}
	err := stmt.
		Order("starts_at asc, id asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) ListStartingBetween(ctx context.Context, db *gorm.DB, from, to time.Time, limit int) ([]*domain.Event, error) {
	var events []*domain.Event
	stmt := db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("starts_at >= ? AND starts_at <= ?", from, to).
		Order("starts_at asc, id asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) UpdateSettings(ctx context.Context, db *gorm.DB, eventID snowflake.ID, settings datatypes.JSONMap) error {
	return db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"settings":   settings,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) InsertReminderState(ctx context.Context, db *gorm.DB, state *domain.EventReminderState) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO event_reminder_states (id, event_id, channel, sent_at)
		 VALUES (?, ?, ?, ?)`,
		state.ID,
		state.EventID,
		state.Channel,
		state.SentAt,
	).Error
}

func (r *repo) UpsertResponse(ctx context.Context, db *gorm.DB, response *domain.EventResponse) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status"}),
		}).
		Create(response).Error
}

func (r *repo) DeleteResponsesByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM event_responses WHERE event_id = ?`,
		eventID,
	).Error
}
