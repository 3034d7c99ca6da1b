package domain

import (
	"context"
	"errors"
	"time"
)

type CreateAnnouncementRequest struct {
	SpaceID     string
	EventID     string
	Audience    string
	Subject     string
	Body        string
	ScheduledAt time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateAnnouncementRequest) (*ScheduledAnnouncement, error)
	ListByEvent(ctx context.Context, eventID string) ([]*ScheduledAnnouncement, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidSpace    = errors.New("invalid_space")
	ErrInvalidEvent    = errors.New("invalid_event")
	ErrInvalidAudience = errors.New("invalid_audience")
	ErrInvalidSubject  = errors.New("invalid_subject")
	ErrInvalidSchedule = errors.New("invalid_schedule")
	ErrNotFound        = errors.New("announcement_not_found")
)
