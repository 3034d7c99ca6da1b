package domain

import (
	"context"
	"errors"
	"time"
)

type CreateEventRequest struct {
	ChannelID    string
	OwnerID      string
	Title        string
	Type         string
	Location     string
	StartsAt     time.Time
	EndsAt       *time.Time
	PriceCents   int64
	Currency     string
	MaxAttendees *int
	Settings     *EventSettings
}

type UpdateEventRequest struct {
	ID           string
	Title        string
	Type         string
	Location     string
	StartsAt     *time.Time
	EndsAt       *time.Time
	PriceCents   *int64
	MaxAttendees *int
	Settings     *EventSettings
}

type ListEventsRequest struct {
	From *time.Time
}

type Service interface {
	Create(context.Context, CreateEventRequest) (Event, error)
	Get(ctx context.Context, id string) (Event, error)
	Update(context.Context, UpdateEventRequest) (Event, error)
	Delete(ctx context.Context, id string) error
	List(context.Context, ListEventsRequest) ([]Event, error)
}

var (
	ErrInvalidSpace   = errors.New("invalid_space")
	ErrInvalidChannel = errors.New("invalid_channel")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidType    = errors.New("invalid_event_type")
	ErrInvalidStart   = errors.New("invalid_start_time")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
)
