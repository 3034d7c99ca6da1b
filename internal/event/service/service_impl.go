package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/event/domain"
	"github.com/pulsehub/pulsehub/internal/spacectx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("event.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEventRequest) (domain.Event, error) {
	spaceID, ok := spacectx.SpaceIDFromContext(ctx)
	if !ok || spaceID == 0 {
		return domain.Event{}, domain.ErrInvalidSpace
	}

	channelID, err := snowflake.ParseString(strings.TrimSpace(req.ChannelID))
	if err != nil || channelID == 0 {
		return domain.Event{}, domain.ErrInvalidChannel
	}
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil || ownerID == 0 {
		return domain.Event{}, domain.ErrInvalidID
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Event{}, domain.ErrInvalidTitle
	}
	eventType, err := normalizeType(req.Type)
	if err != nil {
		return domain.Event{}, err
	}
	if req.StartsAt.IsZero() {
		return domain.Event{}, domain.ErrInvalidStart
	}

	settings := domain.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	price := req.PriceCents
	if price < 0 {
		price = 0
	}

	now := s.clock.Now()
	event := domain.Event{
		ID:           s.genID.Generate(),
		SpaceID:      spaceID,
		ChannelID:    channelID,
		OwnerID:      ownerID,
		Title:        title,
		Type:         eventType,
		Location:     strings.TrimSpace(req.Location),
		StartsAt:     req.StartsAt.UTC(),
		EndsAt:       req.EndsAt,
		PriceCents:   price,
		Currency:     currency,
		MaxAttendees: req.MaxAttendees,
		Settings:     settings.ToBlob(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Event, error) {
	eventID, err := parseID(id)
	if err != nil {
		return domain.Event{}, err
	}
	event, err := s.repo.FindByID(ctx, s.db, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	return *event, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEventRequest) (domain.Event, error) {
	eventID, err := parseID(req.ID)
	if err != nil {
		return domain.Event{}, err
	}

	event, err := s.repo.FindByID(ctx, s.db, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event == nil {
		return domain.Event{}, domain.ErrNotFound
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		event.Title = title
	}
	if req.Type != "" {
		eventType, err := normalizeType(req.Type)
		if err != nil {
			return domain.Event{}, err
		}
		event.Type = eventType
	}
	if req.Location != "" {
		event.Location = strings.TrimSpace(req.Location)
	}
	if req.StartsAt != nil {
		if req.StartsAt.IsZero() {
			return domain.Event{}, domain.ErrInvalidStart
		}
		event.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}
	if req.PriceCents != nil && *req.PriceCents >= 0 {
		event.PriceCents = *req.PriceCents
	}
	if req.MaxAttendees != nil {
		event.MaxAttendees = req.MaxAttendees
	}
	if req.Settings != nil {
		event.Settings = req.Settings.ToBlob()
	}
	event.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, event); err != nil {
		return domain.Event{}, err
	}
	return *event, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	eventID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteResponsesByEvent(ctx, tx, eventID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, eventID)
	})
}

func (s *Service) List(ctx context.Context, req domain.ListEventsRequest) ([]domain.Event, error) {
	spaceID, ok := spacectx.SpaceIDFromContext(ctx)
	if !ok || spaceID == 0 {
		return nil, domain.ErrInvalidSpace
	}
	items, err := s.repo.ListBySpace(ctx, s.db, spaceID, req.From)
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, *item)
	}
	return events, nil
}

func normalizeType(raw string) (string, error) {
	eventType := strings.ToLower(strings.TrimSpace(raw))
	if eventType == "" {
		return domain.TypeTBD, nil
	}
	switch eventType {
	case domain.TypeOnlineConference, domain.TypeInPerson, domain.TypeTBD, domain.TypePlatformLive:
		return eventType, nil
	default:
		return "", domain.ErrInvalidType
	}
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
