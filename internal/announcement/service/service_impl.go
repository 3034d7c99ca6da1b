package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/announcement/domain"
	"github.com/pulsehub/pulsehub/internal/clock"
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
		log:   p.Log.Named("announcement.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAnnouncementRequest) (*domain.ScheduledAnnouncement, error) {
	spaceID, err := snowflake.ParseString(strings.TrimSpace(req.SpaceID))
	if err != nil || spaceID == 0 {
		return nil, domain.ErrInvalidSpace
	}
	eventID, err := snowflake.ParseString(strings.TrimSpace(req.EventID))
	if err != nil || eventID == 0 {
		return nil, domain.ErrInvalidEvent
	}
	audience := strings.TrimSpace(req.Audience)
	if audience == "" {
		audience = domain.AudienceGoing
	}
	if audience != domain.AudienceGoing && audience != domain.AudienceAll {
		return nil, domain.ErrInvalidAudience
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, domain.ErrInvalidSubject
	}
	if req.ScheduledAt.IsZero() {
		return nil, domain.ErrInvalidSchedule
	}

	now := s.clock.Now()
	announcement := domain.ScheduledAnnouncement{
		ID:          s.genID.Generate(),
		SpaceID:     spaceID,
		EventID:     eventID,
		Audience:    audience,
		Subject:     subject,
		Body:        req.Body,
		ScheduledAt: req.ScheduledAt.UTC(),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &announcement); err != nil {
		return nil, err
	}
	return &announcement, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]*domain.ScheduledAnnouncement, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(eventID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidEvent
	}
	return s.repo.ListByEvent(ctx, s.db, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	announcementID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || announcementID == 0 {
		return domain.ErrNotFound
	}
	announcement, err := s.repo.FindByID(ctx, s.db, announcementID)
	if err != nil {
		return err
	}
	if announcement == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, announcementID)
}
