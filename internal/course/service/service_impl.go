package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/course/domain"
	paywalldomain "github.com/pulsehub/pulsehub/internal/paywall/domain"
	"github.com/pulsehub/pulsehub/pkg/db"
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

	PaywallRepo paywalldomain.Repository `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	paywallRepo paywalldomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("course.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		paywallRepo: p.PaywallRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCourseRequest) (*domain.Course, error) {
	spaceID, err := snowflake.ParseString(strings.TrimSpace(req.SpaceID))
	if err != nil || spaceID == 0 {
		return nil, domain.ErrInvalidSpace
	}
	channelID, err := snowflake.ParseString(strings.TrimSpace(req.ChannelID))
	if err != nil || channelID == 0 {
		return nil, domain.ErrInvalidChannel
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	now := s.clock.Now()
	course := domain.Course{
		ID:        s.genID.Generate(),
		SpaceID:   spaceID,
		ChannelID: channelID,
		Title:     title,
		Slug:      slug.Make(title),
		Published: req.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Course, error) {
	courseID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || courseID == 0 {
		return nil, domain.ErrInvalidCourse
	}
	course, err := s.repo.FindByID(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, domain.ErrNotFound
	}
	return course, nil
}

func (s *Service) List(ctx context.Context, spaceID string) ([]*domain.Course, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(spaceID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidSpace
	}
	return s.repo.ListBySpace(ctx, s.db, id)
}

func (s *Service) Enroll(ctx context.Context, courseID, userID string) (*domain.CourseEnrollment, error) {
	cID, err := snowflake.ParseString(strings.TrimSpace(courseID))
	if err != nil || cID == 0 {
		return nil, domain.ErrInvalidCourse
	}
	uID, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || uID == 0 {
		return nil, domain.ErrInvalidUser
	}

	course, err := s.repo.FindByID(ctx, s.db, cID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, domain.ErrNotFound
	}

	// Paywalled courses grant enrollment through the purchase flow only.
	if s.paywallRepo != nil {
		paywall, err := s.paywallRepo.FindByEntity(ctx, s.db, cID, paywalldomain.KindCourse)
		if err != nil {
			return nil, err
		}
		if paywall != nil && paywall.PriceCents > 0 {
			return nil, domain.ErrPaywalled
		}
	}

	enrollment := domain.CourseEnrollment{
		ID:        s.genID.Generate(),
		UserID:    uID,
		CourseID:  cID,
		Status:    domain.EnrollmentActive,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertEnrollment(ctx, s.db, &enrollment); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindEnrollment(ctx, s.db, uID, cID)
		}
		return nil, err
	}
	return &enrollment, nil
}

func (s *Service) ListEnrollments(ctx context.Context, userID string) ([]*domain.CourseEnrollment, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.ListEnrollmentsByUser(ctx, s.db, id)
}
