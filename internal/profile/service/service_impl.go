package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("profile.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (domain.Profile, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return domain.Profile{}, err
	}
	profile, err := s.repo.FindByUserID(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if profile == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return *profile, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProfileRequest) (domain.Profile, error) {
	id, err := parseUserID(req.UserID)
	if err != nil {
		return domain.Profile{}, err
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Profile{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	profile := domain.Profile{
		UserID:      id,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Upsert(ctx, s.db, &profile); err != nil {
		return domain.Profile{}, err
	}

	stored, err := s.repo.FindByUserID(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if stored == nil {
		return profile, nil
	}
	return *stored, nil
}

func (s *Service) SetPayoutKey(ctx context.Context, req domain.SetPayoutKeyRequest) (domain.Profile, error) {
	id, err := parseUserID(req.UserID)
	if err != nil {
		return domain.Profile{}, err
	}

	existing, err := s.repo.FindByUserID(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if existing == nil {
		return domain.Profile{}, domain.ErrNotFound
	}

	var payoutKey *string
	if trimmed := strings.TrimSpace(req.PayoutKey); trimmed != "" {
		payoutKey = &trimmed
	}
	if err := s.repo.UpdatePayoutKey(ctx, s.db, id, payoutKey); err != nil {
		return domain.Profile{}, err
	}

	existing.PayoutKey = payoutKey
	return *existing, nil
}

func parseUserID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidUser
	}
	return id, nil
}
