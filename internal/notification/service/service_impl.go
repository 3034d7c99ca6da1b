package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/notification/domain"
	"github.com/pulsehub/pulsehub/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultListLimit = 50

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, page pagination.Pagination) ([]*domain.Notification, pagination.PageInfo, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || id == 0 {
		return nil, pagination.PageInfo{}, domain.ErrInvalidUser
	}
	if page.PageSize <= 0 {
		page.PageSize = defaultListLimit
	}

	notifications, err := s.repo.ListByUser(ctx, s.db, id, unreadOnly, page)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var info pagination.PageInfo
	if len(notifications) > page.PageSize {
		notifications = notifications[:page.PageSize]
		last := notifications[len(notifications)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		info.HasMore = true
		info.NextPageToken = token
	}
	return notifications, info, nil
}

func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) error {
	nID, err := snowflake.ParseString(strings.TrimSpace(notificationID))
	if err != nil || nID == 0 {
		return domain.ErrInvalidNotification
	}
	uID, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || uID == 0 {
		return domain.ErrInvalidUser
	}

	notification, err := s.repo.FindByID(ctx, s.db, nID)
	if err != nil {
		return err
	}
	if notification == nil || notification.UserID != uID {
		return domain.ErrNotFound
	}
	return s.repo.MarkRead(ctx, s.db, nID, s.clock.Now())
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidUser
	}
	return s.repo.MarkAllRead(ctx, s.db, id, s.clock.Now())
}
