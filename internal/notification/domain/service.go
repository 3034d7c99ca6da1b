package domain

import (
	"context"
	"errors"

	"github.com/pulsehub/pulsehub/pkg/db/pagination"
)

type Service interface {
	List(ctx context.Context, userID string, unreadOnly bool, page pagination.Pagination) ([]*Notification, pagination.PageInfo, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

var (
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidNotification = errors.New("invalid_notification")
	ErrNotFound            = errors.New("notification_not_found")
)
