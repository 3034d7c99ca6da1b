package domain

import (
	"context"
	"errors"
)

type UpdateProfileRequest struct {
	UserID      string
	DisplayName string
	Email       string
}

type SetPayoutKeyRequest struct {
	UserID    string
	PayoutKey string
}

type Service interface {
	Get(ctx context.Context, userID string) (Profile, error)
	Update(context.Context, UpdateProfileRequest) (Profile, error)
	SetPayoutKey(context.Context, SetPayoutKeyRequest) (Profile, error)
}

var (
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrNotFound     = errors.New("not_found")
)
