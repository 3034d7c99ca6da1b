package domain

import (
	"context"
	"errors"
)

type CreateSpaceRequest struct {
	Name    string
	OwnerID string
}

type GetSpaceRequest struct {
	ID   string
	Slug string
}

type AddMemberRequest struct {
	UserID string
	Role   string
}

type CreateChannelRequest struct {
	Kind string
	Name string
}

type Service interface {
	Create(context.Context, CreateSpaceRequest) (Space, error)
	Get(context.Context, GetSpaceRequest) (Space, error)
	AddMember(context.Context, AddMemberRequest) (SpaceMember, error)
	RemoveMember(ctx context.Context, userID string) error
	ListMembers(ctx context.Context) ([]SpaceMember, error)
	RoleOf(ctx context.Context, userID string) (string, error)
	CreateChannel(context.Context, CreateChannelRequest) (Channel, error)
	ListChannels(ctx context.Context) ([]Channel, error)
}

var (
	ErrInvalidSpace = errors.New("invalid_space")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrInvalidKind  = errors.New("invalid_channel_kind")
	ErrNotFound     = errors.New("not_found")
	ErrNotMember    = errors.New("not_member")
)
