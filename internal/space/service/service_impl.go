package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/pulsehub/pulsehub/internal/space/domain"
	"github.com/pulsehub/pulsehub/internal/spacectx"
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
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("space.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSpaceRequest) (domain.Space, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Space{}, domain.ErrInvalidName
	}
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil || ownerID == 0 {
		return domain.Space{}, domain.ErrInvalidUser
	}

	now := time.Now().UTC()
	space := domain.Space{
		ID:        s.genID.Generate(),
		Slug:      slug.Make(name),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &space); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// slug collision, suffix with the id for uniqueness
			space.Slug = space.Slug + "-" + space.ID.String()
			if err := s.repo.Insert(ctx, s.db, &space); err != nil {
				return domain.Space{}, err
			}
		} else {
			return domain.Space{}, err
		}
	}

	owner := domain.SpaceMember{
		ID:        s.genID.Generate(),
		SpaceID:   space.ID,
		UserID:    ownerID,
		Role:      domain.RoleOwner,
		CreatedAt: now,
	}
	if err := s.repo.InsertMember(ctx, s.db, &owner); err != nil && !db.IsDuplicateKeyErr(err) {
		return domain.Space{}, err
	}

	return space, nil
}

func (s *Service) Get(ctx context.Context, req domain.GetSpaceRequest) (domain.Space, error) {
	if raw := strings.TrimSpace(req.ID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Space{}, domain.ErrInvalidSpace
		}
		space, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return domain.Space{}, err
		}
		if space == nil {
			return domain.Space{}, domain.ErrNotFound
		}
		return *space, nil
	}

	slugValue := strings.TrimSpace(req.Slug)
	if slugValue == "" {
		return domain.Space{}, domain.ErrInvalidSpace
	}
	space, err := s.repo.FindBySlug(ctx, s.db, slugValue)
	if err != nil {
		return domain.Space{}, err
	}
	if space == nil {
		return domain.Space{}, domain.ErrNotFound
	}
	return *space, nil
}

func (s *Service) AddMember(ctx context.Context, req domain.AddMemberRequest) (domain.SpaceMember, error) {
	spaceID, ok := spacectx.SpaceIDFromContext(ctx)
	if !ok || spaceID == 0 {
		return domain.SpaceMember{}, domain.ErrInvalidSpace
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.SpaceMember{}, domain.ErrInvalidUser
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleMember
	}
	switch role {
	case domain.RoleAdmin, domain.RoleMember:
	default:
		return domain.SpaceMember{}, domain.ErrInvalidRole
	}

	member := domain.SpaceMember{
		ID:        s.genID.Generate(),
		SpaceID:   spaceID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertMember(ctx, s.db, &member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			existing, findErr := s.repo.FindMember(ctx, s.db, spaceID, userID)
			if findErr != nil {
				return domain.SpaceMember{}, findErr
			}
			if existing != nil {
				return *existing, nil
			}
		}
		return domain.SpaceMember{}, err
	}
	return member, nil
}

func (s *Service) RemoveMember(ctx context.Context, userID string) error {
	spaceID, ok := spacectx.SpaceIDFromContext(ctx)
	if !ok || spaceID == 0 {
		return domain.ErrInvalidSpace
	}
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || id == 0 {
		return domain.ErrInvalidUser
	}
	return s.repo.RemoveMember(ctx, s.db, spaceID, id)
}

func (s *Service) ListMembers(ctx context.Context) ([]domain.SpaceMember, error) {
	spaceID, ok := spacectx.SpaceIDFromContext(ctx)
	if !ok || spaceID == 0 {
		return nil, domain.ErrInvalidSpace
	}
	items, err := s.repo.ListMembers(ctx, s.db, spaceID)
	if err != nil {
		return nil, err
	}
	members := make([]domain.SpaceMember, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		members = append(members, *item)
	}
	return members, nil
}

func (s *Service) CreateChannel(ctx context.Context, req domain.CreateChannelRequest) (domain.Channel, error) {
	spaceID, ok := spacectx.SpaceIDFromContext(ctx)
	if !ok || spaceID == 0 {
		return domain.Channel{}, domain.ErrInvalidSpace
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Channel{}, domain.ErrInvalidName
	}

	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = domain.ChannelKindGeneral
	}
	switch kind {
	case domain.ChannelKindGeneral, domain.ChannelKindEvents, domain.ChannelKindCourses:
	default:
		return domain.Channel{}, domain.ErrInvalidKind
	}

	channel := domain.Channel{
		ID:        s.genID.Generate(),
		SpaceID:   spaceID,
		Kind:      kind,
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertChannel(ctx, s.db, &channel); err != nil {
		return domain.Channel{}, err
	}
	return channel, nil
}

func (s *Service) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	spaceID, ok := spacectx.SpaceIDFromContext(ctx)
	if !ok || spaceID == 0 {
		return nil, domain.ErrInvalidSpace
	}
	items, err := s.repo.ListChannels(ctx, s.db, spaceID)
	if err != nil {
		return nil, err
	}
	channels := make([]domain.Channel, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		channels = append(channels, *item)
	}
	return channels, nil
}

func (s *Service) RoleOf(ctx context.Context, userID string) (string, error) {
	spaceID, ok := spacectx.SpaceIDFromContext(ctx)
	if !ok || spaceID == 0 {
		return "", domain.ErrInvalidSpace
	}
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || id == 0 {
		return "", domain.ErrInvalidUser
	}
	member, err := s.repo.FindMember(ctx, s.db, spaceID, id)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", domain.ErrNotMember
	}
	return member.Role, nil
}
