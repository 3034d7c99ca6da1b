package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/space/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, space *domain.Space) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO spaces (id, slug, name, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		space.ID,
		space.Slug,
		space.Name,
		space.OwnerID,
		space.CreatedAt,
		space.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Space, error) {
	var space domain.Space
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, owner_id, created_at, updated_at
		 FROM spaces WHERE id = ?`,
		id,
	).Scan(&space).Error
	if err != nil {
		return nil, err
	}
	if space.ID == 0 {
		return nil, nil
	}
	return &space, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Space, error) {
	var space domain.Space
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, owner_id, created_at, updated_at
		 FROM spaces WHERE slug = ?`,
		slug,
	).Scan(&space).Error
	if err != nil {
		return nil, err
	}
	if space.ID == 0 {
		return nil, nil
	}
	return &space, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, space *domain.Space) error {
	return db.WithContext(ctx).Exec(
		`UPDATE spaces SET name = ?, updated_at = ? WHERE id = ?`,
		space.Name,
		space.UpdatedAt,
		space.ID,
	).Error
}

func (r *repo) InsertMember(ctx context.Context, db *gorm.DB, member *domain.SpaceMember) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO space_members (id, space_id, user_id, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		member.ID,
		member.SpaceID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	).Error
}

func (r *repo) FindMember(ctx context.Context, db *gorm.DB, spaceID, userID snowflake.ID) (*domain.SpaceMember, error) {
	var member domain.SpaceMember
	err := db.WithContext(ctx).Raw(
		`SELECT id, space_id, user_id, role, created_at
		 FROM space_members WHERE space_id = ? AND user_id = ?`,
		spaceID,
		userID,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) ListMembers(ctx context.Context, db *gorm.DB, spaceID snowflake.ID) ([]*domain.SpaceMember, error) {
	var members []*domain.SpaceMember
	err := db.WithContext(ctx).
		Model(&domain.SpaceMember{}).
		Where("space_id = ?", spaceID).
		Order("created_at asc, id asc").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) RemoveMember(ctx context.Context, db *gorm.DB, spaceID, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM space_members WHERE space_id = ? AND user_id = ?`,
		spaceID,
		userID,
	).Error
}

func (r *repo) InsertChannel(ctx context.Context, db *gorm.DB, channel *domain.Channel) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO channels (id, space_id, kind, name, slug, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		channel.ID,
		channel.SpaceID,
		channel.Kind,
		channel.Name,
		channel.Slug,
		channel.CreatedAt,
	).Error
}

func (r *repo) FindChannelByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Channel, error) {
	var channel domain.Channel
	err := db.WithContext(ctx).Raw(
		`SELECT id, space_id, kind, name, slug, created_at
		 FROM channels WHERE id = ?`,
		id,
	).Scan(&channel).Error
	if err != nil {
		return nil, err
	}
	if channel.ID == 0 {
		return nil, nil
	}
	return &channel, nil
}

func (r *repo) ListChannels(ctx context.Context, db *gorm.DB, spaceID snowflake.ID) ([]*domain.Channel, error) {
	var channels []*domain.Channel
	err := db.WithContext(ctx).
		Model(&domain.Channel{}).
		Where("space_id = ?", spaceID).
		Order("created_at asc, id asc").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}
