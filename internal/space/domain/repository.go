package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, space *Space) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Space, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Space, error)
	Update(ctx context.Context, db *gorm.DB, space *Space) error

	InsertMember(ctx context.Context, db *gorm.DB, member *SpaceMember) error
	FindMember(ctx context.Context, db *gorm.DB, spaceID, userID snowflake.ID) (*SpaceMember, error)
	ListMembers(ctx context.Context, db *gorm.DB, spaceID snowflake.ID) ([]*SpaceMember, error)
	RemoveMember(ctx context.Context, db *gorm.DB, spaceID, userID snowflake.ID) error

	InsertChannel(ctx context.Context, db *gorm.DB, channel *Channel) error
	FindChannelByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Channel, error)
	ListChannels(ctx context.Context, db *gorm.DB, spaceID snowflake.ID) ([]*Channel, error)
}
