package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, profile *Profile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Profile, error)
	FindByUserIDs(ctx context.Context, db *gorm.DB, userIDs []snowflake.ID) ([]*Profile, error)
	UpdatePayoutKey(ctx context.Context, db *gorm.DB, userID snowflake.ID, payoutKey *string) error
}
