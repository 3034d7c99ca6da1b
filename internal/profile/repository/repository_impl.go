package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/profile/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "email", "updated_at"}),
		}).
		Create(profile).Error
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, display_name, email, payout_key, created_at, updated_at
		 FROM profiles WHERE user_id = ?`,
		userID,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.UserID == 0 {
		return nil, nil
	}
	return &profile, nil
}

func (r *repo) FindByUserIDs(ctx context.Context, db *gorm.DB, userIDs []snowflake.ID) ([]*domain.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var profiles []*domain.Profile
	err := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("user_id IN ?", userIDs).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repo) UpdatePayoutKey(ctx context.Context, db *gorm.DB, userID snowflake.ID, payoutKey *string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE profiles SET payout_key = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`,
		payoutKey,
		userID,
	).Error
}
