package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, course *Course) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Course, error)
	ListBySpace(ctx context.Context, db *gorm.DB, spaceID snowflake.ID) ([]*Course, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]interface{}) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertEnrollment(ctx context.Context, db *gorm.DB, enrollment *CourseEnrollment) error
	FindEnrollment(ctx context.Context, db *gorm.DB, userID, courseID snowflake.ID) (*CourseEnrollment, error)
	ListEnrollmentsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*CourseEnrollment, error)
}
