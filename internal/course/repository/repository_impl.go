package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/course/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, course *domain.Course) error {
	return db.WithContext(ctx).Create(course).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Course, error) {
	var course domain.Course
	err := db.WithContext(ctx).
		Model(&domain.Course{}).
		Where("id = ?", id).
		Limit(1).
		Find(&course).Error
	if err != nil {
		return nil, err
	}
	if course.ID == 0 {
		return nil, nil
	}
	return &course, nil
}

func (r *repo) ListBySpace(ctx context.Context, db *gorm.DB, spaceID snowflake.ID) ([]*domain.Course, error) {
	var courses []*domain.Course
	err := db.WithContext(ctx).
		Model(&domain.Course{}).
		Where("space_id = ?", spaceID).
		Order("created_at asc, id asc").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]interface{}) error {
	return db.WithContext(ctx).
		Model(&domain.Course{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM courses WHERE id = ?`, id).Error
}

func (r *repo) InsertEnrollment(ctx context.Context, db *gorm.DB, enrollment *domain.CourseEnrollment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO course_enrollments (id, user_id, course_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		enrollment.ID,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.Status,
		enrollment.CreatedAt,
	).Error
}

func (r *repo) FindEnrollment(ctx context.Context, db *gorm.DB, userID, courseID snowflake.ID) (*domain.CourseEnrollment, error) {
	var enrollment domain.CourseEnrollment
	err := db.WithContext(ctx).
		Model(&domain.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Limit(1).
		Find(&enrollment).Error
	if err != nil {
		return nil, err
	}
	if enrollment.ID == 0 {
		return nil, nil
	}
	return &enrollment, nil
}

func (r *repo) ListEnrollmentsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.CourseEnrollment, error) {
	var enrollments []*domain.CourseEnrollment
	err := db.WithContext(ctx).
		Model(&domain.CourseEnrollment{}).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}
