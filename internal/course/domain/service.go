package domain

import (
	"context"
	"errors"
)

type CreateCourseRequest struct {
	SpaceID   string
	ChannelID string
	Title     string
	Published bool
}

type Service interface {
	Create(ctx context.Context, req CreateCourseRequest) (*Course, error)
	Get(ctx context.Context, id string) (*Course, error)
	List(ctx context.Context, spaceID string) ([]*Course, error)
	Enroll(ctx context.Context, courseID, userID string) (*CourseEnrollment, error)
	ListEnrollments(ctx context.Context, userID string) ([]*CourseEnrollment, error)
}

var (
	ErrInvalidCourse  = errors.New("invalid_course")
	ErrInvalidSpace   = errors.New("invalid_space")
	ErrInvalidChannel = errors.New("invalid_channel")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidUser    = errors.New("invalid_user")
	ErrPaywalled      = errors.New("course_paywalled")
	ErrNotFound       = errors.New("course_not_found")
)
