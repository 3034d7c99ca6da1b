package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const EnrollmentActive = "active"

type Course struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SpaceID   snowflake.ID `gorm:"not null;index" json:"space_id"`
	ChannelID snowflake.ID `gorm:"not null;index" json:"channel_id"`
	Title     string       `gorm:"not null" json:"title"`
	Slug      string       `gorm:"not null;index" json:"slug"`
	Published bool         `gorm:"not null;default:false" json:"published"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type CourseEnrollment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;uniqueIndex:idx_course_enrollments_user_course" json:"user_id"`
	CourseID  snowflake.ID `gorm:"not null;uniqueIndex:idx_course_enrollments_user_course" json:"course_id"`
	Status    string       `gorm:"not null;default:active" json:"status"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
