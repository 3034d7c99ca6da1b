package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Space struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug      string       `gorm:"not null;uniqueIndex" json:"slug"`
	Name      string       `gorm:"not null" json:"name"`
	OwnerID   snowflake.ID `gorm:"not null;index" json:"owner_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type SpaceMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SpaceID   snowflake.ID `gorm:"not null;uniqueIndex:idx_space_members_space_user" json:"space_id"`
	UserID    snowflake.ID `gorm:"not null;uniqueIndex:idx_space_members_space_user" json:"user_id"`
	Role      string       `gorm:"not null;default:member" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

const (
	ChannelKindGeneral = "general"
	ChannelKindEvents  = "events"
	ChannelKindCourses = "courses"
)

type Channel struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SpaceID   snowflake.ID `gorm:"not null;index" json:"space_id"`
	Kind      string       `gorm:"not null" json:"kind"`
	Name      string       `gorm:"not null" json:"name"`
	Slug      string       `gorm:"not null" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
