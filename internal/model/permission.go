package model

import (
	"time"

	"github.com/google/uuid"
)

// Permission represents a single grantable action. The slug is derived from
// module and action ("orders:view") and is unique.
type Permission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Module    string    `gorm:"type:varchar(100);not null;index" json:"module"`
	Action    string    `gorm:"type:varchar(100);not null" json:"action"`
	Slug      string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Group owns a set of permission links and is granted to users via membership.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserPermission is a direct grant, independent of group membership.
type UserPermission struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	PermissionID uint      `gorm:"primaryKey" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (UserPermission) TableName() string { return "user_permissions" }

// UserGroup links a user to a group.
type UserGroup struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	GroupID   uint      `gorm:"primaryKey" json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserGroup) TableName() string { return "user_groups" }

// GroupPermission links a group to a permission.
type GroupPermission struct {
	GroupID      uint      `gorm:"primaryKey" json:"group_id"`
	PermissionID uint      `gorm:"primaryKey" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (GroupPermission) TableName() string { return "group_permissions" }
