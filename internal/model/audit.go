package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateOrder       = "CREATE_ORDER"
	ActionUpdateOrder       = "UPDATE_ORDER"
	ActionDeleteOrder       = "DELETE_ORDER"
	ActionOrderTransition   = "ORDER_STATUS_CHANGE"
	ActionCreateEvent       = "CREATE_EVENT"
	ActionUpdateEvent       = "UPDATE_EVENT"
	ActionDeleteEvent       = "DELETE_EVENT"
	ActionEventTransition   = "EVENT_STATUS_CHANGE"
	ActionCreatePermission  = "CREATE_PERMISSION"
	ActionUpdatePermission  = "UPDATE_PERMISSION"
	ActionDeletePermission  = "DELETE_PERMISSION"
	ActionCreateGroup       = "CREATE_GROUP"
	ActionUpdateGroup       = "UPDATE_GROUP"
	ActionDeleteGroup       = "DELETE_GROUP"
	ActionGrantPermission   = "GRANT_PERMISSION"
	ActionRevokePermission  = "REVOKE_PERMISSION"
	ActionAddGroupMember    = "ADD_GROUP_MEMBER"
	ActionRemoveGroupMember = "REMOVE_GROUP_MEMBER"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
