package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer is the person or organization an order or event belongs to.
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(30)" json:"phone"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Address   string         `gorm:"type:text" json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
