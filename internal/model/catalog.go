package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cake is a catalog product sold through orders and events.
type Cake struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Tray is a catalog product (assorted pastry tray).
type Tray struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// RentalArticle is event-only rentable equipment (stands, fountains, decor).
// Invariant: 0 <= StockAvailable <= StockTotal.
type RentalArticle struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Category       string          `gorm:"type:varchar(100)" json:"category"`
	Reusable       bool            `gorm:"default:true" json:"reusable"`
	StockTotal     int             `gorm:"not null;default:0" json:"stock_total"`
	StockAvailable int             `gorm:"not null;default:0" json:"stock_available"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_cost"`
	RentalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"rental_price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}
