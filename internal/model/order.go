package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line item product kinds. The tag says which catalog table ProductID points
// at, instead of three nullable foreign keys.
const (
	ItemTypeCake    = "CAKE"
	ItemTypeTray    = "TRAY"
	ItemTypeArticle = "ARTICLE" // events only
)

// DeliveryType enum simulation
const (
	DeliveryTypePickup   = "PICKUP"
	DeliveryTypeDelivery = "DELIVERY"
)

// Order is a customer order for cakes and trays. Mutable only while pending;
// after that only status transitions are allowed.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CustomerID      uint            `gorm:"not null;index" json:"customer_id"`
	Customer        *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	DeliveryDate    time.Time       `gorm:"not null" json:"delivery_date"`
	DeliveryType    string          `gorm:"type:varchar(20);not null" json:"delivery_type"`
	DeliveryAddress string          `gorm:"type:text" json:"delivery_address"`
	Notes           string          `gorm:"type:text" json:"notes"`
	ItemCount       int             `gorm:"not null;default:0" json:"item_count"`
	DiscountTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_total"`
	FinalTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"final_total"`
	StatusID        int             `gorm:"not null;default:1;index" json:"status_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Status returns the typed status for the persisted id.
func (o *Order) Status() Status { return Status(o.StatusID) }

// OrderItem snapshots the unit price at write time; catalog price changes do
// not rewrite history.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ItemType  string          `gorm:"type:varchar(10);not null" json:"item_type"` // CAKE, TRAY
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}
