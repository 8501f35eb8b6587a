package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a catering event: like an order, but its lines may also reference
// rentable articles whose stock is debited on confirmation and credited back
// when the event closes or is cancelled.
type Event struct {
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
	Items           []EventItem     `gorm:"foreignKey:EventID" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Status returns the typed status for the persisted id.
func (e *Event) Status() Status { return Status(e.StatusID) }

// EventItem is one line of an event. ItemType is CAKE, TRAY or ARTICLE.
type EventItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	EventID   uint            `gorm:"not null;index" json:"event_id"`
	ItemType  string          `gorm:"type:varchar(10);not null" json:"item_type"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}
