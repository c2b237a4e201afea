package models

import "time"

type OrderStatus string

const (
	OrderOpen   OrderStatus = "open"
	OrderClosed OrderStatus = "closed"
	OrderVoid   OrderStatus = "void"
)

type OrderType string

const (
	OrderDineIn   OrderType = "dine_in"
	OrderTakeaway OrderType = "takeaway"
)

// Order is one dine-in check. Money fields are only ever written by the
// recompute path; Total == Subtotal + TaxAmount + ServiceCharge + Tip - Discount
// holds after every committed mutation.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OutletID      uint        `gorm:"index;not null" json:"outlet_id"`
	Outlet        Outlet      `gorm:"foreignKey:OutletID" json:"-"`
	TableID       *uint       `gorm:"index" json:"table_id,omitempty"`
	ServerID      uint        `gorm:"not null" json:"server_id"`
	GuestCount    int         `gorm:"not null;default:1" json:"guest_count"`
	OrderType     OrderType   `gorm:"type:varchar(20);not null;default:'dine_in'" json:"order_type"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Subtotal      float64     `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	TaxAmount     float64     `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	ServiceCharge float64     `gorm:"type:decimal(12,2);not null;default:0" json:"service_charge"`
	Discount      float64     `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Tip           float64     `gorm:"type:decimal(12,2);not null;default:0" json:"tip"`
	Total         float64     `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	OpenedAt      time.Time   `gorm:"not null" json:"opened_at"`
	ClosedAt      *time.Time  `json:"closed_at,omitempty"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}
