package models

import "time"

type OrderItemStatus string

const (
	ItemPending OrderItemStatus = "pending"
	ItemSent    OrderItemStatus = "sent"
	ItemReady   OrderItemStatus = "ready"
	ItemServed  OrderItemStatus = "served"
	ItemVoid    OrderItemStatus = "void"
)

// itemRank orders the kitchen lifecycle. Transitions only ever move forward;
// void is terminal and reachable from any non-terminal state.
var itemRank = map[OrderItemStatus]int{
	ItemPending: 0,
	ItemSent:    1,
	ItemReady:   2,
	ItemServed:  3,
}

// CanTransition reports whether s -> next is a legal lifecycle move.
func (s OrderItemStatus) CanTransition(next OrderItemStatus) bool {
	if s == ItemVoid {
		return false
	}
	if next == ItemVoid {
		return s != ItemServed
	}
	from, ok := itemRank[s]
	if !ok {
		return false
	}
	to, ok := itemRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// OrderItem is one line on a check. Voided items are never deleted; they keep
// their historical TotalPrice and drop out of subtotal computation only.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"index;not null" json:"order_id"`
	Order      Order           `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint            `gorm:"not null" json:"menu_item_id"`
	MenuName   string          `gorm:"type:varchar(100);not null" json:"menu_name"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  float64         `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice float64         `gorm:"type:decimal(12,2);not null" json:"total_price"`
	SeatNumber int             `gorm:"not null;default:0" json:"seat_number"`
	CourseNo   int             `gorm:"not null;default:1" json:"course_no"`
	Modifiers  string          `gorm:"type:text" json:"modifiers"`
	Notes      string          `gorm:"type:text" json:"notes"`
	Status     OrderItemStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	IsVoid     bool       `gorm:"not null;default:false" json:"is_void"`
	VoidReason string     `gorm:"type:varchar(255)" json:"void_reason,omitempty"`
	VoidedBy   *uint      `json:"voided_by,omitempty"`
	VoidedAt   *time.Time `json:"voided_at,omitempty"`

	SentToKitchenAt *time.Time `json:"sent_to_kitchen_at,omitempty"`
	PreparedAt      *time.Time `json:"prepared_at,omitempty"`
	ServedAt        *time.Time `json:"served_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
