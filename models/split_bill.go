package models

import "time"

type SplitType string

const (
	SplitEqual  SplitType = "equal"
	SplitBySeat SplitType = "by_seat"
	SplitByItem SplitType = "by_item"
	SplitCustom SplitType = "custom"
)

func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitBySeat, SplitByItem, SplitCustom:
		return true
	}
	return false
}

type SplitBillStatus string

const (
	SplitPending SplitBillStatus = "pending"
	SplitPaid    SplitBillStatus = "paid"
	SplitVoided  SplitBillStatus = "void"
)

// SplitBill is one payable partition of a closed-enough order. All splits of
// an order share a GroupID and are created in one batch; the batch is
// immutable, corrections void the whole set and recreate it.
type SplitBill struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"index;not null" json:"order_id"`
	GroupID       string          `gorm:"type:varchar(64);index;not null" json:"group_id"`
	SplitNumber   int             `gorm:"not null" json:"split_number"`
	SplitType     SplitType       `gorm:"type:varchar(20);not null" json:"split_type"`
	Subtotal      float64         `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount     float64         `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	ServiceCharge float64         `gorm:"type:decimal(12,2);not null" json:"service_charge"`
	Total         float64         `gorm:"type:decimal(12,2);not null" json:"total"`
	Status        SplitBillStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
	Items         []SplitBillItem `gorm:"foreignKey:SplitBillID" json:"items,omitempty"`
}

// SplitBillItem assigns one order item to one split for by-item and by-seat
// splits.
type SplitBillItem struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	SplitBillID uint `gorm:"index;not null" json:"split_bill_id"`
	OrderItemID uint `gorm:"index;not null" json:"order_item_id"`
}
