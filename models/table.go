package models

import "time"

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TableCleaning  TableStatus = "cleaning"
	TableBlocked   TableStatus = "blocked"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning, TableBlocked:
		return true
	}
	return false
}

// Table is a physical seating unit. CurrentOrderID is non-nil only while the
// status is occupied, and at most one open order may hold a table.
type Table struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	OutletID       uint        `gorm:"index;not null" json:"outlet_id"`
	TableNumber    string      `gorm:"type:varchar(50);not null" json:"table_number"`
	Capacity       int         `gorm:"not null;default:2" json:"capacity"`
	Status         TableStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CurrentOrderID *uint       `gorm:"index" json:"current_order_id,omitempty"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}
