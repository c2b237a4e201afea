package models

import "time"

// MenuItem is the catalog read model. The ledger copies Price into the
// OrderItem at creation time; later catalog edits never touch past orders.
type MenuItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OutletID  uint      `gorm:"index;not null" json:"outlet_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Price     float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
