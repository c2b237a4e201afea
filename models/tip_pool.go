package models

import "time"

type TipPoolStatus string

const (
	TipPoolDistributed TipPoolStatus = "distributed"
	TipPoolVoided      TipPoolStatus = "void"
)

// TipPool is one tip distribution event. Pools are immutable once
// distributed; corrections are a new, separately dated distribution.
type TipPool struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OutletID      uint            `gorm:"index;not null" json:"outlet_id"`
	PoolDate      time.Time       `gorm:"not null" json:"pool_date"`
	ShiftType     string          `gorm:"type:varchar(30)" json:"shift_type"`
	TotalTips     float64         `gorm:"type:decimal(12,2);not null" json:"total_tips"`
	Status        TipPoolStatus   `gorm:"type:varchar(20);not null;default:'distributed'" json:"status"`
	DistributedAt time.Time       `gorm:"not null" json:"distributed_at"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	Allocations   []TipAllocation `gorm:"foreignKey:TipPoolID" json:"allocations"`
}

// TipAllocation is one employee's share of a pool. The allocations of a pool
// always conserve TotalTips to within a cent.
type TipAllocation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TipPoolID    uint      `gorm:"index;not null" json:"tip_pool_id"`
	EmployeeID   uint      `gorm:"index;not null" json:"employee_id"`
	SharePercent float64   `gorm:"type:decimal(6,3);not null;default:0" json:"share_percent"`
	Amount       float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
