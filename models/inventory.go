package models

import "time"

type MovementType string

const (
	MovementAdjustment      MovementType = "adjustment"
	MovementWaste           MovementType = "waste"
	MovementPurchaseReceipt MovementType = "purchase_receipt"
)

// InventoryItem is a trackable stock unit. CurrentStock is a projection of
// InitialStock plus all movement deltas and is only written by the stock
// ledger alongside a movement row.
type InventoryItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OutletID     uint      `gorm:"index;not null" json:"outlet_id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Unit         string    `gorm:"type:varchar(20);not null;default:'pcs'" json:"unit"`
	InitialStock float64   `gorm:"type:decimal(12,3);not null;default:0" json:"initial_stock"`
	CurrentStock float64   `gorm:"type:decimal(12,3);not null;default:0" json:"current_stock"`
	ReorderPoint float64   `gorm:"type:decimal(12,3);not null;default:0" json:"reorder_point"`
	AverageCost  float64   `gorm:"type:decimal(12,2);not null;default:0" json:"average_cost"`
	LastCost     float64   `gorm:"type:decimal(12,2);not null;default:0" json:"last_cost"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// StockMovement is an append-only ledger entry. Rows are never updated or
// deleted; an item's stock is reconstructable as initial + sum(deltas).
type StockMovement struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	InventoryItemID uint          `gorm:"index;not null" json:"inventory_item_id"`
	Delta           float64       `gorm:"type:decimal(12,3);not null" json:"delta"`
	Type            MovementType  `gorm:"type:varchar(30);not null" json:"type"`
	Reason          string        `gorm:"type:varchar(255)" json:"reason"`
	Reference       string        `gorm:"type:varchar(64);index" json:"reference"`
	PerformedBy     uint          `gorm:"not null" json:"performed_by"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
	InventoryItem   InventoryItem `gorm:"foreignKey:InventoryItemID" json:"-"`
}
