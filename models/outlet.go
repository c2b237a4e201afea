package models

import "time"

// Outlet holds the per-venue billing configuration. The ledger only ever
// reads these rates; outlet management lives elsewhere.
type Outlet struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(100);not null" json:"name"`
	TaxRate           float64   `gorm:"type:decimal(6,4);not null;default:0" json:"tax_rate"`
	ServiceChargeRate float64   `gorm:"type:decimal(6,4);not null;default:0" json:"service_charge_rate"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

// OutletRates is the read model handed to the billing computations.
type OutletRates struct {
	TaxRate           float64 `json:"tax_rate"`
	ServiceChargeRate float64 `json:"service_charge_rate"`
}

func (o Outlet) Rates() OutletRates {
	return OutletRates{TaxRate: o.TaxRate, ServiceChargeRate: o.ServiceChargeRate}
}
