package models

import (
	"fmt"
	"time"
)

type ShiftStatus string

const (
	ShiftOpen       ShiftStatus = "open"
	ShiftClosed     ShiftStatus = "closed"
	ShiftReconciled ShiftStatus = "reconciled"
)

// Shift is one cashier/terminal working session. ExpectedCash and Variance
// are computed once at close: expected = openingFloat + cashSales - drops,
// variance = actualCash - expected. The variance is reported, never
// auto-corrected.
type Shift struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OutletID      uint        `gorm:"index;not null" json:"outlet_id"`
	TerminalID    string      `gorm:"type:varchar(50);index;not null" json:"terminal_id"`
	EmployeeID    uint        `gorm:"index;not null" json:"employee_id"`
	OpeningFloat  float64     `gorm:"type:decimal(12,2);not null" json:"opening_float"`
	ClosingFloat  float64     `gorm:"type:decimal(12,2);not null;default:0" json:"closing_float"`
	CashSales     float64     `gorm:"type:decimal(12,2);not null;default:0" json:"cash_sales"`
	CardSales     float64     `gorm:"type:decimal(12,2);not null;default:0" json:"card_sales"`
	OtherSales    float64     `gorm:"type:decimal(12,2);not null;default:0" json:"other_sales"`
	TaxTotal      float64     `gorm:"type:decimal(12,2);not null;default:0" json:"tax_total"`
	DiscountTotal float64     `gorm:"type:decimal(12,2);not null;default:0" json:"discount_total"`
	TipTotal      float64     `gorm:"type:decimal(12,2);not null;default:0" json:"tip_total"`
	ExpectedCash  float64     `gorm:"type:decimal(12,2);not null;default:0" json:"expected_cash"`
	ActualCash    float64     `gorm:"type:decimal(12,2);not null;default:0" json:"actual_cash"`
	Variance      float64     `gorm:"type:decimal(12,2);not null;default:0" json:"variance"`
	Status        ShiftStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	// ActiveEmployee and ActiveTerminal back the one-open-shift rule with
	// unique indexes: set while the shift is open, NULL once it closes.
	// Two concurrent opens race on the index, not on a gap lock.
	ActiveEmployee *uint   `gorm:"uniqueIndex" json:"-"`
	ActiveTerminal *string `gorm:"type:varchar(120);uniqueIndex" json:"-"`
	StartTime     time.Time   `gorm:"not null" json:"start_time"`
	EndTime       *time.Time  `json:"end_time,omitempty"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
	CashDrops     []CashDrop  `gorm:"foreignKey:ShiftID" json:"cash_drops,omitempty"`
}

// TerminalGuard is the ActiveTerminal key: a terminal id is only unique
// within its outlet.
func TerminalGuard(outletID uint, terminalID string) string {
	return fmt.Sprintf("%d/%s", outletID, terminalID)
}

// CashDrop is an immutable mid-shift removal of cash from the drawer. Drops
// feed expected-cash at close; they never touch the sales accumulators.
type CashDrop struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShiftID     uint      `gorm:"index;not null" json:"shift_id"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reason      string    `gorm:"type:varchar(255)" json:"reason"`
	PerformedBy uint      `gorm:"not null" json:"performed_by"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
