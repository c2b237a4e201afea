package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/platefront/rms-backend/events"
	"github.com/platefront/rms-backend/models"
	"github.com/platefront/rms-backend/utils"
)

// ShiftService owns cashier sessions: open, cash drops, close with variance.
type ShiftService struct {
	DB *gorm.DB
}

func NewShiftService(db *gorm.DB) *ShiftService {
	return &ShiftService{DB: db}
}

type OpenShiftRequest struct {
	OutletID     uint    `json:"outlet_id" binding:"required"`
	TerminalID   string  `json:"terminal_id" binding:"required"`
	EmployeeID   uint    `json:"employee_id" binding:"required"`
	OpeningFloat float64 `json:"opening_float"`
}

type CashDropRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Reason      string  `json:"reason"`
	PerformedBy uint    `json:"performed_by"`
}

type CloseShiftRequest struct {
	ActualCash   float64 `json:"actual_cash"`
	ClosingFloat float64 `json:"closing_float"`
}

// OpenShift starts a session. One open shift per employee and per terminal:
// the locked pre-check gives the precise conflict message, and the unique
// guard columns catch the race where two concurrent opens both see no open
// shift yet. Either way the caller gets a conflict, not a deadlock.
func (s *ShiftService) OpenShift(req OpenShiftRequest) (*models.Shift, error) {
	if req.OpeningFloat < 0 {
		return nil, fmt.Errorf("%w: opening float must not be negative", ErrValidation)
	}

	var shift models.Shift
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var outlet models.Outlet
		if err := tx.First(&outlet, req.OutletID).Error; err != nil {
			return fmt.Errorf("%w: outlet %d", ErrNotFound, req.OutletID)
		}

		var open []models.Shift
		if err := lockForUpdate(tx).
			Where("status = ? AND (employee_id = ? OR (outlet_id = ? AND terminal_id = ?))",
				models.ShiftOpen, req.EmployeeID, req.OutletID, req.TerminalID).
			Find(&open).Error; err != nil {
			return err
		}
		for _, existing := range open {
			if existing.EmployeeID == req.EmployeeID {
				return fmt.Errorf("%w: employee %d already has open shift %d", ErrConflict, req.EmployeeID, existing.ID)
			}
			return fmt.Errorf("%w: terminal %s already bound to shift %d", ErrConflict, req.TerminalID, existing.ID)
		}

		now := time.Now()
		employee := req.EmployeeID
		terminal := models.TerminalGuard(req.OutletID, req.TerminalID)
		shift = models.Shift{
			OutletID:       req.OutletID,
			TerminalID:     req.TerminalID,
			EmployeeID:     req.EmployeeID,
			OpeningFloat:   utils.RoundMoney(req.OpeningFloat),
			Status:         models.ShiftOpen,
			ActiveEmployee: &employee,
			ActiveTerminal: &terminal,
			StartTime:      now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&shift).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: employee %d or terminal %s already has an open shift",
					ErrConflict, req.EmployeeID, req.TerminalID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logInfof("shift %d opened on %s by employee %d, float %.2f",
		shift.ID, shift.TerminalID, shift.EmployeeID, shift.OpeningFloat)
	return &shift, nil
}

// RecordCashDrop appends an immutable drop record. Drops only feed the
// expected-cash computation at close; the sales accumulators never move.
func (s *ShiftService) RecordCashDrop(shiftID uint, req CashDropRequest) (*models.CashDrop, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: drop amount must be positive", ErrValidation)
	}

	var drop models.CashDrop
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		shift, err := s.lockShift(tx, shiftID)
		if err != nil {
			return err
		}
		if shift.Status != models.ShiftOpen {
			return fmt.Errorf("%w: shift %d is %s", ErrInvalidState, shiftID, shift.Status)
		}

		drop = models.CashDrop{
			ShiftID:     shiftID,
			Amount:      utils.RoundMoney(req.Amount),
			Reason:      req.Reason,
			PerformedBy: req.PerformedBy,
			CreatedAt:   time.Now(),
		}
		return tx.Create(&drop).Error
	})
	if err != nil {
		return nil, err
	}
	return &drop, nil
}

// CloseShift computes expected cash and variance, stamps the end time and
// moves the shift to closed. The variance is reported, never corrected;
// reconciliation is a separate supervisor action.
func (s *ShiftService) CloseShift(shiftID uint, req CloseShiftRequest) (*models.Shift, error) {
	if req.ActualCash < 0 || req.ClosingFloat < 0 {
		return nil, fmt.Errorf("%w: counted amounts must not be negative", ErrValidation)
	}

	var shift *models.Shift
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		shift, err = s.lockShift(tx, shiftID)
		if err != nil {
			return err
		}
		if shift.Status != models.ShiftOpen {
			return fmt.Errorf("%w: shift %d is already %s", ErrInvalidState, shiftID, shift.Status)
		}

		var drops []models.CashDrop
		if err := tx.Where("shift_id = ?", shiftID).Find(&drops).Error; err != nil {
			return err
		}
		var dropCents int64
		for _, d := range drops {
			dropCents += utils.Cents(d.Amount)
		}

		expectedCents := utils.Cents(shift.OpeningFloat) + utils.Cents(shift.CashSales) - dropCents
		actualCents := utils.Cents(req.ActualCash)

		now := time.Now()
		shift.ExpectedCash = utils.FromCents(expectedCents)
		shift.ActualCash = utils.FromCents(actualCents)
		shift.Variance = utils.FromCents(actualCents - expectedCents)
		shift.ClosingFloat = utils.RoundMoney(req.ClosingFloat)
		shift.Status = models.ShiftClosed
		shift.ActiveEmployee = nil
		shift.ActiveTerminal = nil
		shift.EndTime = &now
		shift.UpdatedAt = now
		return tx.Save(shift).Error
	})
	if err != nil {
		return nil, err
	}

	logInfof("shift %d closed: expected %.2f, actual %.2f, variance %.2f",
		shift.ID, shift.ExpectedCash, shift.ActualCash, shift.Variance)
	events.ShiftClosed(map[string]interface{}{
		"shift_id": shift.ID,
		"variance": shift.Variance,
	})
	return shift, nil
}

// ReconcileShift is the explicit supervisor sign-off after close.
func (s *ShiftService) ReconcileShift(shiftID uint) (*models.Shift, error) {
	var shift *models.Shift
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		shift, err = s.lockShift(tx, shiftID)
		if err != nil {
			return err
		}
		if shift.Status != models.ShiftClosed {
			return fmt.Errorf("%w: shift %d is %s, only closed shifts reconcile", ErrInvalidState, shiftID, shift.Status)
		}
		shift.Status = models.ShiftReconciled
		shift.UpdatedAt = time.Now()
		return tx.Save(shift).Error
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// GetShift returns a shift with its drop log.
func (s *ShiftService) GetShift(shiftID uint) (*models.Shift, error) {
	var shift models.Shift
	if err := s.DB.Preload("CashDrops").First(&shift, shiftID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: shift %d", ErrNotFound, shiftID)
		}
		return nil, err
	}
	return &shift, nil
}

func (s *ShiftService) lockShift(tx *gorm.DB, shiftID uint) (*models.Shift, error) {
	var shift models.Shift
	if err := lockForUpdate(tx).First(&shift, shiftID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: shift %d", ErrNotFound, shiftID)
		}
		return nil, err
	}
	return &shift, nil
}

// applyOrderToShift folds a closed order's tender into the open shift, in
// the same transaction that closes the order.
func applyOrderToShift(tx *gorm.DB, shiftID uint, order *models.Order, method string) error {
	var shift models.Shift
	if err := lockForUpdate(tx).First(&shift, shiftID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: shift %d", ErrNotFound, shiftID)
		}
		return err
	}
	if shift.Status != models.ShiftOpen {
		return fmt.Errorf("%w: shift %d is %s", ErrInvalidState, shiftID, shift.Status)
	}

	switch method {
	case "cash":
		shift.CashSales = utils.RoundMoney(shift.CashSales + order.Total)
	case "card":
		shift.CardSales = utils.RoundMoney(shift.CardSales + order.Total)
	default:
		shift.OtherSales = utils.RoundMoney(shift.OtherSales + order.Total)
	}
	shift.TaxTotal = utils.RoundMoney(shift.TaxTotal + order.TaxAmount + order.ServiceCharge)
	shift.DiscountTotal = utils.RoundMoney(shift.DiscountTotal + order.Discount)
	shift.TipTotal = utils.RoundMoney(shift.TipTotal + order.Tip)
	shift.UpdatedAt = time.Now()
	return tx.Save(&shift).Error
}
