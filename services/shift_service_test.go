package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/models"
)

func TestOpenShiftRejectsDoubleOpen(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)

	svc := NewShiftService(db)
	_, err := svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 1, OpeningFloat: 100})
	require.NoError(t, err)

	// same employee, other terminal
	_, err = svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T2", EmployeeID: 1, OpeningFloat: 100})
	assert.ErrorIs(t, err, ErrConflict)

	// same terminal, other employee
	_, err = svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 2, OpeningFloat: 100})
	assert.ErrorIs(t, err, ErrConflict)

	// both free
	_, err = svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T2", EmployeeID: 2, OpeningFloat: 100})
	assert.NoError(t, err)
}

func TestOpenShiftGuardIndexCatchesRacingInsert(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)

	svc := NewShiftService(db)
	shift, err := svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 1, OpeningFloat: 100})
	require.NoError(t, err)
	require.NotNil(t, shift.ActiveEmployee)
	require.NotNil(t, shift.ActiveTerminal)

	// a second opener that slipped past the existence check still trips
	// the unique guard at insert time
	employee := uint(1)
	racer := models.Shift{
		OutletID:       outlet.ID,
		TerminalID:     "T9",
		EmployeeID:     employee,
		Status:         models.ShiftOpen,
		ActiveEmployee: &employee,
		StartTime:      shift.StartTime,
		CreatedAt:      shift.CreatedAt,
		UpdatedAt:      shift.UpdatedAt,
	}
	err = db.Create(&racer).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	terminal := models.TerminalGuard(outlet.ID, "T1")
	racer = models.Shift{
		OutletID:       outlet.ID,
		TerminalID:     "T1",
		EmployeeID:     2,
		Status:         models.ShiftOpen,
		ActiveTerminal: &terminal,
		StartTime:      shift.StartTime,
		CreatedAt:      shift.CreatedAt,
		UpdatedAt:      shift.UpdatedAt,
	}
	err = db.Create(&racer).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	db.Model(&models.Shift{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// close releases both guards, the terminal and employee become free
	_, err = svc.CloseShift(shift.ID, CloseShiftRequest{ActualCash: 100})
	require.NoError(t, err)
	var closed models.Shift
	require.NoError(t, db.First(&closed, shift.ID).Error)
	assert.Nil(t, closed.ActiveEmployee)
	assert.Nil(t, closed.ActiveTerminal)

	_, err = svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 1, OpeningFloat: 100})
	assert.NoError(t, err)
}

func TestCloseShiftVariance(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)

	svc := NewShiftService(db)
	shift, err := svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 5, OpeningFloat: 500})
	require.NoError(t, err)

	// cash sales accumulate as orders close against the shift
	require.NoError(t, db.Model(&models.Shift{}).Where("id = ?", shift.ID).
		Update("cash_sales", 2000.0).Error)

	_, err = svc.RecordCashDrop(shift.ID, CashDropRequest{Amount: 300, Reason: "safe drop", PerformedBy: 5})
	require.NoError(t, err)

	closed, err := svc.CloseShift(shift.ID, CloseShiftRequest{ActualCash: 2150, ClosingFloat: 500})
	require.NoError(t, err)

	assert.Equal(t, 2200.0, closed.ExpectedCash)
	assert.Equal(t, 2150.0, closed.ActualCash)
	assert.Equal(t, -50.0, closed.Variance)
	assert.Equal(t, models.ShiftClosed, closed.Status)
	assert.NotNil(t, closed.EndTime)
}

func TestCloseShiftVarianceWithManyDrops(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)

	svc := NewShiftService(db)
	shift, err := svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 5, OpeningFloat: 250.50})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Shift{}).Where("id = ?", shift.ID).
		Update("cash_sales", 1234.56).Error)

	drops := []float64{100.25, 50.10, 200}
	var dropSum float64
	for _, amount := range drops {
		_, err = svc.RecordCashDrop(shift.ID, CashDropRequest{Amount: amount, PerformedBy: 5})
		require.NoError(t, err)
		dropSum += amount
	}

	closed, err := svc.CloseShift(shift.ID, CloseShiftRequest{ActualCash: 1130, ClosingFloat: 250})
	require.NoError(t, err)

	expected := 250.50 + 1234.56 - dropSum
	assert.InDelta(t, expected, closed.ExpectedCash, 0.001)
	assert.InDelta(t, 1130-expected, closed.Variance, 0.001)
}

func TestCloseShiftOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)

	svc := NewShiftService(db)
	shift, err := svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 3, OpeningFloat: 100})
	require.NoError(t, err)

	_, err = svc.CloseShift(shift.ID, CloseShiftRequest{ActualCash: 100})
	require.NoError(t, err)

	_, err = svc.CloseShift(shift.ID, CloseShiftRequest{ActualCash: 100})
	assert.ErrorIs(t, err, ErrInvalidState)

	// drops are rejected after close
	_, err = svc.RecordCashDrop(shift.ID, CashDropRequest{Amount: 10, PerformedBy: 3})
	assert.ErrorIs(t, err, ErrInvalidState)

	// a closed terminal can host a fresh shift
	_, err = svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 3, OpeningFloat: 100})
	assert.NoError(t, err)
}

func TestReconcileRequiresClosedShift(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)

	svc := NewShiftService(db)
	shift, err := svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 4, OpeningFloat: 100})
	require.NoError(t, err)

	_, err = svc.ReconcileShift(shift.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.CloseShift(shift.ID, CloseShiftRequest{ActualCash: 100})
	require.NoError(t, err)

	reconciled, err := svc.ReconcileShift(shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftReconciled, reconciled.Status)
}

func TestCashDropValidation(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)

	svc := NewShiftService(db)
	shift, err := svc.OpenShift(OpenShiftRequest{OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 4, OpeningFloat: 100})
	require.NoError(t, err)

	_, err = svc.RecordCashDrop(shift.ID, CashDropRequest{Amount: -5, PerformedBy: 4})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordCashDrop(99999, CashDropRequest{Amount: 5, PerformedBy: 4})
	assert.ErrorIs(t, err, ErrNotFound)
}
