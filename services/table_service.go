package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/platefront/rms-backend/events"
	"github.com/platefront/rms-backend/models"
)

// TableService handles the staff side of table state. Order-driven flips
// (occupy on open, release on close/void) happen inside the order
// transactions; staff can only move a table that no open order holds.
type TableService struct {
	DB *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{DB: db}
}

type CreateTableRequest struct {
	OutletID    uint   `json:"outlet_id" binding:"required"`
	TableNumber string `json:"table_number" binding:"required"`
	Capacity    int    `json:"capacity"`
}

func (ts *TableService) CreateTable(req CreateTableRequest) (*models.Table, error) {
	if req.Capacity <= 0 {
		req.Capacity = 2
	}

	var table models.Table
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		var outlet models.Outlet
		if err := tx.First(&outlet, req.OutletID).Error; err != nil {
			return fmt.Errorf("%w: outlet %d", ErrNotFound, req.OutletID)
		}

		var dup int64
		if err := tx.Model(&models.Table{}).
			Where("outlet_id = ? AND table_number = ?", req.OutletID, req.TableNumber).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return fmt.Errorf("%w: table %s already exists at outlet %d", ErrConflict, req.TableNumber, req.OutletID)
		}

		now := time.Now()
		table = models.Table{
			OutletID:    req.OutletID,
			TableNumber: req.TableNumber,
			Capacity:    req.Capacity,
			Status:      models.TableAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(&table).Error
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// SetStatus is the staff-driven status change (cleaning, blocked, reserved,
// back to available). It refuses to disturb a table bound to an open order.
func (ts *TableService) SetStatus(tableID uint, status models.TableStatus) (*models.Table, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown table status %q", ErrValidation, status)
	}
	if status == models.TableOccupied {
		return nil, fmt.Errorf("%w: occupied is set by opening an order, not directly", ErrValidation)
	}

	var table models.Table
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&table, tableID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: table %d", ErrNotFound, tableID)
			}
			return err
		}
		if table.CurrentOrderID != nil {
			return fmt.Errorf("%w: table %s is held by order %d", ErrInvalidState, table.TableNumber, *table.CurrentOrderID)
		}

		table.Status = status
		table.UpdatedAt = time.Now()
		return tx.Save(&table).Error
	})
	if err != nil {
		return nil, err
	}

	events.TableUpdate(map[string]interface{}{"table_id": table.ID, "status": table.Status})
	return &table, nil
}

// ListTables returns an outlet's floor, table number order.
func (ts *TableService) ListTables(outletID uint) ([]models.Table, error) {
	var tables []models.Table
	err := ts.DB.Where("outlet_id = ?", outletID).
		Order("table_number asc").
		Find(&tables).Error
	return tables, err
}
