package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/events"
	"github.com/platefront/rms-backend/models"
	"github.com/platefront/rms-backend/utils"
)

// StockService is the one mutation pathway for inventory levels. A stock
// change and its movement row are written in the same transaction; neither
// ever exists without the other.
type StockService struct {
	DB *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{DB: db}
}

type AdjustStockRequest struct {
	Delta       float64 `json:"delta" binding:"required"`
	Reason      string  `json:"reason"`
	PerformedBy uint    `json:"performed_by"`
}

type WasteRequest struct {
	Quantity    float64 `json:"quantity" binding:"required"`
	Reason      string  `json:"reason"`
	PerformedBy uint    `json:"performed_by"`
}

type PurchaseLine struct {
	InventoryItemID uint    `json:"inventory_item_id" binding:"required"`
	Quantity        float64 `json:"quantity" binding:"required"`
	UnitCost        float64 `json:"unit_cost"`
}

type PurchaseReceiptRequest struct {
	Reference   string         `json:"reference"`
	Lines       []PurchaseLine `json:"lines" binding:"required"`
	PerformedBy uint           `json:"performed_by"`
}

// applyMovement is the atomic primitive: lock the item row, verify the
// resulting level is not negative, update the projection and append the
// movement, all inside the caller's transaction. Levels are decimal(12,3),
// so the arithmetic runs in integer thousandths; a sequence of movements
// that exactly depletes the stock lands on zero, not on float residue.
func (s *StockService) applyMovement(tx *gorm.DB, itemID uint, delta float64, mType models.MovementType, reason, reference string, performedBy uint) (*models.StockMovement, *models.InventoryItem, error) {
	var item models.InventoryItem
	if err := lockForUpdate(tx).First(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("%w: inventory item %d", ErrNotFound, itemID)
		}
		return nil, nil, err
	}

	newMillis := utils.Millis(item.CurrentStock) + utils.Millis(delta)
	if newMillis < 0 {
		return nil, nil, fmt.Errorf("%w: stock of %q would go to %.3f", ErrValidation, item.Name, utils.FromMillis(newMillis))
	}
	newStock := utils.FromMillis(newMillis)

	now := time.Now()
	item.CurrentStock = newStock
	item.UpdatedAt = now
	if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"current_stock": item.CurrentStock,
		"updated_at":    now,
	}).Error; err != nil {
		return nil, nil, err
	}

	movement := models.StockMovement{
		InventoryItemID: item.ID,
		Delta:           utils.FromMillis(utils.Millis(delta)),
		Type:            mType,
		Reason:          reason,
		Reference:       reference,
		PerformedBy:     performedBy,
		CreatedAt:       now,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, nil, err
	}
	return &movement, &item, nil
}

// AdjustStock applies a manual signed correction.
func (s *StockService) AdjustStock(itemID uint, req AdjustStockRequest) (*models.StockMovement, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", ErrValidation)
	}

	var movement *models.StockMovement
	var item *models.InventoryItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		movement, item, err = s.applyMovement(tx, itemID, req.Delta,
			models.MovementAdjustment, req.Reason, uuid.NewString(), req.PerformedBy)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.signalLowStock(item)
	return movement, nil
}

// LogWaste records spoilage or breakage as a negative movement.
func (s *StockService) LogWaste(itemID uint, req WasteRequest) (*models.StockMovement, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: waste quantity must be positive", ErrValidation)
	}

	var movement *models.StockMovement
	var item *models.InventoryItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		movement, item, err = s.applyMovement(tx, itemID, -req.Quantity,
			models.MovementWaste, req.Reason, uuid.NewString(), req.PerformedBy)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.signalLowStock(item)
	return movement, nil
}

// ReceivePurchase books all lines of a delivery under one reference and
// updates last and moving-average cost. One bad line fails the whole batch.
func (s *StockService) ReceivePurchase(req PurchaseReceiptRequest) ([]models.StockMovement, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: purchase receipt has no lines", ErrValidation)
	}
	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	var movements []models.StockMovement
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, line := range req.Lines {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: received quantity must be positive", ErrValidation)
			}
			if line.UnitCost < 0 {
				return fmt.Errorf("%w: unit cost must not be negative", ErrValidation)
			}

			movement, item, err := s.applyMovement(tx, line.InventoryItemID, line.Quantity,
				models.MovementPurchaseReceipt, "purchase receipt", reference, req.PerformedBy)
			if err != nil {
				return err
			}

			if line.UnitCost > 0 {
				prevQty := item.CurrentStock - line.Quantity
				avg := line.UnitCost
				if prevQty > 0 && item.AverageCost > 0 {
					avg = (item.AverageCost*prevQty + line.UnitCost*line.Quantity) / item.CurrentStock
				}
				if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
					"last_cost":    utils.RoundMoney(line.UnitCost),
					"average_cost": utils.RoundMoney(avg),
				}).Error; err != nil {
					return err
				}
			}
			movements = append(movements, *movement)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logInfof("purchase receipt %s booked (%d lines)", reference, len(movements))
	return movements, nil
}

// ListMovements returns an item's movement log, newest first.
func (s *StockService) ListMovements(itemID uint, limit int) ([]models.StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var item models.InventoryItem
	if err := s.DB.First(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: inventory item %d", ErrNotFound, itemID)
		}
		return nil, err
	}
	var movements []models.StockMovement
	err := s.DB.Where("inventory_item_id = ?", itemID).
		Order("created_at desc").Limit(limit).
		Find(&movements).Error
	return movements, err
}

type StockAudit struct {
	InventoryItemID    uint    `json:"inventory_item_id"`
	InitialStock       float64 `json:"initial_stock"`
	MovementSum        float64 `json:"movement_sum"`
	ReconstructedStock float64 `json:"reconstructed_stock"`
	CurrentStock       float64 `json:"current_stock"`
	Drift              float64 `json:"drift"`
}

// AuditStock replays the movement log against the projection. Drift should
// always be zero; a non-zero value means a write bypassed the ledger.
func (s *StockService) AuditStock(itemID uint) (*StockAudit, error) {
	var item models.InventoryItem
	if err := s.DB.First(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: inventory item %d", ErrNotFound, itemID)
		}
		return nil, err
	}

	var movements []models.StockMovement
	if err := s.DB.Where("inventory_item_id = ?", itemID).Find(&movements).Error; err != nil {
		return nil, err
	}
	var sumMillis int64
	for _, m := range movements {
		sumMillis += utils.Millis(m.Delta)
	}
	reconstructed := utils.Millis(item.InitialStock) + sumMillis

	audit := &StockAudit{
		InventoryItemID:    item.ID,
		InitialStock:       item.InitialStock,
		MovementSum:        utils.FromMillis(sumMillis),
		ReconstructedStock: utils.FromMillis(reconstructed),
		CurrentStock:       item.CurrentStock,
	}
	audit.Drift = utils.FromMillis(utils.Millis(item.CurrentStock) - reconstructed)
	if audit.Drift != 0 {
		logErrorf("stock audit drift on item %d: %.3f", item.ID, audit.Drift)
	}
	return audit, nil
}

func (s *StockService) signalLowStock(item *models.InventoryItem) {
	if item == nil || item.ReorderPoint <= 0 {
		return
	}
	if item.CurrentStock <= item.ReorderPoint {
		events.StockLow(map[string]interface{}{
			"inventory_item_id": item.ID,
			"name":              item.Name,
			"current_stock":     item.CurrentStock,
			"reorder_point":     item.ReorderPoint,
		})
	}
}
