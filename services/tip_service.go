package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/platefront/rms-backend/models"
	"github.com/platefront/rms-backend/utils"
)

// TipService distributes a period's tips across employees. A distribution is
// validated before any write and immutable once created.
type TipService struct {
	DB *gorm.DB
}

func NewTipService(db *gorm.DB) *TipService {
	return &TipService{DB: db}
}

type TipAllocationRequest struct {
	EmployeeID   uint    `json:"employee_id" binding:"required"`
	SharePercent float64 `json:"share_percent"`
	Amount       float64 `json:"amount"`
}

type DistributeTipsRequest struct {
	OutletID    uint                   `json:"outlet_id" binding:"required"`
	PoolDate    time.Time              `json:"pool_date"`
	ShiftType   string                 `json:"shift_type"`
	TotalTips   float64                `json:"total_tips" binding:"required"`
	Allocations []TipAllocationRequest `json:"allocations" binding:"required"`
}

// DistributeTips checks conservation of the pool total, then creates the
// pool and all allocation rows in one transaction. A mismatched sum writes
// nothing.
func (s *TipService) DistributeTips(req DistributeTipsRequest) (*models.TipPool, error) {
	if req.TotalTips <= 0 {
		return nil, fmt.Errorf("%w: total tips must be positive", ErrValidation)
	}
	if len(req.Allocations) == 0 {
		return nil, fmt.Errorf("%w: at least one allocation required", ErrValidation)
	}

	seen := make(map[uint]bool, len(req.Allocations))
	var sumCents int64
	for i, alloc := range req.Allocations {
		if alloc.Amount < 0 {
			return nil, fmt.Errorf("%w: allocation %d is negative", ErrValidation, i+1)
		}
		if seen[alloc.EmployeeID] {
			return nil, fmt.Errorf("%w: employee %d allocated twice", ErrValidation, alloc.EmployeeID)
		}
		seen[alloc.EmployeeID] = true
		sumCents += utils.Cents(alloc.Amount)
	}
	if !utils.WithinTolerance(utils.FromCents(sumCents), req.TotalTips) {
		return nil, fmt.Errorf("%w: allocations sum to %.2f, pool total is %.2f",
			ErrValidation, utils.FromCents(sumCents), req.TotalTips)
	}

	poolDate := req.PoolDate
	if poolDate.IsZero() {
		poolDate = time.Now()
	}

	var pool models.TipPool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var outlet models.Outlet
		if err := tx.First(&outlet, req.OutletID).Error; err != nil {
			return fmt.Errorf("%w: outlet %d", ErrNotFound, req.OutletID)
		}

		now := time.Now()
		pool = models.TipPool{
			OutletID:      req.OutletID,
			PoolDate:      poolDate,
			ShiftType:     req.ShiftType,
			TotalTips:     utils.RoundMoney(req.TotalTips),
			Status:        models.TipPoolDistributed,
			DistributedAt: now,
			CreatedAt:     now,
		}
		if err := tx.Create(&pool).Error; err != nil {
			return err
		}

		for _, alloc := range req.Allocations {
			row := models.TipAllocation{
				TipPoolID:    pool.ID,
				EmployeeID:   alloc.EmployeeID,
				SharePercent: alloc.SharePercent,
				Amount:       utils.RoundMoney(alloc.Amount),
				CreatedAt:    now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Allocations").First(&pool, pool.ID).Error
	})
	if err != nil {
		return nil, err
	}

	logInfof("tip pool %d distributed %.2f across %d employees",
		pool.ID, pool.TotalTips, len(pool.Allocations))
	return &pool, nil
}

// GetPool returns a distribution with its allocations.
func (s *TipService) GetPool(poolID uint) (*models.TipPool, error) {
	var pool models.TipPool
	if err := s.DB.Preload("Allocations").First(&pool, poolID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: tip pool %d", ErrNotFound, poolID)
		}
		return nil, err
	}
	return &pool, nil
}

// ListPools returns an outlet's distributions, newest first.
func (s *TipService) ListPools(outletID uint, limit int) ([]models.TipPool, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var pools []models.TipPool
	err := s.DB.Preload("Allocations").
		Where("outlet_id = ?", outletID).
		Order("pool_date desc").Limit(limit).
		Find(&pools).Error
	return pools, err
}
