package services

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/events"
	"github.com/platefront/rms-backend/models"
	"github.com/platefront/rms-backend/utils"
)

// SplitService partitions an order into N payable shares. A split set is
// created as one atomic batch and is immutable afterwards; corrections void
// the whole set and create a new one.
type SplitService struct {
	DB *gorm.DB
}

func NewSplitService(db *gorm.DB) *SplitService {
	return &SplitService{DB: db}
}

type SplitShareRequest struct {
	// OrderItemIDs names the member items for by-item / by-seat splits.
	OrderItemIDs []uint `json:"order_item_ids,omitempty"`
	// Amount is the caller-supplied total for custom splits.
	Amount float64 `json:"amount,omitempty"`
}

type CreateSplitsRequest struct {
	SplitType models.SplitType    `json:"split_type" binding:"required"`
	Ways      int                 `json:"ways,omitempty"`
	Shares    []SplitShareRequest `json:"shares,omitempty"`
}

// splitAmounts is the pure output of one strategy calculator: parallel money
// fields per split, already reconciled in cents.
type splitAmounts struct {
	Subtotal      []int64
	TaxAmount     []int64
	ServiceCharge []int64
	Total         []int64
}

// equalSplit divides every money component of the order uniformly, residue
// on the first share, so the split totals sum exactly to the order total.
func equalSplit(order *models.Order, ways int) splitAmounts {
	return splitAmounts{
		Subtotal:      utils.SplitCents(utils.Cents(order.Subtotal), ways),
		TaxAmount:     utils.SplitCents(utils.Cents(order.TaxAmount), ways),
		ServiceCharge: utils.SplitCents(utils.Cents(order.ServiceCharge), ways),
		Total:         utils.SplitCents(utils.Cents(order.Total), ways),
	}
}

// itemSplit computes each share from its member items: subtotal is the sum
// of item totals, tax and service recomputed from the outlet rates on that
// subtotal. The order-level tip and discount are apportioned by subtotal so
// the share totals still reconcile against the order total.
func itemSplit(order *models.Order, rates models.OutletRates, shareSubtotals []int64) splitAmounts {
	n := len(shareSubtotals)
	out := splitAmounts{
		Subtotal:      shareSubtotals,
		TaxAmount:     make([]int64, n),
		ServiceCharge: make([]int64, n),
		Total:         make([]int64, n),
	}
	adjustment := utils.Cents(order.Tip) - utils.Cents(order.Discount)
	adjustments := utils.ApportionCents(adjustment, shareSubtotals)
	for i, sub := range shareSubtotals {
		out.TaxAmount[i] = int64(math.Round(float64(sub) * rates.TaxRate))
		out.ServiceCharge[i] = int64(math.Round(float64(sub) * rates.ServiceChargeRate))
		out.Total[i] = sub + out.TaxAmount[i] + out.ServiceCharge[i] + adjustments[i]
	}
	return out
}

// customSplit takes the caller-supplied totals as authoritative and
// back-solves subtotal/tax/service proportionally from the outlet rates for
// reporting only.
func customSplit(rates models.OutletRates, totals []int64) splitAmounts {
	n := len(totals)
	out := splitAmounts{
		Subtotal:      make([]int64, n),
		TaxAmount:     make([]int64, n),
		ServiceCharge: make([]int64, n),
		Total:         totals,
	}
	divisor := 1 + rates.TaxRate + rates.ServiceChargeRate
	for i, total := range totals {
		sub := int64(math.Round(float64(total) / divisor))
		tax := int64(math.Round(float64(sub) * rates.TaxRate))
		out.Subtotal[i] = sub
		out.TaxAmount[i] = tax
		out.ServiceCharge[i] = total - sub - tax
	}
	return out
}

// CreateSplits builds the split set for an order in one atomic batch. Any
// failure, including an invalid item reference on the last share, leaves
// zero splits persisted.
func (s *SplitService) CreateSplits(orderID uint, req CreateSplitsRequest) ([]models.SplitBill, error) {
	if !req.SplitType.Valid() {
		return nil, fmt.Errorf("%w: unknown split type %q", ErrValidation, req.SplitType)
	}

	var created []models.SplitBill
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}
		if order.Status != models.OrderOpen {
			return fmt.Errorf("%w: order %d is %s", ErrInvalidState, orderID, order.Status)
		}

		var existing int64
		if err := tx.Model(&models.SplitBill{}).
			Where("order_id = ? AND status <> ?", orderID, models.SplitVoided).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: order %d already has a split set", ErrInvalidState, orderID)
		}

		var outlet models.Outlet
		if err := tx.First(&outlet, order.OutletID).Error; err != nil {
			return fmt.Errorf("%w: outlet %d", ErrNotFound, order.OutletID)
		}

		var amounts splitAmounts
		var memberItems [][]uint
		switch req.SplitType {
		case models.SplitEqual:
			if req.Ways < 2 {
				return fmt.Errorf("%w: equal split needs at least 2 ways", ErrValidation)
			}
			amounts = equalSplit(&order, req.Ways)
		case models.SplitByItem, models.SplitBySeat:
			subtotals, members, err := s.resolveItemShares(tx, &order, req.Shares)
			if err != nil {
				return err
			}
			amounts = itemSplit(&order, outlet.Rates(), subtotals)
			memberItems = members
		case models.SplitCustom:
			if len(req.Shares) < 2 {
				return fmt.Errorf("%w: custom split needs at least 2 shares", ErrValidation)
			}
			totals := make([]int64, len(req.Shares))
			var sum int64
			for i, share := range req.Shares {
				if share.Amount <= 0 {
					return fmt.Errorf("%w: custom share %d must be positive", ErrValidation, i+1)
				}
				totals[i] = utils.Cents(share.Amount)
				sum += totals[i]
			}
			if !utils.WithinTolerance(utils.FromCents(sum), order.Total) {
				return fmt.Errorf("%w: custom shares sum to %.2f, order total is %.2f",
					ErrValidation, utils.FromCents(sum), order.Total)
			}
			amounts = customSplit(outlet.Rates(), totals)
		}

		var splitSum int64
		for _, t := range amounts.Total {
			splitSum += t
		}
		if !utils.WithinTolerance(utils.FromCents(splitSum), order.Total) {
			return fmt.Errorf("%w: split totals sum to %.2f but order total is %.2f; check the outlet rate configuration",
				ErrValidation, utils.FromCents(splitSum), order.Total)
		}

		groupID := uuid.NewString()
		now := time.Now()
		for i := range amounts.Total {
			split := models.SplitBill{
				OrderID:       order.ID,
				GroupID:       groupID,
				SplitNumber:   i + 1,
				SplitType:     req.SplitType,
				Subtotal:      utils.FromCents(amounts.Subtotal[i]),
				TaxAmount:     utils.FromCents(amounts.TaxAmount[i]),
				ServiceCharge: utils.FromCents(amounts.ServiceCharge[i]),
				Total:         utils.FromCents(amounts.Total[i]),
				Status:        models.SplitPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.Create(&split).Error; err != nil {
				return err
			}
			if memberItems != nil {
				for _, itemID := range memberItems[i] {
					link := models.SplitBillItem{SplitBillID: split.ID, OrderItemID: itemID}
					if err := tx.Create(&link).Error; err != nil {
						return err
					}
				}
			}
			created = append(created, split)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logInfof("order %d split into %d shares (%s)", orderID, len(created), req.SplitType)
	events.SplitCreated(map[string]interface{}{"order_id": orderID, "shares": len(created)})
	return created, nil
}

// resolveItemShares validates that every live order item lands in exactly
// one share, then returns per-share subtotals in cents.
func (s *SplitService) resolveItemShares(tx *gorm.DB, order *models.Order, shares []SplitShareRequest) ([]int64, [][]uint, error) {
	if len(shares) < 2 {
		return nil, nil, fmt.Errorf("%w: item split needs at least 2 shares", ErrValidation)
	}

	var items []models.OrderItem
	if err := tx.Where("order_id = ? AND is_void = ?", order.ID, false).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	itemTotals := make(map[uint]int64, len(items))
	for _, it := range items {
		itemTotals[it.ID] = utils.Cents(it.TotalPrice)
	}

	assigned := make(map[uint]bool, len(items))
	subtotals := make([]int64, len(shares))
	members := make([][]uint, len(shares))
	for i, share := range shares {
		if len(share.OrderItemIDs) == 0 {
			return nil, nil, fmt.Errorf("%w: share %d has no items", ErrValidation, i+1)
		}
		for _, itemID := range share.OrderItemIDs {
			total, ok := itemTotals[itemID]
			if !ok {
				return nil, nil, fmt.Errorf("%w: item %d is not a live item of order %d", ErrNotFound, itemID, order.ID)
			}
			if assigned[itemID] {
				return nil, nil, fmt.Errorf("%w: item %d assigned to more than one share", ErrValidation, itemID)
			}
			assigned[itemID] = true
			subtotals[i] += total
			members[i] = append(members[i], itemID)
		}
	}
	if len(assigned) != len(items) {
		return nil, nil, fmt.Errorf("%w: %d items left unassigned", ErrValidation, len(items)-len(assigned))
	}
	return subtotals, members, nil
}

// MarkSplitPaid settles one share. Close only proceeds once no share is
// still pending.
func (s *SplitService) MarkSplitPaid(orderID, splitID uint) (*models.SplitBill, error) {
	var split models.SplitBill
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ? AND order_id = ?", splitID, orderID).First(&split).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: split %d on order %d", ErrNotFound, splitID, orderID)
			}
			return err
		}
		if split.Status != models.SplitPending {
			return fmt.Errorf("%w: split %d is %s", ErrInvalidState, splitID, split.Status)
		}
		now := time.Now()
		split.Status = models.SplitPaid
		split.PaidAt = &now
		split.UpdatedAt = now
		return tx.Save(&split).Error
	})
	if err != nil {
		return nil, err
	}
	return &split, nil
}

// VoidSplits voids the whole current split set so a corrected one can be
// created. Paid shares block the void.
func (s *SplitService) VoidSplits(orderID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var splits []models.SplitBill
		if err := lockForUpdate(tx).
			Where("order_id = ? AND status <> ?", orderID, models.SplitVoided).
			Find(&splits).Error; err != nil {
			return err
		}
		if len(splits) == 0 {
			return fmt.Errorf("%w: order %d has no split set", ErrNotFound, orderID)
		}
		for _, split := range splits {
			if split.Status == models.SplitPaid {
				return fmt.Errorf("%w: split %d already paid", ErrInvalidState, split.ID)
			}
		}
		return tx.Model(&models.SplitBill{}).
			Where("order_id = ? AND status = ?", orderID, models.SplitPending).
			Updates(map[string]interface{}{"status": models.SplitVoided, "updated_at": time.Now()}).Error
	})
}

// ListSplits returns the live split set of an order.
func (s *SplitService) ListSplits(orderID uint) ([]models.SplitBill, error) {
	var splits []models.SplitBill
	err := s.DB.Preload("Items").
		Where("order_id = ? AND status <> ?", orderID, models.SplitVoided).
		Order("split_number asc").
		Find(&splits).Error
	return splits, err
}
