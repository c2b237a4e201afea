package services

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/platefront/rms-backend/events"
	"github.com/platefront/rms-backend/models"
	"github.com/platefront/rms-backend/utils"
)

// OrderService owns the dine-in order aggregate: creation, item mutation,
// voiding and close. Every mutation runs in one transaction and ends with an
// unconditional refetch-and-recompute of the order totals.
type OrderService struct {
	DB *gorm.DB

	// RequireServedToClose rejects close while a live item has not reached
	// the served state. Counter-service venues can relax it.
	RequireServedToClose bool
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db, RequireServedToClose: true}
}

type OrderItemRequest struct {
	MenuItemID uint   `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	SeatNumber int    `json:"seat_number"`
	CourseNo   int    `json:"course_no"`
	Modifiers  string `json:"modifiers"`
	Notes      string `json:"notes"`
}

type CreateOrderRequest struct {
	OutletID   uint               `json:"outlet_id" binding:"required"`
	TableID    *uint              `json:"table_id"`
	ServerID   uint               `json:"server_id"`
	GuestCount int                `json:"guest_count"`
	OrderType  models.OrderType   `json:"order_type"`
	Items      []OrderItemRequest `json:"items"`
}

type UpdateItemRequest struct {
	Quantity   *int    `json:"quantity"`
	SeatNumber *int    `json:"seat_number"`
	CourseNo   *int    `json:"course_no"`
	Modifiers  *string `json:"modifiers"`
	Notes      *string `json:"notes"`
}

type CloseOrderRequest struct {
	PaymentMethod string `json:"payment_method"`
	ShiftID       *uint  `json:"shift_id"`
}

// computeTotals derives all money fields from the live item set and the
// outlet rates. Pure: same inputs, same totals, no matter how the order got
// here. Arithmetic runs in integer cents.
func computeTotals(items []models.OrderItem, rates models.OutletRates, discount, tip float64) (subtotal, tax, service, total float64) {
	var subtotalCents int64
	for _, it := range items {
		if it.IsVoid {
			continue
		}
		subtotalCents += utils.Cents(it.TotalPrice)
	}
	taxCents := int64(math.Round(float64(subtotalCents) * rates.TaxRate))
	serviceCents := int64(math.Round(float64(subtotalCents) * rates.ServiceChargeRate))
	totalCents := subtotalCents + taxCents + serviceCents + utils.Cents(tip) - utils.Cents(discount)

	return utils.FromCents(subtotalCents), utils.FromCents(taxCents),
		utils.FromCents(serviceCents), utils.FromCents(totalCents)
}

// recomputeOrder refetches the item set under the order row lock and persists
// fresh totals. Callers must already hold the lock (acquired by lockOpenOrder).
func (s *OrderService) recomputeOrder(tx *gorm.DB, order *models.Order) error {
	var outlet models.Outlet
	if err := tx.First(&outlet, order.OutletID).Error; err != nil {
		return fmt.Errorf("%w: outlet %d", ErrNotFound, order.OutletID)
	}

	var items []models.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return err
	}

	subtotal, tax, service, total := computeTotals(items, outlet.Rates(), order.Discount, order.Tip)
	order.Subtotal = subtotal
	order.TaxAmount = tax
	order.ServiceCharge = service
	order.Total = total
	order.UpdatedAt = time.Now()

	return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"subtotal":       subtotal,
		"tax_amount":     tax,
		"service_charge": service,
		"total":          total,
		"updated_at":     order.UpdatedAt,
	}).Error
}

// lockOpenOrder fetches the order under a row lock. Concurrent item
// mutations serialize here so each recompute sees the committed item set.
func (s *OrderService) lockOpenOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if order.Status != models.OrderOpen {
		return nil, fmt.Errorf("%w: order %d is %s", ErrInvalidState, orderID, order.Status)
	}
	return &order, nil
}

// CreateOrder atomically creates the order with its initial items and flips
// the table to occupied. All three writes commit together or not at all.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if req.GuestCount <= 0 {
		req.GuestCount = 1
	}
	if req.OrderType == "" {
		req.OrderType = models.OrderDineIn
	}
	if req.OrderType != models.OrderDineIn && req.OrderType != models.OrderTakeaway {
		return nil, fmt.Errorf("%w: unknown order type %q", ErrValidation, req.OrderType)
	}
	if req.OrderType == models.OrderDineIn && req.TableID == nil {
		return nil, fmt.Errorf("%w: dine-in orders need a table", ErrValidation)
	}

	var order models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var outlet models.Outlet
		if err := tx.First(&outlet, req.OutletID).Error; err != nil {
			return fmt.Errorf("%w: outlet %d", ErrNotFound, req.OutletID)
		}

		var table *models.Table
		if req.TableID != nil {
			table = &models.Table{}
			if err := lockForUpdate(tx).First(table, *req.TableID).Error; err != nil {
				return fmt.Errorf("%w: table %d", ErrNotFound, *req.TableID)
			}
			if table.OutletID != outlet.ID {
				return fmt.Errorf("%w: table %d", ErrNotFound, *req.TableID)
			}
			if table.Status != models.TableAvailable {
				return fmt.Errorf("%w: table %s is %s", ErrValidation, table.TableNumber, table.Status)
			}
		}

		now := time.Now()
		order = models.Order{
			OutletID:   outlet.ID,
			TableID:    req.TableID,
			ServerID:   req.ServerID,
			GuestCount: req.GuestCount,
			OrderType:  req.OrderType,
			Status:     models.OrderOpen,
			OpenedAt:   now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, ir := range req.Items {
			if _, err := s.createItem(tx, &order, ir); err != nil {
				return err
			}
		}

		if err := s.recomputeOrder(tx, &order); err != nil {
			return err
		}

		if table != nil {
			if err := tx.Model(&models.Table{}).Where("id = ?", table.ID).Updates(map[string]interface{}{
				"status":           models.TableOccupied,
				"current_order_id": order.ID,
				"updated_at":       now,
			}).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Items").First(&order, order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	logInfof("order %d opened at outlet %d (items: %d)", order.ID, order.OutletID, len(order.Items))
	if order.TableID != nil {
		events.TableUpdate(map[string]interface{}{"table_id": *order.TableID, "status": models.TableOccupied})
	}
	return &order, nil
}

func (s *OrderService) createItem(tx *gorm.DB, order *models.Order, ir OrderItemRequest) (*models.OrderItem, error) {
	if ir.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	var menu models.MenuItem
	if err := tx.First(&menu, ir.MenuItemID).Error; err != nil {
		return nil, fmt.Errorf("%w: menu item %d", ErrNotFound, ir.MenuItemID)
	}
	if !menu.Active {
		return nil, fmt.Errorf("%w: menu item %q is inactive", ErrValidation, menu.Name)
	}

	courseNo := ir.CourseNo
	if courseNo <= 0 {
		courseNo = 1
	}

	now := time.Now()
	item := models.OrderItem{
		OrderID:    order.ID,
		MenuItemID: menu.ID,
		MenuName:   menu.Name,
		Quantity:   ir.Quantity,
		UnitPrice:  menu.Price,
		TotalPrice: utils.RoundMoney(menu.Price * float64(ir.Quantity)),
		SeatNumber: ir.SeatNumber,
		CourseNo:   courseNo,
		Modifiers:  ir.Modifiers,
		Notes:      ir.Notes,
		Status:     models.ItemPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddItem appends a line to an open order and recomputes.
func (s *OrderService) AddItem(orderID uint, req OrderItemRequest) (*models.OrderItem, error) {
	var item *models.OrderItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOpenOrder(tx, orderID)
		if err != nil {
			return err
		}
		item, err = s.createItem(tx, order, req)
		if err != nil {
			return err
		}
		return s.recomputeOrder(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// MutateItem updates a live item in place, then recomputes the order.
func (s *OrderService) MutateItem(orderID, itemID uint, req UpdateItemRequest) (*models.OrderItem, error) {
	var item models.OrderItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOpenOrder(tx, orderID)
		if err != nil {
			return err
		}

		if err := tx.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
			return fmt.Errorf("%w: item %d on order %d", ErrNotFound, itemID, orderID)
		}
		if item.IsVoid {
			return fmt.Errorf("%w: item %d is void", ErrInvalidState, itemID)
		}

		if req.Quantity != nil {
			if *req.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be positive", ErrValidation)
			}
			item.Quantity = *req.Quantity
			item.TotalPrice = utils.RoundMoney(item.UnitPrice * float64(item.Quantity))
		}
		if req.SeatNumber != nil {
			item.SeatNumber = *req.SeatNumber
		}
		if req.CourseNo != nil {
			if *req.CourseNo <= 0 {
				return fmt.Errorf("%w: course must be positive", ErrValidation)
			}
			item.CourseNo = *req.CourseNo
		}
		if req.Modifiers != nil {
			item.Modifiers = *req.Modifiers
		}
		if req.Notes != nil {
			item.Notes = *req.Notes
		}
		item.UpdatedAt = time.Now()

		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return s.recomputeOrder(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// VoidItem marks an item void and recomputes. The row is kept forever; only
// audit fields change after this.
func (s *OrderService) VoidItem(orderID, itemID uint, reason string, voidedBy uint) (*models.OrderItem, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: void reason required", ErrValidation)
	}

	var item models.OrderItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOpenOrder(tx, orderID)
		if err != nil {
			return err
		}

		if err := tx.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
			return fmt.Errorf("%w: item %d on order %d", ErrNotFound, itemID, orderID)
		}
		if !item.Status.CanTransition(models.ItemVoid) {
			return fmt.Errorf("%w: cannot void item in status %s", ErrInvalidState, item.Status)
		}

		now := time.Now()
		item.IsVoid = true
		item.VoidReason = reason
		item.VoidedBy = &voidedBy
		item.VoidedAt = &now
		item.Status = models.ItemVoid
		item.UpdatedAt = now

		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return s.recomputeOrder(tx, order)
	})
	if err != nil {
		return nil, err
	}

	logInfof("order %d item %d voided by %d: %s", orderID, itemID, voidedBy, reason)
	return &item, nil
}

// TransitionItem drives the kitchen lifecycle forward. A repeated send is a
// no-op so duplicate KDS calls never error; every other repeat or backward
// move is rejected.
func (s *OrderService) TransitionItem(orderID, itemID uint, next models.OrderItemStatus) (*models.OrderItem, error) {
	var item models.OrderItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockOpenOrder(tx, orderID); err != nil {
			return err
		}

		if err := tx.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
			return fmt.Errorf("%w: item %d on order %d", ErrNotFound, itemID, orderID)
		}
		if next == models.ItemSent && item.Status == models.ItemSent {
			return nil
		}
		if !item.Status.CanTransition(next) {
			return fmt.Errorf("%w: item %d cannot move %s -> %s", ErrInvalidState, itemID, item.Status, next)
		}

		now := time.Now()
		switch next {
		case models.ItemSent:
			if item.SentToKitchenAt == nil {
				item.SentToKitchenAt = &now
			}
		case models.ItemReady:
			item.PreparedAt = &now
		case models.ItemServed:
			item.ServedAt = &now
		default:
			return fmt.Errorf("%w: %s is not a kitchen transition", ErrValidation, next)
		}
		item.Status = next
		item.UpdatedAt = now
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}

	events.KitchenItem(item)
	return &item, nil
}

// ApplyCharges sets the order-level discount and tip, then recomputes.
func (s *OrderService) ApplyCharges(orderID uint, discount, tip float64) (*models.Order, error) {
	if discount < 0 || tip < 0 {
		return nil, fmt.Errorf("%w: discount and tip must not be negative", ErrValidation)
	}

	var order *models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.lockOpenOrder(tx, orderID)
		if err != nil {
			return err
		}
		order.Discount = utils.RoundMoney(discount)
		order.Tip = utils.RoundMoney(tip)
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"discount": order.Discount,
			"tip":      order.Tip,
		}).Error; err != nil {
			return err
		}
		return s.recomputeOrder(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CloseOrder finalizes the check: totals recomputed one last time, the table
// released, and the tender folded into the open shift when one is named.
func (s *OrderService) CloseOrder(orderID uint, req CloseOrderRequest) (*models.Order, error) {
	method := req.PaymentMethod
	if method == "" {
		method = "cash"
	}
	if method != "cash" && method != "card" && method != "other" {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}

	var order *models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.lockOpenOrder(tx, orderID)
		if err != nil {
			return err
		}

		if s.RequireServedToClose {
			var unserved int64
			if err := tx.Model(&models.OrderItem{}).
				Where("order_id = ? AND is_void = ? AND status <> ?", orderID, false, models.ItemServed).
				Count(&unserved).Error; err != nil {
				return err
			}
			if unserved > 0 {
				return fmt.Errorf("%w: %d items not yet served", ErrInvalidState, unserved)
			}
		}

		var unpaidSplits int64
		if err := tx.Model(&models.SplitBill{}).
			Where("order_id = ? AND status = ?", orderID, models.SplitPending).
			Count(&unpaidSplits).Error; err != nil {
			return err
		}
		if unpaidSplits > 0 {
			return fmt.Errorf("%w: %d split bills unpaid", ErrInvalidState, unpaidSplits)
		}

		if err := s.recomputeOrder(tx, order); err != nil {
			return err
		}

		now := time.Now()
		order.Status = models.OrderClosed
		order.ClosedAt = &now
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"status":     models.OrderClosed,
			"closed_at":  now,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}

		if err := s.releaseTable(tx, order, now); err != nil {
			return err
		}

		if req.ShiftID != nil {
			if err := applyOrderToShift(tx, *req.ShiftID, order, method); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logInfof("order %d closed, total %.2f (%s)", order.ID, order.Total, method)
	events.OrderClosed(map[string]interface{}{"order_id": order.ID, "total": order.Total})
	if order.TableID != nil {
		events.TableUpdate(map[string]interface{}{"table_id": *order.TableID, "status": models.TableAvailable})
	}
	return order, nil
}

// VoidOrder abandons an open order. Live items are voided with the order so
// the audit trail shows who killed the check.
func (s *OrderService) VoidOrder(orderID uint, reason string, voidedBy uint) (*models.Order, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: void reason required", ErrValidation)
	}

	var order *models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.lockOpenOrder(tx, orderID)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ? AND is_void = ?", orderID, false).
			Updates(map[string]interface{}{
				"is_void":     true,
				"void_reason": reason,
				"voided_by":   voidedBy,
				"voided_at":   now,
				"status":      models.ItemVoid,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		order.Status = models.OrderVoid
		order.ClosedAt = &now
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"status":     models.OrderVoid,
			"closed_at":  now,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}

		return s.releaseTable(tx, order, now)
	})
	if err != nil {
		return nil, err
	}

	logInfof("order %d voided by %d: %s", order.ID, voidedBy, reason)
	events.OrderVoided(map[string]interface{}{"order_id": order.ID, "reason": reason})
	return order, nil
}

// releaseTable flips the table back to available, but only when this order
// still holds it. A staff-driven status (cleaning, blocked) set in the
// meantime is never overridden by a stale order event.
func (s *OrderService) releaseTable(tx *gorm.DB, order *models.Order, now time.Time) error {
	if order.TableID == nil {
		return nil
	}
	var table models.Table
	if err := lockForUpdate(tx).First(&table, *order.TableID).Error; err != nil {
		return fmt.Errorf("%w: table %d", ErrNotFound, *order.TableID)
	}
	if table.CurrentOrderID == nil || *table.CurrentOrderID != order.ID {
		return nil
	}
	return tx.Model(&models.Table{}).Where("id = ?", table.ID).Updates(map[string]interface{}{
		"status":           models.TableAvailable,
		"current_order_id": nil,
		"updated_at":       now,
	}).Error
}

// GetOrder returns an order with all its items, voided ones included.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("Items").First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return &order, nil
}

// ListOpenOrders returns the open checks of an outlet, oldest first.
func (s *OrderService) ListOpenOrders(outletID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.Preload("Items").
		Where("outlet_id = ? AND status = ?", outletID, models.OrderOpen).
		Order("opened_at asc").
		Find(&orders).Error
	return orders, err
}

// KitchenQueue returns the outlet's in-flight kitchen items (sent or ready),
// oldest send first, for the display screens.
func (s *OrderService) KitchenQueue(outletID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.DB.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.outlet_id = ? AND orders.status = ?", outletID, models.OrderOpen).
		Where("order_items.is_void = ? AND order_items.status IN ?",
			false, []models.OrderItemStatus{models.ItemSent, models.ItemReady}).
		Order("order_items.sent_to_kitchen_at asc").
		Find(&items).Error
	return items, err
}
