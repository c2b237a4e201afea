package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefront/rms-backend/models"
)

func TestComputeTotals(t *testing.T) {
	items := []models.OrderItem{
		{TotalPrice: 100},
		{TotalPrice: 200},
		{TotalPrice: 50, IsVoid: true},
	}
	rates := models.OutletRates{TaxRate: 0.05, ServiceChargeRate: 0.05}

	subtotal, tax, service, total := computeTotals(items, rates, 0, 0)
	assert.Equal(t, 300.0, subtotal)
	assert.Equal(t, 15.0, tax)
	assert.Equal(t, 15.0, service)
	assert.Equal(t, 330.0, total)

	// discount and tip fold into the total only
	_, _, _, total = computeTotals(items, rates, 30, 12)
	assert.Equal(t, 312.0, total)
}

func TestCreateOrderComputesTotalsAndBindsTable(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.05, 0.05)
	food := seedMenuItem(t, db, outlet.ID, "Nasi Goreng", 100)
	drink := seedMenuItem(t, db, outlet.ID, "Es Teh", 200)

	order, table := openOrderWithItems(t, db, outlet, food, drink)

	assert.Equal(t, models.OrderOpen, order.Status)
	assert.Equal(t, 300.0, order.Subtotal)
	assert.Equal(t, 15.0, order.TaxAmount)
	assert.Equal(t, 15.0, order.ServiceCharge)
	assert.Equal(t, 330.0, order.Total)
	assert.Len(t, order.Items, 2)

	var bound models.Table
	require.NoError(t, db.First(&bound, table.ID).Error)
	assert.Equal(t, models.TableOccupied, bound.Status)
	require.NotNil(t, bound.CurrentOrderID)
	assert.Equal(t, order.ID, *bound.CurrentOrderID)
}

func TestCreateOrderRejectsBusyTable(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Soto", 50)
	table := seedTable(t, db, outlet.ID, "A1")
	require.NoError(t, db.Model(&models.Table{}).Where("id = ?", table.ID).
		Update("status", models.TableCleaning).Error)

	svc := NewOrderService(db)
	_, err := svc.CreateOrder(CreateOrderRequest{
		OutletID: outlet.ID,
		TableID:  &table.ID,
		Items:    []OrderItemRequest{{MenuItemID: food.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	// nothing persisted
	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func TestCreateOrderUnknownMenuRollsBackEverything(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Soto", 50)
	table := seedTable(t, db, outlet.ID, "A1")

	svc := NewOrderService(db)
	_, err := svc.CreateOrder(CreateOrderRequest{
		OutletID: outlet.ID,
		TableID:  &table.ID,
		Items: []OrderItemRequest{
			{MenuItemID: food.ID, Quantity: 1},
			{MenuItemID: 9999, Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	var orders, items int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.OrderItem{}).Count(&items)
	assert.Zero(t, orders)
	assert.Zero(t, items)

	var fresh models.Table
	require.NoError(t, db.First(&fresh, table.ID).Error)
	assert.Equal(t, models.TableAvailable, fresh.Status)
	assert.Nil(t, fresh.CurrentOrderID)
}

func TestVoidItemRecomputesAndKeepsHistory(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.05, 0.05)
	food := seedMenuItem(t, db, outlet.ID, "Ayam Bakar", 100)
	drink := seedMenuItem(t, db, outlet.ID, "Jus Alpukat", 200)
	order, _ := openOrderWithItems(t, db, outlet, food, drink)

	svc := NewOrderService(db)
	target := order.Items[1]
	voided, err := svc.VoidItem(order.ID, target.ID, "wrong order", 42)
	require.NoError(t, err)

	assert.True(t, voided.IsVoid)
	assert.Equal(t, models.ItemVoid, voided.Status)
	assert.Equal(t, 200.0, voided.TotalPrice, "void keeps the historical price")
	assert.Equal(t, "wrong order", voided.VoidReason)
	require.NotNil(t, voided.VoidedBy)
	assert.Equal(t, uint(42), *voided.VoidedBy)

	refreshed, err := svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, refreshed.Subtotal)
	assert.Equal(t, 5.0, refreshed.TaxAmount)
	assert.Equal(t, 5.0, refreshed.ServiceCharge)
	assert.Equal(t, 110.0, refreshed.Total)
	assert.Len(t, refreshed.Items, 2, "voided item stays queryable")
}

func TestMutateItemRecomputes(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Bakso", 25)
	order, _ := openOrderWithItems(t, db, outlet, food)

	svc := NewOrderService(db)
	qty := 4
	item, err := svc.MutateItem(order.ID, order.Items[0].ID, UpdateItemRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 100.0, item.TotalPrice)

	refreshed, err := svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, refreshed.Subtotal)
	assert.Equal(t, 110.0, refreshed.Total)
}

func TestMutateVoidedItemRejected(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Bakso", 25)
	order, _ := openOrderWithItems(t, db, outlet, food)

	svc := NewOrderService(db)
	itemID := order.Items[0].ID
	_, err := svc.VoidItem(order.ID, itemID, "customer cancelled", 1)
	require.NoError(t, err)

	qty := 2
	_, err = svc.MutateItem(order.ID, itemID, UpdateItemRequest{Quantity: &qty})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMutateItemOfOtherOrderRejected(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Bakso", 25)
	orderA, _ := openOrderWithItems(t, db, outlet, food)
	orderB, _ := openOrderWithItems(t, db, outlet, food)

	svc := NewOrderService(db)
	qty := 2
	_, err := svc.MutateItem(orderA.ID, orderB.Items[0].ID, UpdateItemRequest{Quantity: &qty})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemLifecycleForwardOnly(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Mie Goreng", 30)
	order, _ := openOrderWithItems(t, db, outlet, food)
	itemID := order.Items[0].ID

	svc := NewOrderService(db)

	// cannot skip ahead
	_, err := svc.TransitionItem(order.ID, itemID, models.ItemReady)
	assert.ErrorIs(t, err, ErrInvalidState)

	sent, err := svc.TransitionItem(order.ID, itemID, models.ItemSent)
	require.NoError(t, err)
	require.NotNil(t, sent.SentToKitchenAt)
	firstSent := *sent.SentToKitchenAt

	// duplicate send is a no-op and keeps the first timestamp
	again, err := svc.TransitionItem(order.ID, itemID, models.ItemSent)
	require.NoError(t, err)
	require.NotNil(t, again.SentToKitchenAt)
	assert.Equal(t, firstSent, *again.SentToKitchenAt)

	ready, err := svc.TransitionItem(order.ID, itemID, models.ItemReady)
	require.NoError(t, err)
	assert.NotNil(t, ready.PreparedAt)

	served, err := svc.TransitionItem(order.ID, itemID, models.ItemServed)
	require.NoError(t, err)
	assert.NotNil(t, served.ServedAt)

	// no backward moves, no void after service
	_, err = svc.TransitionItem(order.ID, itemID, models.ItemSent)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.VoidItem(order.ID, itemID, "too late", 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCloseOrderRequiresServedItems(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Sate", 80)
	order, table := openOrderWithItems(t, db, outlet, food)

	svc := NewOrderService(db)
	_, err := svc.CloseOrder(order.ID, CloseOrderRequest{})
	assert.ErrorIs(t, err, ErrInvalidState)

	serveAllItems(t, db, order.ID)
	closed, err := svc.CloseOrder(order.ID, CloseOrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.OrderClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	var freed models.Table
	require.NoError(t, db.First(&freed, table.ID).Error)
	assert.Equal(t, models.TableAvailable, freed.Status)
	assert.Nil(t, freed.CurrentOrderID)

	// a closed order refuses further mutation
	qty := 3
	_, err = svc.MutateItem(order.ID, order.Items[0].ID, UpdateItemRequest{Quantity: &qty})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCloseOrderAccumulatesIntoShift(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Gulai", 100)
	order, _ := openOrderWithItems(t, db, outlet, food)
	serveAllItems(t, db, order.ID)

	shiftSvc := NewShiftService(db)
	shift, err := shiftSvc.OpenShift(OpenShiftRequest{
		OutletID: outlet.ID, TerminalID: "T1", EmployeeID: 9, OpeningFloat: 500,
	})
	require.NoError(t, err)

	svc := NewOrderService(db)
	closed, err := svc.CloseOrder(order.ID, CloseOrderRequest{PaymentMethod: "cash", ShiftID: &shift.ID})
	require.NoError(t, err)

	refreshed, err := shiftSvc.GetShift(shift.ID)
	require.NoError(t, err)
	assert.Equal(t, closed.Total, refreshed.CashSales)
	assert.Equal(t, closed.TaxAmount+closed.ServiceCharge, refreshed.TaxTotal)
}

func TestApplyCharges(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Rendang", 100)
	order, _ := openOrderWithItems(t, db, outlet, food)

	svc := NewOrderService(db)
	updated, err := svc.ApplyCharges(order.ID, 20, 5)
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.Subtotal)
	assert.Equal(t, 10.0, updated.TaxAmount)
	// 100 + 10 + 5 tip - 20 discount
	assert.Equal(t, 95.0, updated.Total)

	_, err = svc.ApplyCharges(order.ID, -1, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVoidOrderReleasesTableAndVoidsItems(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Pecel", 40)
	order, table := openOrderWithItems(t, db, outlet, food)

	svc := NewOrderService(db)
	voided, err := svc.VoidOrder(order.ID, "walkout", 3)
	require.NoError(t, err)
	assert.Equal(t, models.OrderVoid, voided.Status)

	var items []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&items).Error)
	for _, item := range items {
		assert.True(t, item.IsVoid)
	}

	var freed models.Table
	require.NoError(t, db.First(&freed, table.ID).Error)
	assert.Equal(t, models.TableAvailable, freed.Status)
	assert.Nil(t, freed.CurrentOrderID)
}

func TestStaffTableStatusProtectedWhileHeld(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	food := seedMenuItem(t, db, outlet.ID, "Gado-gado", 35)
	_, table := openOrderWithItems(t, db, outlet, food)

	tables := NewTableService(db)
	_, err := tables.SetStatus(table.ID, models.TableCleaning)
	assert.ErrorIs(t, err, ErrInvalidState)

	// occupied is never set by hand
	free := seedTable(t, db, outlet.ID, "Z9")
	_, err = tables.SetStatus(free.ID, models.TableOccupied)
	assert.ErrorIs(t, err, ErrValidation)

	blocked, err := tables.SetStatus(free.ID, models.TableBlocked)
	require.NoError(t, err)
	assert.Equal(t, models.TableBlocked, blocked.Status)
}

func TestSubtotalInvariantAcrossMutations(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.08, 0.02)
	a := seedMenuItem(t, db, outlet.ID, "A", 19.99)
	b := seedMenuItem(t, db, outlet.ID, "B", 7.5)
	c := seedMenuItem(t, db, outlet.ID, "C", 3.25)
	order, _ := openOrderWithItems(t, db, outlet, a, b)

	svc := NewOrderService(db)

	checkInvariant := func() {
		current, err := svc.GetOrder(order.ID)
		require.NoError(t, err)
		var want float64
		for _, item := range current.Items {
			if !item.IsVoid {
				want += item.TotalPrice
			}
		}
		assert.InDelta(t, want, current.Subtotal, 0.001)
		assert.InDelta(t,
			current.Subtotal+current.TaxAmount+current.ServiceCharge+current.Tip-current.Discount,
			current.Total, 0.011)
	}

	checkInvariant()

	added, err := svc.AddItem(order.ID, OrderItemRequest{MenuItemID: c.ID, Quantity: 3})
	require.NoError(t, err)
	checkInvariant()

	qty := 2
	_, err = svc.MutateItem(order.ID, added.ID, UpdateItemRequest{Quantity: &qty})
	require.NoError(t, err)
	checkInvariant()

	_, err = svc.VoidItem(order.ID, order.Items[0].ID, "86ed", 1)
	require.NoError(t, err)
	checkInvariant()
}

func TestKitchenQueueShowsInFlightItemsOnly(t *testing.T) {
	db := setupTestDB(t)
	outlet := seedOutlet(t, db, 0.1, 0)
	a := seedMenuItem(t, db, outlet.ID, "A", 10)
	b := seedMenuItem(t, db, outlet.ID, "B", 20)
	order, _ := openOrderWithItems(t, db, outlet, a, b)

	svc := NewOrderService(db)

	queue, err := svc.KitchenQueue(outlet.ID)
	require.NoError(t, err)
	assert.Empty(t, queue)

	_, err = svc.TransitionItem(order.ID, order.Items[0].ID, models.ItemSent)
	require.NoError(t, err)
	_, err = svc.TransitionItem(order.ID, order.Items[1].ID, models.ItemSent)
	require.NoError(t, err)
	_, err = svc.TransitionItem(order.ID, order.Items[1].ID, models.ItemReady)
	require.NoError(t, err)

	queue, err = svc.KitchenQueue(outlet.ID)
	require.NoError(t, err)
	assert.Len(t, queue, 2)

	_, err = svc.TransitionItem(order.ID, order.Items[1].ID, models.ItemServed)
	require.NoError(t, err)

	queue, err = svc.KitchenQueue(outlet.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, order.Items[0].ID, queue[0].ID)
}
