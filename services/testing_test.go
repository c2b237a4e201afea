package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/models"
	"github.com/platefront/rms-backend/utils"
)

var testDBCounter int64

// setupTestDB opens a private in-memory database per test so tests cannot
// see each other's rows.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Outlet{},
		&models.MenuItem{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.SplitBill{},
		&models.SplitBillItem{},
		&models.Shift{},
		&models.CashDrop{},
		&models.InventoryItem{},
		&models.StockMovement{},
		&models.TipPool{},
		&models.TipAllocation{},
	))
	return db
}

func seedOutlet(t *testing.T, db *gorm.DB, taxRate, serviceRate float64) models.Outlet {
	t.Helper()
	outlet := models.Outlet{
		Name:              "Test Outlet",
		TaxRate:           taxRate,
		ServiceChargeRate: serviceRate,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	require.NoError(t, db.Create(&outlet).Error)
	return outlet
}

func seedTable(t *testing.T, db *gorm.DB, outletID uint, number string) models.Table {
	t.Helper()
	table := models.Table{
		OutletID:    outletID,
		TableNumber: number,
		Capacity:    4,
		Status:      models.TableAvailable,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func seedMenuItem(t *testing.T, db *gorm.DB, outletID uint, name string, price float64) models.MenuItem {
	t.Helper()
	menu := models.MenuItem{
		OutletID:  outletID,
		Name:      name,
		Price:     price,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&menu).Error)
	return menu
}

func seedInventoryItem(t *testing.T, db *gorm.DB, outletID uint, name string, initial, reorder float64) models.InventoryItem {
	t.Helper()
	item := models.InventoryItem{
		OutletID:     outletID,
		Name:         name,
		Unit:         "kg",
		InitialStock: initial,
		CurrentStock: initial,
		ReorderPoint: reorder,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

// openOrderWithItems creates a dine-in order on a fresh table with one line
// per listed menu item.
func openOrderWithItems(t *testing.T, db *gorm.DB, outlet models.Outlet, menus ...models.MenuItem) (*models.Order, models.Table) {
	t.Helper()
	table := seedTable(t, db, outlet.ID, fmt.Sprintf("T%d", time.Now().UnixNano()%100000))

	items := make([]OrderItemRequest, 0, len(menus))
	for _, m := range menus {
		items = append(items, OrderItemRequest{MenuItemID: m.ID, Quantity: 1})
	}

	svc := NewOrderService(db)
	order, err := svc.CreateOrder(CreateOrderRequest{
		OutletID: outlet.ID,
		TableID:  &table.ID,
		ServerID: 7,
		Items:    items,
	})
	require.NoError(t, err)
	return order, table
}

// serveAllItems pushes every live item through the kitchen lifecycle.
func serveAllItems(t *testing.T, db *gorm.DB, orderID uint) {
	t.Helper()
	svc := NewOrderService(db)
	var items []models.OrderItem
	require.NoError(t, db.Where("order_id = ? AND is_void = ?", orderID, false).Find(&items).Error)
	for _, item := range items {
		_, err := svc.TransitionItem(orderID, item.ID, models.ItemSent)
		require.NoError(t, err)
		_, err = svc.TransitionItem(orderID, item.ID, models.ItemReady)
		require.NoError(t, err)
		_, err = svc.TransitionItem(orderID, item.ID, models.ItemServed)
		require.NoError(t, err)
	}
}
