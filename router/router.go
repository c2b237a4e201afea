package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/controllers"
	"github.com/platefront/rms-backend/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())

	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	orderCtrl := controllers.NewOrderController(db)
	splitCtrl := controllers.NewSplitController(db)
	shiftCtrl := controllers.NewShiftController(db)
	stockCtrl := controllers.NewStockController(db)
	tipCtrl := controllers.NewTipController(db)
	tableCtrl := controllers.NewTableController(db)
	receiptCtrl := controllers.NewReceiptController(db)
	eventsCtrl := controllers.NewEventsController()
	authCtrl := controllers.NewAuthController()

	r.GET("/ws/events", eventsCtrl.Subscribe)
	r.POST("/auth/terminal-token", authCtrl.IssueTerminalToken)

	api := r.Group("/api/v1")
	api.Use(middlewares.AuthMiddleware())
	{
		orders := api.Group("/orders")
		orders.Use(middlewares.NewStrictRateLimiter())
		{
			orders.POST("", orderCtrl.CreateOrder)
			orders.GET("/:order_id", orderCtrl.GetOrder)
			orders.POST("/:order_id/items", orderCtrl.AddItem)
			orders.PATCH("/:order_id/items/:item_id", orderCtrl.UpdateItem)
			orders.POST("/:order_id/items/:item_id/void", orderCtrl.VoidItem)
			orders.POST("/:order_id/items/:item_id/send", orderCtrl.SendItemToKitchen)
			orders.POST("/:order_id/items/:item_id/ready", orderCtrl.MarkItemReady)
			orders.POST("/:order_id/items/:item_id/serve", orderCtrl.MarkItemServed)
			orders.PATCH("/:order_id/charges", orderCtrl.ApplyCharges)
			orders.POST("/:order_id/close", orderCtrl.CloseOrder)
			orders.POST("/:order_id/void", orderCtrl.VoidOrder)
			orders.GET("/:order_id/receipt", receiptCtrl.GetReceipt)

			orders.POST("/:order_id/splits", splitCtrl.CreateSplits)
			orders.GET("/:order_id/splits", splitCtrl.ListSplits)
			orders.POST("/:order_id/splits/:split_id/pay", splitCtrl.PaySplit)
			orders.POST("/:order_id/splits/void", splitCtrl.VoidSplits)
		}

		shifts := api.Group("/shifts")
		{
			shifts.POST("", shiftCtrl.OpenShift)
			shifts.GET("/:shift_id", shiftCtrl.GetShift)
			shifts.POST("/:shift_id/cash-drops", shiftCtrl.RecordCashDrop)
			shifts.POST("/:shift_id/close", shiftCtrl.CloseShift)
			shifts.POST("/:shift_id/reconcile", shiftCtrl.ReconcileShift)
		}

		inventory := api.Group("/inventory")
		{
			inventory.POST("/items/:item_id/adjust", stockCtrl.AdjustStock)
			inventory.POST("/items/:item_id/waste", stockCtrl.LogWaste)
			inventory.POST("/purchase-receipts", stockCtrl.ReceivePurchase)
			inventory.GET("/items/:item_id/movements", stockCtrl.ListMovements)
			inventory.GET("/items/:item_id/audit", stockCtrl.AuditStock)
		}

		tips := api.Group("/tips")
		{
			tips.POST("/distributions", tipCtrl.DistributeTips)
			tips.GET("/distributions/:pool_id", tipCtrl.GetPool)
		}

		outlets := api.Group("/outlets")
		{
			outlets.GET("/:outlet_id/orders", orderCtrl.ListOpenOrders)
			outlets.GET("/:outlet_id/kitchen", orderCtrl.KitchenQueue)
			outlets.GET("/:outlet_id/tables", tableCtrl.ListTables)
			outlets.GET("/:outlet_id/tips", tipCtrl.ListPools)
		}

		tables := api.Group("/tables")
		{
			tables.POST("", tableCtrl.CreateTable)
			tables.PATCH("/:table_id/status", tableCtrl.UpdateTableStatus)
		}
	}

	return r
}
