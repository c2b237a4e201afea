package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/models"
	"github.com/platefront/rms-backend/services"
	"github.com/platefront/rms-backend/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{Orders: services.NewOrderService(db)}
}

// CreateOrder -> open a check, flip the table, price the initial items.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.ServerID == 0 {
		req.ServerID = currentEmployee(c)
	}

	order, err := oc.Orders.CreateOrder(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrder -> one check with all its items, voided ones included.
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.GetOrder(paramID(c, "order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// ListOpenOrders -> the outlet's open checks.
func (oc *OrderController) ListOpenOrders(c *gin.Context) {
	outletID := paramID(c, "outlet_id")
	if outletID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("outlet_id required"))
		return
	}
	orders, err := oc.Orders.ListOpenOrders(outletID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Open orders", orders)
}

// KitchenQueue -> the outlet's in-flight kitchen items for the displays.
func (oc *OrderController) KitchenQueue(c *gin.Context) {
	outletID := paramID(c, "outlet_id")
	if outletID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("outlet_id required"))
		return
	}
	items, err := oc.Orders.KitchenQueue(outletID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen queue", items)
}

// AddItem -> append a line to an open check.
func (oc *OrderController) AddItem(c *gin.Context) {
	var req services.OrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Orders.AddItem(paramID(c, "order_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Item added", item)
}

// UpdateItem -> mutate a live line in place.
func (oc *OrderController) UpdateItem(c *gin.Context) {
	var req services.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Orders.MutateItem(paramID(c, "order_id"), paramID(c, "item_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item updated", item)
}

// VoidItem -> terminal audit-preserving void of one line.
func (oc *OrderController) VoidItem(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Orders.VoidItem(paramID(c, "order_id"), paramID(c, "item_id"), req.Reason, currentEmployee(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item voided", item)
}

// SendItemToKitchen / MarkItemReady / MarkItemServed drive the kitchen
// lifecycle forward one state at a time.
func (oc *OrderController) SendItemToKitchen(c *gin.Context) {
	oc.transition(c, models.ItemSent, "Item sent to kitchen")
}

func (oc *OrderController) MarkItemReady(c *gin.Context) {
	oc.transition(c, models.ItemReady, "Item ready")
}

func (oc *OrderController) MarkItemServed(c *gin.Context) {
	oc.transition(c, models.ItemServed, "Item served")
}

func (oc *OrderController) transition(c *gin.Context, next models.OrderItemStatus, message string) {
	item, err := oc.Orders.TransitionItem(paramID(c, "order_id"), paramID(c, "item_id"), next)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, item)
}

// ApplyCharges -> set order-level discount and tip.
func (oc *OrderController) ApplyCharges(c *gin.Context) {
	var req struct {
		Discount float64 `json:"discount"`
		Tip      float64 `json:"tip"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.ApplyCharges(paramID(c, "order_id"), req.Discount, req.Tip)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Charges applied", order)
}

// CloseOrder -> finalize the check and release the table.
func (oc *OrderController) CloseOrder(c *gin.Context) {
	var req services.CloseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CloseOrder(paramID(c, "order_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order closed", order)
}

// VoidOrder -> abandon an open check.
func (oc *OrderController) VoidOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.VoidOrder(paramID(c, "order_id"), req.Reason, currentEmployee(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order voided", order)
}
