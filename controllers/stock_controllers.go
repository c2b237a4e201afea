package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/services"
	"github.com/platefront/rms-backend/utils"
)

type StockController struct {
	Stock *services.StockService
}

func NewStockController(db *gorm.DB) *StockController {
	return &StockController{Stock: services.NewStockService(db)}
}

// AdjustStock -> manual signed correction, movement row included.
func (sc *StockController) AdjustStock(c *gin.Context) {
	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.PerformedBy == 0 {
		req.PerformedBy = currentEmployee(c)
	}

	movement, err := sc.Stock.AdjustStock(paramID(c, "item_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Stock adjusted", movement)
}

// LogWaste -> spoilage or breakage, always a negative movement.
func (sc *StockController) LogWaste(c *gin.Context) {
	var req services.WasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.PerformedBy == 0 {
		req.PerformedBy = currentEmployee(c)
	}

	movement, err := sc.Stock.LogWaste(paramID(c, "item_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Waste logged", movement)
}

// ReceivePurchase -> book a delivery, all lines under one reference.
func (sc *StockController) ReceivePurchase(c *gin.Context) {
	var req services.PurchaseReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.PerformedBy == 0 {
		req.PerformedBy = currentEmployee(c)
	}

	movements, err := sc.Stock.ReceivePurchase(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Purchase received", movements)
}

// ListMovements -> an item's movement log, newest first.
func (sc *StockController) ListMovements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	movements, err := sc.Stock.ListMovements(paramID(c, "item_id"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock movements", movements)
}

// AuditStock -> replay the log against the projection.
func (sc *StockController) AuditStock(c *gin.Context) {
	audit, err := sc.Stock.AuditStock(paramID(c, "item_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock audit", audit)
}
