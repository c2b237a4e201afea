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

type TableController struct {
	Tables *services.TableService
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{Tables: services.NewTableService(db)}
}

// CreateTable -> add a seating unit to an outlet's floor.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req services.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.CreateTable(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

// ListTables -> the outlet's floor.
func (tc *TableController) ListTables(c *gin.Context) {
	outletID := paramID(c, "outlet_id")
	if outletID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("outlet_id required"))
		return
	}
	tables, err := tc.Tables.ListTables(outletID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// UpdateTableStatus -> staff-driven status change; occupied is reserved for
// the order lifecycle and a held table cannot be moved.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	var req struct {
		Status models.TableStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.SetStatus(paramID(c, "table_id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}
