package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/services"
	"github.com/platefront/rms-backend/utils"
)

type TipController struct {
	Tips *services.TipService
}

func NewTipController(db *gorm.DB) *TipController {
	return &TipController{Tips: services.NewTipService(db)}
}

// DistributeTips -> validate conservation, then create pool and allocations.
func (tc *TipController) DistributeTips(c *gin.Context) {
	var req services.DistributeTipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	pool, err := tc.Tips.DistributeTips(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Tips distributed", pool)
}

// GetPool -> one distribution with its allocations.
func (tc *TipController) GetPool(c *gin.Context) {
	pool, err := tc.Tips.GetPool(paramID(c, "pool_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tip pool", pool)
}

// ListPools -> an outlet's distributions, newest first.
func (tc *TipController) ListPools(c *gin.Context) {
	outletID := paramID(c, "outlet_id")
	if outletID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("outlet_id required"))
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	pools, err := tc.Tips.ListPools(outletID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tip pools", pools)
}
