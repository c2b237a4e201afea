package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/services"
	"github.com/platefront/rms-backend/utils"
)

type SplitController struct {
	Splits *services.SplitService
}

func NewSplitController(db *gorm.DB) *SplitController {
	return &SplitController{Splits: services.NewSplitService(db)}
}

// CreateSplits -> partition an order into N payable shares, one atomic batch.
func (sc *SplitController) CreateSplits(c *gin.Context) {
	var req services.CreateSplitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	splits, err := sc.Splits.CreateSplits(paramID(c, "order_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Split bills created", splits)
}

// ListSplits -> the order's live split set.
func (sc *SplitController) ListSplits(c *gin.Context) {
	splits, err := sc.Splits.ListSplits(paramID(c, "order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Split bills", splits)
}

// PaySplit -> settle one share.
func (sc *SplitController) PaySplit(c *gin.Context) {
	split, err := sc.Splits.MarkSplitPaid(paramID(c, "order_id"), paramID(c, "split_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Split paid", split)
}

// VoidSplits -> void the whole set so a corrected one can be created.
func (sc *SplitController) VoidSplits(c *gin.Context) {
	if err := sc.Splits.VoidSplits(paramID(c, "order_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Split set voided", nil)
}
