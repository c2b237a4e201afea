package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/services"
	"github.com/platefront/rms-backend/utils"
)

type ShiftController struct {
	Shifts *services.ShiftService
}

func NewShiftController(db *gorm.DB) *ShiftController {
	return &ShiftController{Shifts: services.NewShiftService(db)}
}

// OpenShift -> start a cashier session on a terminal.
func (sc *ShiftController) OpenShift(c *gin.Context) {
	var req services.OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.EmployeeID == 0 {
		req.EmployeeID = currentEmployee(c)
	}

	shift, err := sc.Shifts.OpenShift(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Shift opened", shift)
}

// GetShift -> running summary with the drop log.
func (sc *ShiftController) GetShift(c *gin.Context) {
	shift, err := sc.Shifts.GetShift(paramID(c, "shift_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift detail", shift)
}

// RecordCashDrop -> append an immutable drawer drop.
func (sc *ShiftController) RecordCashDrop(c *gin.Context) {
	var req services.CashDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.PerformedBy == 0 {
		req.PerformedBy = currentEmployee(c)
	}

	drop, err := sc.Shifts.RecordCashDrop(paramID(c, "shift_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Cash drop recorded", drop)
}

// CloseShift -> compute expected cash and variance, close out.
func (sc *ShiftController) CloseShift(c *gin.Context) {
	var req services.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	shift, err := sc.Shifts.CloseShift(paramID(c, "shift_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift closed", shift)
}

// ReconcileShift -> supervisor sign-off on the closed count.
func (sc *ShiftController) ReconcileShift(c *gin.Context) {
	shift, err := sc.Shifts.ReconcileShift(paramID(c, "shift_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift reconciled", shift)
}
