package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/platefront/rms-backend/services"
	"github.com/platefront/rms-backend/utils"
)

// respondServiceError maps the ledger's four failure kinds onto HTTP codes.
// Anything unrecognized is an internal error.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	default:
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Printf("internal error: %v", err)
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// paramID parses a numeric path parameter; 0 means missing or malformed.
func paramID(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// currentEmployee returns the audit reference set by the auth middleware.
func currentEmployee(c *gin.Context) uint {
	if v, ok := c.Get("employeeID"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
