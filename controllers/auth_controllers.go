package controllers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/platefront/rms-backend/utils"
)

// AuthController mints terminal session tokens. Staff identity lives in the
// HR system; a terminal exchanges its provisioning key for a short-lived JWT
// carrying the employee reference the ledger stamps on every action.
type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

type terminalTokenRequest struct {
	TerminalKey string `json:"terminal_key" binding:"required"`
	EmployeeID  uint   `json:"employee_id" binding:"required"`
	Role        string `json:"role"`
}

// IssueTerminalToken -> exchange the shared terminal key for a session JWT.
func (ac *AuthController) IssueTerminalToken(c *gin.Context) {
	var req terminalTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	expected := os.Getenv("TERMINAL_KEY")
	if expected == "" || req.TerminalKey != expected {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid terminal key"))
		return
	}

	role := req.Role
	if role == "" {
		role = "server"
	}
	token, err := utils.GenerateToken(req.EmployeeID, role, 12*time.Hour)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Token issued", gin.H{
		"token":      token,
		"expires_in": int((12 * time.Hour).Seconds()),
	})
}
