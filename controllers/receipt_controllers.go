package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/services"
)

type ReceiptController struct {
	Receipts *services.ReceiptService
}

func NewReceiptController(db *gorm.DB) *ReceiptController {
	return &ReceiptController{Receipts: services.NewReceiptService(db)}
}

// GetReceipt -> PDF of a closed check, splits included.
func (rc *ReceiptController) GetReceipt(c *gin.Context) {
	orderID := paramID(c, "order_id")
	pdf, err := rc.Receipts.RenderReceipt(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=receipt-%d.pdf", orderID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
