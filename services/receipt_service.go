package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/platefront/rms-backend/models"
)

// ReceiptService renders a closed order to a printable PDF. Reading only;
// it never touches the ledger.
type ReceiptService struct {
	DB *gorm.DB
}

func NewReceiptService(db *gorm.DB) *ReceiptService {
	return &ReceiptService{DB: db}
}

// RenderReceipt produces the PDF bytes for a closed order, including its
// live split set when one exists.
func (s *ReceiptService) RenderReceipt(orderID uint) ([]byte, error) {
	var order models.Order
	if err := s.DB.Preload("Items").Preload("Outlet").First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if order.Status != models.OrderClosed {
		return nil, fmt.Errorf("%w: order %d is %s, receipts need a closed order", ErrInvalidState, orderID, order.Status)
	}

	var splits []models.SplitBill
	if err := s.DB.Where("order_id = ? AND status <> ?", orderID, models.SplitVoided).
		Order("split_number asc").Find(&splits).Error; err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, order.Outlet.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Receipt ORD-%06d", order.ID), "", 1, "C", false, 0, "")
	closedAt := time.Now()
	if order.ClosedAt != nil {
		closedAt = *order.ClosedAt
	}
	pdf.CellFormat(0, 5, closedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(60, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 5, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range order.Items {
		if item.IsVoid {
			continue
		}
		pdf.CellFormat(60, 5, item.MenuName, "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 5, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 5, fmt.Sprintf("%.2f", item.TotalPrice), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	writeTotal := func(label string, amount float64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(75, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, fmt.Sprintf("%.2f", amount), "", 1, "R", false, 0, "")
	}
	writeTotal("Subtotal", order.Subtotal, false)
	writeTotal("Tax", order.TaxAmount, false)
	writeTotal("Service charge", order.ServiceCharge, false)
	if order.Discount > 0 {
		writeTotal("Discount", -order.Discount, false)
	}
	if order.Tip > 0 {
		writeTotal("Tip", order.Tip, false)
	}
	writeTotal("Total", order.Total, true)

	if len(splits) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Split %d ways (%s)", len(splits), splits[0].SplitType), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, split := range splits {
			pdf.CellFormat(75, 5, fmt.Sprintf("Share %d (%s)", split.SplitNumber, split.Status), "", 0, "L", false, 0, "")
			pdf.CellFormat(25, 5, fmt.Sprintf("%.2f", split.Total), "", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
