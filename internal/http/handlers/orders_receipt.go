package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"havens-pos-service/pkg/response"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

type receiptAddonLine struct {
	Name     string
	Quantity int32
	Subtotal string
}

type receiptLine struct {
	Name     string
	Quantity int32
	Unit     string
	Subtotal string
	Notes    string
	AddOns   []receiptAddonLine
}

type receiptData struct {
	VenueName      string
	OrderNumber    string
	OrderType      string
	TableNumber    string
	CustomerName   string
	PlacedAt       string
	Lines          []receiptLine
	Subtotal       string
	TaxAmount      string
	DiscountAmount string
	TotalAmount    string
	Payments       []string
}

const receiptVenueName = "Maria Havens"

// OrderReceiptPDF renders a printable receipt for a single order.
func (h *Handler) OrderReceiptPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	row := h.DB.QueryRow(ctx, `
		select
			o.id, o.order_number, o.customer_name, o.customer_phone,
			o.table_id, t.number, o.order_type, o.status,
			o.subtotal, o.tax_amount, o.discount_amount, o.total_amount,
			o.special_instructions, o.created_at, o.updated_at,
			o.confirmed_at, o.served_at, o.completed_at
		from orders o
		left join tables t on t.id = o.table_id
		where o.id = $1
	`, orderID)
	order, err := scanOrderRow(row)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	itemsByOrder, err := h.loadOrderItems(ctx, []int64{orderID})
	if err != nil {
		h.Logger.Error("failed to load receipt items", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
		return
	}
	order.Items = itemsByOrder[orderID]

	payments, err := h.loadOrderPayments(ctx, orderID)
	if err != nil {
		h.Logger.Error("failed to load receipt payments", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
		return
	}
	order.Payments = payments

	buf, err := renderReceiptPDF(buildReceiptData(order))
	if err != nil {
		h.Logger.Error("failed to render receipt pdf", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
		return
	}

	filename := fmt.Sprintf("receipt_%s.pdf", sanitizeFilename(order.OrderNumber))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func buildReceiptData(order OrderView) receiptData {
	data := receiptData{
		VenueName:      receiptVenueName,
		OrderNumber:    order.OrderNumber,
		OrderType:      strings.ReplaceAll(order.OrderType, "_", " "),
		Subtotal:       formatAmount(order.Subtotal),
		TaxAmount:      formatOptionalAmount(order.TaxAmount),
		DiscountAmount: formatOptionalAmount(order.DiscountAmount),
		TotalAmount:    formatAmount(order.TotalAmount),
		PlacedAt:       order.CreatedAt.Format("2006-01-02 15:04"),
	}
	if order.TableNumber != nil {
		data.TableNumber = *order.TableNumber
	}
	if order.CustomerName != nil {
		data.CustomerName = *order.CustomerName
	}
	for _, item := range order.Items {
		line := receiptLine{
			Name:     item.MenuItemName,
			Quantity: item.Quantity,
			Unit:     formatAmount(item.UnitPrice),
			Subtotal: formatAmount(item.Subtotal),
		}
		if item.SpecialInstructions != nil {
			line.Notes = *item.SpecialInstructions
		}
		for _, addon := range item.AddOns {
			line.AddOns = append(line.AddOns, receiptAddonLine{
				Name:     addon.Name,
				Quantity: addon.Quantity,
				Subtotal: formatAmount(addon.Subtotal),
			})
		}
		data.Lines = append(data.Lines, line)
	}
	for _, p := range order.Payments {
		data.Payments = append(data.Payments, fmt.Sprintf("%s: %s (%s)",
			strings.ReplaceAll(p.Method, "_", " "), formatAmount(p.Amount), p.Status))
	}
	return data
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("KES %.2f", amount)
}

func formatOptionalAmount(amount float64) string {
	if amount <= 0 {
		return ""
	}
	return formatAmount(amount)
}

func sanitizeFilename(value string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	return strings.Trim(re.ReplaceAllString(value, "_"), "_")
}

func renderReceiptPDF(data receiptData) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, data.VenueName, "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order %s", data.OrderNumber), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, data.OrderType, "", 1, "C", false, 0, "")
	if data.TableNumber != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Table %s", data.TableNumber), "", 1, "C", false, 0, "")
	}
	if data.CustomerName != "" {
		pdf.CellFormat(0, 5, data.CustomerName, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Placed: %s", data.PlacedAt), "", 1, "C", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range data.Lines {
		pdf.CellFormat(0, 5, fmt.Sprintf("%dx %s", line.Quantity, line.Name), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Subtotal: %s", line.Subtotal), "", 1, "L", false, 0, "")
		if line.Notes != "" {
			pdf.MultiCell(0, 4, fmt.Sprintf("Notes: %s", line.Notes), "", "L", false)
		}
		for _, addon := range line.AddOns {
			pdf.CellFormat(0, 4, fmt.Sprintf("  %dx %s (%s)", addon.Quantity, addon.Name, addon.Subtotal), "", 1, "L", false, 0, "")
		}
		pdf.Ln(1)
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Totals", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Subtotal: %s", data.Subtotal), "", 1, "L", false, 0, "")
	if data.TaxAmount != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Tax: %s", data.TaxAmount), "", 1, "L", false, 0, "")
	}
	if data.DiscountAmount != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Discount: -%s", data.DiscountAmount), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %s", data.TotalAmount), "", 1, "L", false, 0, "")

	if len(data.Payments) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 9)
		for _, payment := range data.Payments {
			pdf.CellFormat(0, 5, fmt.Sprintf("Payment %s", payment), "", 1, "L", false, 0, "")
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
