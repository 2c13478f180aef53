package handlers

import (
	"testing"
	"time"
)

func TestBuildReceiptData(t *testing.T) {
	table := "T5"
	customer := "Jane Achieng"
	notes := "No onions"

	order := OrderView{
		OrderNumber:    "ORD-20260709-00042",
		OrderType:      "dine_in",
		TableNumber:    &table,
		CustomerName:   &customer,
		Subtotal:       41.48,
		TaxAmount:      6.63,
		DiscountAmount: 0,
		TotalAmount:    48.11,
		CreatedAt:      time.Date(2026, time.July, 9, 12, 15, 0, 0, time.UTC),
		Items: []OrderItemView{
			{
				MenuItemName:        "Grilled Tilapia",
				Quantity:            2,
				UnitPrice:           15.99,
				Subtotal:            31.98,
				SpecialInstructions: &notes,
				AddOns: []OrderItemAddOnView{
					{Name: "Extra Ugali", Quantity: 1, UnitPrice: 2.5, Subtotal: 2.5},
				},
			},
		},
		Payments: []PaymentView{
			{Method: "digital_wallet", Amount: 48.11, Status: "completed"},
		},
	}

	data := buildReceiptData(order)

	if data.OrderNumber != "ORD-20260709-00042" {
		t.Fatalf("unexpected order number %q", data.OrderNumber)
	}
	if data.OrderType != "dine in" {
		t.Fatalf("expected order type with spaces, got %q", data.OrderType)
	}
	if data.TableNumber != "T5" || data.CustomerName != "Jane Achieng" {
		t.Fatalf("unexpected table/customer: %q %q", data.TableNumber, data.CustomerName)
	}
	if data.PlacedAt != "2026-07-09 12:15" {
		t.Fatalf("unexpected placed-at %q", data.PlacedAt)
	}
	if len(data.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(data.Lines))
	}
	line := data.Lines[0]
	if line.Name != "Grilled Tilapia" || line.Quantity != 2 || line.Subtotal != "KES 31.98" {
		t.Fatalf("unexpected line: %+v", line)
	}
	if line.Notes != "No onions" {
		t.Fatalf("unexpected notes %q", line.Notes)
	}
	if len(line.AddOns) != 1 || line.AddOns[0].Subtotal != "KES 2.50" {
		t.Fatalf("unexpected addons: %+v", line.AddOns)
	}
	if data.Subtotal != "KES 41.48" || data.TotalAmount != "KES 48.11" {
		t.Fatalf("unexpected totals: %q %q", data.Subtotal, data.TotalAmount)
	}
	if data.DiscountAmount != "" {
		t.Fatalf("expected zero discount to be omitted, got %q", data.DiscountAmount)
	}
	if len(data.Payments) != 1 || data.Payments[0] != "digital wallet: KES 48.11 (completed)" {
		t.Fatalf("unexpected payments: %v", data.Payments)
	}
}

func TestBuildReceiptDataRendersPDF(t *testing.T) {
	data := buildReceiptData(OrderView{
		OrderNumber: "ORD-20260709-00001",
		OrderType:   "takeaway",
		Subtotal:    10,
		TotalAmount: 10,
		CreatedAt:   time.Now(),
	})

	buf, err := renderReceiptPDF(data)
	if err != nil {
		t.Fatalf("renderReceiptPDF failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty pdf output")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "ORD-20260709-00042", want: "ORD-20260709-00042"},
		{in: "weird/../name", want: "weird_name"},
		{in: "..", want: ""},
	}

	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
