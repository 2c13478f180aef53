package billing

import (
	"testing"
	"time"
)

func TestLineSubtotal(t *testing.T) {
	cases := []struct {
		name      string
		quantity  int32
		unitPrice float64
		want      float64
	}{
		{name: "simple", quantity: 2, unitPrice: 15.99, want: 31.98},
		{name: "single item", quantity: 1, unitPrice: 9.5, want: 9.5},
		{name: "rounds to cents", quantity: 3, unitPrice: 3.333, want: 10.0},
		{name: "zero quantity", quantity: 0, unitPrice: 12.0, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LineSubtotal(tc.quantity, tc.unitPrice); got != tc.want {
				t.Fatalf("LineSubtotal(%d, %v) = %v, want %v", tc.quantity, tc.unitPrice, got, tc.want)
			}
		})
	}
}

func TestOrderTotals(t *testing.T) {
	cases := []struct {
		name         string
		lines        []float64
		tax          float64
		discount     float64
		wantSubtotal float64
		wantTotal    float64
	}{
		{
			name:         "sums lines with tax and discount",
			lines:        []float64{31.98, 9.5},
			tax:          6.63,
			discount:     5,
			wantSubtotal: 41.48,
			wantTotal:    43.11,
		},
		{
			name:         "empty order",
			lines:        nil,
			tax:          0,
			discount:     0,
			wantSubtotal: 0,
			wantTotal:    0,
		},
		{
			name:         "discount exceeding subtotal goes negative",
			lines:        []float64{10},
			tax:          0,
			discount:     15,
			wantSubtotal: 10,
			wantTotal:    -5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subtotal, total := OrderTotals(tc.lines, tc.tax, tc.discount)
			if subtotal != tc.wantSubtotal || total != tc.wantTotal {
				t.Fatalf("OrderTotals = (%v, %v), want (%v, %v)", subtotal, total, tc.wantSubtotal, tc.wantTotal)
			}
		})
	}
}

func TestNights(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{name: "three night stay", checkIn: day(1), checkOut: day(4), want: 3},
		{name: "one night", checkIn: day(1), checkOut: day(2), want: 1},
		{name: "time of day ignored", checkIn: day(1).Add(14 * time.Hour), checkOut: day(3).Add(10 * time.Hour), want: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Nights(tc.checkIn, tc.checkOut); got != tc.want {
				t.Fatalf("Nights(%v, %v) = %d, want %d", tc.checkIn, tc.checkOut, got, tc.want)
			}
		})
	}
}

func TestBookingTotals(t *testing.T) {
	roomCharges, total := BookingTotals(100, 3, 48, 25.5, 10)
	if roomCharges != 300 {
		t.Fatalf("expected room charges 300, got %v", roomCharges)
	}
	if total != 363.5 {
		t.Fatalf("expected total 363.5, got %v", total)
	}

	roomCharges, total = BookingTotals(89.99, 2, 0, 0, 0)
	if roomCharges != 179.98 || total != 179.98 {
		t.Fatalf("expected 179.98/179.98, got %v/%v", roomCharges, total)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(10.006); got != 10.01 {
		t.Fatalf("expected 10.01, got %v", got)
	}
	if got := Round2(10.004); got != 10.0 {
		t.Fatalf("expected 10.0, got %v", got)
	}
}
