// Package billing holds the derived-total arithmetic. Stored money fields
// are caches of these functions and must be recomputed on every mutation
// that touches their inputs.
package billing

import (
	"math"
	"time"
)

// Round2 normalizes a money amount to cents.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// LineSubtotal is the invariant subtotal of an order item or add-on.
func LineSubtotal(quantity int32, unitPrice float64) float64 {
	return Round2(float64(quantity) * unitPrice)
}

// OrderTotals recomputes an order's denormalized money fields from its line
// subtotals.
func OrderTotals(lineSubtotals []float64, tax, discount float64) (subtotal, total float64) {
	for _, s := range lineSubtotals {
		subtotal += s
	}
	subtotal = Round2(subtotal)
	total = Round2(subtotal + tax - discount)
	return subtotal, total
}

// Nights is the length of a hotel stay in whole days.
func Nights(checkIn, checkOut time.Time) int {
	in := checkIn.Truncate(24 * time.Hour)
	out := checkOut.Truncate(24 * time.Hour)
	return int(out.Sub(in).Hours() / 24)
}

// BookingTotals recomputes a room booking's charges from its rate and stay.
func BookingTotals(roomRate float64, nights int, tax, additional, discount float64) (roomCharges, total float64) {
	roomCharges = Round2(roomRate * float64(nights))
	total = Round2(roomCharges + tax + additional - discount)
	return roomCharges, total
}
