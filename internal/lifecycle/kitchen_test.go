package lifecycle

import (
	"testing"
	"time"
)

func TestKitchenEstimatedCompletion(t *testing.T) {
	confirmedAt := time.Date(2026, time.July, 9, 18, 30, 0, 0, time.UTC)

	got := KitchenEstimatedCompletion(confirmedAt, 15)
	want := time.Date(2026, time.July, 9, 18, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("KitchenEstimatedCompletion = %v, want %v", got, want)
	}

	if got := KitchenEstimatedCompletion(confirmedAt, 0); !got.Equal(confirmedAt) {
		t.Fatalf("zero prep time should promise the confirm time, got %v", got)
	}
}

func TestKitchenStation(t *testing.T) {
	if got := KitchenStation("Grill"); got != "Grill" {
		t.Fatalf("KitchenStation(Grill) = %q", got)
	}
	if got := KitchenStation(""); got != DefaultKitchenStation {
		t.Fatalf("KitchenStation(\"\") = %q, want %q", got, DefaultKitchenStation)
	}
}

func TestKitchenItemTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{name: "pending to preparing", from: OrderPending, to: OrderPreparing, allowed: true},
		{name: "preparing to ready", from: OrderPreparing, to: OrderReady, allowed: true},
		{name: "pending cannot skip to ready", from: OrderPending, to: OrderReady, allowed: false},
		{name: "ready is terminal", from: OrderReady, to: OrderPreparing, allowed: false},
		{name: "no backwards move", from: OrderPreparing, to: OrderPending, allowed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KitchenItemCanTransition(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("KitchenItemCanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestOrderStatusFromItems(t *testing.T) {
	cases := []struct {
		name        string
		current     string
		items       []string
		wantStatus  string
		wantChanged bool
	}{
		{
			name:        "no items never propagates",
			current:     OrderConfirmed,
			items:       nil,
			wantStatus:  OrderConfirmed,
			wantChanged: false,
		},
		{
			name:        "all items started moves to preparing",
			current:     OrderConfirmed,
			items:       []string{OrderPreparing, OrderPreparing},
			wantStatus:  OrderPreparing,
			wantChanged: true,
		},
		{
			name:        "mix of started and plated still preparing",
			current:     OrderConfirmed,
			items:       []string{OrderPreparing, OrderReady},
			wantStatus:  OrderPreparing,
			wantChanged: true,
		},
		{
			name:        "one untouched item blocks propagation",
			current:     OrderConfirmed,
			items:       []string{OrderPending, OrderPreparing},
			wantStatus:  OrderConfirmed,
			wantChanged: false,
		},
		{
			name:        "all plated moves to ready",
			current:     OrderPreparing,
			items:       []string{OrderReady, OrderReady},
			wantStatus:  OrderReady,
			wantChanged: true,
		},
		{
			name:        "served items count as plated",
			current:     OrderPreparing,
			items:       []string{OrderReady, OrderServed},
			wantStatus:  OrderReady,
			wantChanged: true,
		},
		{
			name:        "already ready stays put",
			current:     OrderReady,
			items:       []string{OrderReady, OrderReady},
			wantStatus:  OrderReady,
			wantChanged: false,
		},
		{
			name:        "cancelled order never propagates",
			current:     OrderCancelled,
			items:       []string{OrderReady, OrderReady},
			wantStatus:  OrderCancelled,
			wantChanged: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, changed := OrderStatusFromItems(tc.current, tc.items)
			if status != tc.wantStatus || changed != tc.wantChanged {
				t.Fatalf("OrderStatusFromItems(%s, %v) = (%s, %v), want (%s, %v)",
					tc.current, tc.items, status, changed, tc.wantStatus, tc.wantChanged)
			}
		})
	}
}
