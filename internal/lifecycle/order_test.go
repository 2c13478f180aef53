package lifecycle

import "testing"

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{name: "pending to confirmed", from: OrderPending, to: OrderConfirmed, allowed: true},
		{name: "pending to cancelled", from: OrderPending, to: OrderCancelled, allowed: true},
		{name: "pending skips to preparing", from: OrderPending, to: OrderPreparing, allowed: false},
		{name: "confirmed to preparing", from: OrderConfirmed, to: OrderPreparing, allowed: true},
		{name: "preparing straight to served", from: OrderPreparing, to: OrderServed, allowed: true},
		{name: "ready to served", from: OrderReady, to: OrderServed, allowed: true},
		{name: "served to completed", from: OrderServed, to: OrderCompleted, allowed: true},
		{name: "served cannot cancel", from: OrderServed, to: OrderCancelled, allowed: false},
		{name: "completed is terminal", from: OrderCompleted, to: OrderPending, allowed: false},
		{name: "cancelled is terminal", from: OrderCancelled, to: OrderConfirmed, allowed: false},
		{name: "no backwards move", from: OrderReady, to: OrderPreparing, allowed: false},
		{name: "unknown status", from: "bogus", to: OrderConfirmed, allowed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OrderCanTransition(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("OrderCanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestValidateOrderTransition(t *testing.T) {
	if err := ValidateOrderTransition(OrderPending, OrderConfirmed); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	err := ValidateOrderTransition(OrderServed, OrderCancelled)
	if err == nil {
		t.Fatal("expected an error for served -> cancelled")
	}
	if err.Code != ErrInvalidTransition {
		t.Fatalf("expected code %s, got %s", ErrInvalidTransition, err.Code)
	}
	if err.StatusCode != 409 {
		t.Fatalf("expected status 409, got %d", err.StatusCode)
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderServed, OrderCompleted, OrderCancelled} {
		if !ValidOrderStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ValidOrderStatus("archived") {
		t.Fatal("expected archived to be invalid")
	}
}

func TestOrderIsActive(t *testing.T) {
	if !OrderIsActive(OrderServed) {
		t.Fatal("served orders still hold resources")
	}
	if OrderIsActive(OrderCompleted) || OrderIsActive(OrderCancelled) {
		t.Fatal("terminal orders are not active")
	}
}
