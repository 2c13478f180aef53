package lifecycle

import "testing"

func TestReservationTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{name: "pending to confirmed", from: ReservationPending, to: ReservationConfirmed, allowed: true},
		{name: "pending to cancelled", from: ReservationPending, to: ReservationCancelled, allowed: true},
		{name: "pending cannot seat", from: ReservationPending, to: ReservationSeated, allowed: false},
		{name: "confirmed to seated", from: ReservationConfirmed, to: ReservationSeated, allowed: true},
		{name: "confirmed to no show", from: ReservationConfirmed, to: ReservationNoShow, allowed: true},
		{name: "seated to completed", from: ReservationSeated, to: ReservationCompleted, allowed: true},
		{name: "seated cannot cancel", from: ReservationSeated, to: ReservationCancelled, allowed: false},
		{name: "no show can still cancel", from: ReservationNoShow, to: ReservationCancelled, allowed: true},
		{name: "completed is terminal", from: ReservationCompleted, to: ReservationSeated, allowed: false},
		{name: "cancelled is terminal", from: ReservationCancelled, to: ReservationConfirmed, allowed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ReservationCanTransition(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("ReservationCanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestValidateSeatTable(t *testing.T) {
	if err := ValidateSeatTable("T1", false); err != nil {
		t.Fatalf("seating a free table should pass, got %v", err)
	}

	err := ValidateSeatTable("T1", true)
	if err == nil {
		t.Fatal("seating an occupied table must fail")
	}
	if err.Code != ErrResourceConflict {
		t.Fatalf("expected %s, got %s", ErrResourceConflict, err.Code)
	}
	if err.StatusCode != 409 {
		t.Fatalf("expected status 409, got %d", err.StatusCode)
	}
	if err.Details["table"] != "T1" {
		t.Fatalf("expected the table number in details, got %v", err.Details)
	}
}
