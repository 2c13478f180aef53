package lifecycle

import "testing"

func TestBookingTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{name: "pending to confirmed", from: BookingPending, to: BookingConfirmed, allowed: true},
		{name: "pending to cancelled", from: BookingPending, to: BookingCancelled, allowed: true},
		{name: "pending cannot check in", from: BookingPending, to: BookingCheckedIn, allowed: false},
		{name: "confirmed to checked in", from: BookingConfirmed, to: BookingCheckedIn, allowed: true},
		{name: "confirmed to no show", from: BookingConfirmed, to: BookingNoShow, allowed: true},
		{name: "checked in to checked out", from: BookingCheckedIn, to: BookingCheckedOut, allowed: true},
		{name: "checked in cannot cancel", from: BookingCheckedIn, to: BookingCancelled, allowed: false},
		{name: "checked out is terminal", from: BookingCheckedOut, to: BookingCheckedIn, allowed: false},
		{name: "no show is terminal", from: BookingNoShow, to: BookingConfirmed, allowed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BookingCanTransition(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("BookingCanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestBookingRoomStatus(t *testing.T) {
	cases := []struct {
		name       string
		to         string
		roomStatus string
		want       string
	}{
		{name: "confirm occupies room", to: BookingConfirmed, roomStatus: RoomAvailable, want: RoomOccupied},
		{name: "check in occupies room", to: BookingCheckedIn, roomStatus: RoomOccupied, want: RoomOccupied},
		{name: "check out sends room to cleaning", to: BookingCheckedOut, roomStatus: RoomOccupied, want: RoomCleaning},
		{name: "no show frees room", to: BookingNoShow, roomStatus: RoomOccupied, want: RoomAvailable},
		{name: "cancel frees occupied room", to: BookingCancelled, roomStatus: RoomOccupied, want: RoomAvailable},
		{name: "cancel leaves maintenance alone", to: BookingCancelled, roomStatus: RoomMaintenance, want: ""},
		{name: "cancel leaves cleaning alone", to: BookingCancelled, roomStatus: RoomCleaning, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BookingRoomStatus(tc.to, tc.roomStatus); got != tc.want {
				t.Fatalf("BookingRoomStatus(%s, %s) = %q, want %q", tc.to, tc.roomStatus, got, tc.want)
			}
		})
	}
}

func TestBookingCustomerImpact(t *testing.T) {
	cases := []struct {
		name  string
		to    string
		total float64
		want  CustomerImpact
	}{
		{name: "check in counts a visit", to: BookingCheckedIn, total: 5000, want: CustomerImpact{AddVisit: true}},
		{name: "check out books exactly the total", to: BookingCheckedOut, total: 5000, want: CustomerImpact{AddSpend: 5000}},
		{name: "confirm leaves the customer alone", to: BookingConfirmed, total: 5000, want: CustomerImpact{}},
		{name: "cancel leaves the customer alone", to: BookingCancelled, total: 5000, want: CustomerImpact{}},
		{name: "no show leaves the customer alone", to: BookingNoShow, total: 5000, want: CustomerImpact{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BookingCustomerImpact(tc.to, tc.total); got != tc.want {
				t.Fatalf("BookingCustomerImpact(%s, %v) = %+v, want %+v", tc.to, tc.total, got, tc.want)
			}
		})
	}
}

func TestValidRoomStatus(t *testing.T) {
	for _, status := range []string{RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning, RoomOutOfOrder} {
		if !ValidRoomStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ValidRoomStatus("vacant") {
		t.Fatal("expected vacant to be invalid")
	}
}
