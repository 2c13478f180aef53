package lifecycle

// Room booking statuses.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingCheckedIn  = "checked_in"
	BookingCheckedOut = "checked_out"
	BookingCancelled  = "cancelled"
	BookingNoShow     = "no_show"
)

var bookingTransitions = map[string][]string{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingCheckedIn, BookingCancelled, BookingNoShow},
	BookingCheckedIn:  {BookingCheckedOut},
	BookingCheckedOut: {},
	BookingCancelled:  {},
	BookingNoShow:     {},
}

func BookingCanTransition(from, to string) bool {
	return contains(bookingTransitions[from], to)
}

func ValidateBookingTransition(from, to string) *Error {
	if !BookingCanTransition(from, to) {
		return InvalidTransition("booking", from, to)
	}
	return nil
}

// Room statuses. Mutated exclusively by booking and maintenance transitions
// plus the explicit housekeeping endpoints.
const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
	RoomCleaning    = "cleaning"
	RoomOutOfOrder  = "out_of_order"
)

func ValidRoomStatus(status string) bool {
	switch status {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning, RoomOutOfOrder:
		return true
	}
	return false
}

// CustomerImpact describes the visit and spend counters a booking transition
// applies to the customer aggregate.
type CustomerImpact struct {
	AddVisit bool
	AddSpend float64
}

// BookingCustomerImpact returns the customer stat changes a booking
// transition carries: check-in counts a visit, check-out books the spend.
func BookingCustomerImpact(to string, totalAmount float64) CustomerImpact {
	switch to {
	case BookingCheckedIn:
		return CustomerImpact{AddVisit: true}
	case BookingCheckedOut:
		return CustomerImpact{AddSpend: totalAmount}
	}
	return CustomerImpact{}
}

// BookingRoomStatus returns the room status a booking transition forces,
// or "" when the transition leaves the room untouched.
func BookingRoomStatus(to string, currentRoomStatus string) string {
	switch to {
	case BookingConfirmed, BookingCheckedIn:
		return RoomOccupied
	case BookingCheckedOut:
		return RoomCleaning
	case BookingNoShow:
		return RoomAvailable
	case BookingCancelled:
		if currentRoomStatus == RoomOccupied {
			return RoomAvailable
		}
	}
	return ""
}
