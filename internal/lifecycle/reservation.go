package lifecycle

// Reservation statuses.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationSeated    = "seated"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
	ReservationNoShow    = "no_show"
)

var reservationTransitions = map[string][]string{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationSeated, ReservationCancelled, ReservationNoShow},
	ReservationSeated:    {ReservationCompleted},
	ReservationCompleted: {},
	ReservationCancelled: {},
	// a no-show can still be cancelled for record keeping
	ReservationNoShow: {ReservationCancelled},
}

func ReservationCanTransition(from, to string) bool {
	return contains(reservationTransitions[from], to)
}

func ValidateReservationTransition(from, to string) *Error {
	if !ReservationCanTransition(from, to) {
		return InvalidTransition("reservation", from, to)
	}
	return nil
}

// ValidateSeatTable rejects seating a party onto a table that is already
// occupied; the reservation and the table must both stay unchanged.
func ValidateSeatTable(tableNumber string, occupied bool) *Error {
	if occupied {
		return ResourceConflict("Table is already occupied", map[string]any{"table": tableNumber})
	}
	return nil
}

// Reservation history actions. One row is appended per lifecycle transition
// plus a single created row; the log is never mutated afterwards.
const (
	HistoryCreated   = "created"
	HistoryConfirmed = "confirmed"
	HistoryModified  = "modified"
	HistoryCancelled = "cancelled"
	HistorySeated    = "seated"
	HistoryCompleted = "completed"
	HistoryNoShow    = "no_show"
)
