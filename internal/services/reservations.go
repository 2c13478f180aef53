package services

import (
	"context"
	"fmt"
	"time"

	"havens-pos-service/internal/lifecycle"
	"havens-pos-service/internal/queue"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Reservations struct {
	Deps
}

type CreateReservationParams struct {
	CustomerID      int64
	Date            time.Time
	Time            string
	PartySize       int32
	DurationHours   float64
	TableID         *int64
	Occasion        string
	SpecialRequests string
}

var reservationOccasions = map[string]bool{
	"birthday":    true,
	"anniversary": true,
	"date":        true,
	"business":    true,
	"celebration": true,
	"casual":      true,
	"other":       true,
}

// Create inserts a pending reservation and appends its created history row in
// the same transaction.
func (s *Reservations) Create(ctx context.Context, actor Actor, params CreateReservationParams) (int64, string, error) {
	if params.PartySize < 1 || params.PartySize > 20 {
		return 0, "", lifecycle.ValidationError("Party size must be between 1 and 20")
	}
	if params.DurationHours <= 0 {
		params.DurationHours = 2.0
	}
	if params.Occasion == "" {
		params.Occasion = "casual"
	}
	if !reservationOccasions[params.Occasion] {
		return 0, "", lifecycle.ValidationError("Invalid occasion")
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var customerExists bool
	if err := tx.QueryRow(ctx, `select exists(select 1 from customers where id = $1)`, params.CustomerID).Scan(&customerExists); err != nil {
		return 0, "", err
	}
	if !customerExists {
		return 0, "", lifecycle.NotFound("Customer")
	}
	if params.TableID != nil {
		var tableExists bool
		if err := tx.QueryRow(ctx, `select exists(select 1 from tables where id = $1 and is_active)`, *params.TableID).Scan(&tableExists); err != nil {
			return 0, "", err
		}
		if !tableExists {
			return 0, "", lifecycle.NotFound("Table")
		}
	}

	now := time.Now()
	var reservationID int64
	reservationNumber, err := insertNumbered(ctx, tx, ReservationNumberPrefix, now, func(sp pgx.Tx, number string) error {
		return sp.QueryRow(ctx, `
			insert into reservations (
				reservation_number, customer_id, reservation_date, reservation_time,
				party_size, duration_hours, table_id, occasion, special_requests,
				status, created_by_user_id, created_at, updated_at
			) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
			returning id
		`,
			number, params.CustomerID, params.Date, params.Time,
			params.PartySize, params.DurationHours, params.TableID, params.Occasion, params.SpecialRequests,
			lifecycle.ReservationPending, nullableActor(actor), now,
		).Scan(&reservationID)
	})
	if err != nil {
		return 0, "", err
	}

	if err := appendHistory(ctx, tx, reservationID, lifecycle.HistoryCreated, "Reservation created", actor); err != nil {
		return 0, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, "", err
	}

	s.recordActivity(ctx, "reservation.created", queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "reservation.created",
		Entity:      "reservation",
		EntityID:    reservationID,
		Description: fmt.Sprintf("Created reservation %s for party of %d", reservationNumber, params.PartySize),
	})
	return reservationID, reservationNumber, nil
}

func (s *Reservations) Confirm(ctx context.Context, actor Actor, reservationID int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := lockReservation(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if lcErr := lifecycle.ValidateReservationTransition(res.status, lifecycle.ReservationConfirmed); lcErr != nil {
		return lcErr
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update reservations set status = $1, updated_at = $2 where id = $3
	`, lifecycle.ReservationConfirmed, now, reservationID); err != nil {
		return err
	}
	if err := appendHistory(ctx, tx, reservationID, lifecycle.HistoryConfirmed, "Reservation confirmed", actor); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, "reservation.confirmed", queue.ActivityEvent{
		UserID:   actor.UserID,
		Action:   "reservation.confirmed",
		Entity:   "reservation",
		EntityID: reservationID,
	})
	return nil
}

// Seat moves a confirmed reservation to seated. The target table (request
// override or the reserved one) must be free; seating occupies it, sets the
// host, and bumps the customer's visit stats.
func (s *Reservations) Seat(ctx context.Context, actor Actor, reservationID int64, tableID *int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := lockReservation(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if lcErr := lifecycle.ValidateReservationTransition(res.status, lifecycle.ReservationSeated); lcErr != nil {
		return lcErr
	}

	target := res.tableID
	if tableID != nil {
		target = tableID
	}

	tableLabel := "TBD"
	if target != nil {
		var number string
		var occupied bool
		err := tx.QueryRow(ctx, `
			select number, is_occupied from tables where id = $1 and is_active for update
		`, *target).Scan(&number, &occupied)
		if err != nil {
			if isNoRows(err) {
				return lifecycle.NotFound("Table")
			}
			return err
		}
		if lcErr := lifecycle.ValidateSeatTable(number, occupied); lcErr != nil {
			return lcErr
		}
		if _, err := tx.Exec(ctx, `update tables set is_occupied = true where id = $1`, *target); err != nil {
			return err
		}
		tableLabel = number
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update reservations
		set status = $1, table_id = $2, host_user_id = $3, seated_at = $4, updated_at = $4
		where id = $5
	`, lifecycle.ReservationSeated, target, nullableActor(actor), now, reservationID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		update customers set total_visits = total_visits + 1, last_visit = $1, updated_at = $1 where id = $2
	`, now, res.customerID); err != nil {
		return err
	}

	if err := appendHistory(ctx, tx, reservationID, lifecycle.HistorySeated, "Seated at table "+tableLabel, actor); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, "reservation.seated", queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "reservation.seated",
		Entity:      "reservation",
		EntityID:    reservationID,
		Description: "Seated at table " + tableLabel,
	})
	return nil
}

// Complete closes a seated reservation and frees its table.
func (s *Reservations) Complete(ctx context.Context, actor Actor, reservationID int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := lockReservation(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if lcErr := lifecycle.ValidateReservationTransition(res.status, lifecycle.ReservationCompleted); lcErr != nil {
		return lcErr
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update reservations set status = $1, completed_at = $2, updated_at = $2 where id = $3
	`, lifecycle.ReservationCompleted, now, reservationID); err != nil {
		return err
	}
	if res.tableID != nil {
		if _, err := tx.Exec(ctx, `update tables set is_occupied = false where id = $1`, *res.tableID); err != nil {
			return err
		}
	}
	if err := appendHistory(ctx, tx, reservationID, lifecycle.HistoryCompleted, "Reservation completed", actor); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, "reservation.completed", queue.ActivityEvent{
		UserID:   actor.UserID,
		Action:   "reservation.completed",
		Entity:   "reservation",
		EntityID: reservationID,
	})
	return nil
}

func (s *Reservations) Cancel(ctx context.Context, actor Actor, reservationID int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := lockReservation(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if lcErr := lifecycle.ValidateReservationTransition(res.status, lifecycle.ReservationCancelled); lcErr != nil {
		return lcErr
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update reservations set status = $1, updated_at = $2 where id = $3
	`, lifecycle.ReservationCancelled, now, reservationID); err != nil {
		return err
	}
	if err := appendHistory(ctx, tx, reservationID, lifecycle.HistoryCancelled,
		fmt.Sprintf("Cancelled from %s status", res.status), actor); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, "reservation.cancelled", queue.ActivityEvent{
		UserID:   actor.UserID,
		Action:   "reservation.cancelled",
		Entity:   "reservation",
		EntityID: reservationID,
	})
	return nil
}

func (s *Reservations) NoShow(ctx context.Context, actor Actor, reservationID int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := lockReservation(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if lcErr := lifecycle.ValidateReservationTransition(res.status, lifecycle.ReservationNoShow); lcErr != nil {
		return lcErr
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update reservations set status = $1, updated_at = $2 where id = $3
	`, lifecycle.ReservationNoShow, now, reservationID); err != nil {
		return err
	}
	if err := appendHistory(ctx, tx, reservationID, lifecycle.HistoryNoShow, "Marked as no show", actor); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, "reservation.no_show", queue.ActivityEvent{
		UserID:   actor.UserID,
		Action:   "reservation.no_show",
		Entity:   "reservation",
		EntityID: reservationID,
	})
	return nil
}

// AddNote attaches free text to a reservation. Notes have no state impact.
func (s *Reservations) AddNote(ctx context.Context, actor Actor, reservationID int64, note string) (int64, error) {
	if note == "" {
		return 0, lifecycle.ValidationError("Note text required")
	}

	var exists bool
	if err := s.DB.QueryRow(ctx, `select exists(select 1 from reservations where id = $1)`, reservationID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, lifecycle.NotFound("Reservation")
	}

	var noteID int64
	err := s.DB.QueryRow(ctx, `
		insert into reservation_notes (reservation_id, note, created_by_user_id)
		values ($1, $2, $3)
		returning id
	`, reservationID, note, nullableActor(actor)).Scan(&noteID)
	if err != nil {
		return 0, err
	}
	return noteID, nil
}

type lockedReservation struct {
	status     string
	customerID int64
	tableID    *int64
}

func lockReservation(ctx context.Context, tx pgx.Tx, reservationID int64) (lockedReservation, error) {
	var res lockedReservation
	var tableID pgtype.Int8
	err := tx.QueryRow(ctx, `
		select status, customer_id, table_id from reservations where id = $1 for update
	`, reservationID).Scan(&res.status, &res.customerID, &tableID)
	if err != nil {
		if isNoRows(err) {
			return res, lifecycle.NotFound("Reservation")
		}
		return res, err
	}
	if tableID.Valid {
		res.tableID = &tableID.Int64
	}
	return res, nil
}

// appendHistory writes one audit row; the history log is append-only and no
// update or delete path exists.
func appendHistory(ctx context.Context, tx pgx.Tx, reservationID int64, action, description string, actor Actor) error {
	_, err := tx.Exec(ctx, `
		insert into reservation_history (reservation_id, action, description, performed_by_user_id)
		values ($1, $2, $3, $4)
	`, reservationID, action, description, nullableActor(actor))
	return err
}
