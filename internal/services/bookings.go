package services

import (
	"context"
	"fmt"
	"time"

	"havens-pos-service/internal/billing"
	"havens-pos-service/internal/lifecycle"
	"havens-pos-service/internal/queue"
	"havens-pos-service/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Bookings struct {
	Deps
}

type CreateBookingParams struct {
	CustomerID        int64
	RoomID            int64
	CheckInDate       time.Time
	CheckOutDate      time.Time
	Adults            int32
	Children          int32
	RoomRate          float64
	TaxAmount         float64
	AdditionalCharges float64
	DiscountAmount    float64
	Source            string
	SpecialRequests   string
}

var bookingSources = map[string]bool{
	"walk_in":     true,
	"phone":       true,
	"website":     true,
	"email":       true,
	"third_party": true,
}

// Create inserts a pending booking with derived nights and charge totals.
// The room is untouched until the booking is confirmed.
func (s *Bookings) Create(ctx context.Context, actor Actor, params CreateBookingParams) (int64, string, error) {
	if !params.CheckOutDate.After(params.CheckInDate) {
		return 0, "", lifecycle.ValidationError("Check-out must be after check-in")
	}
	if params.Adults < 1 {
		return 0, "", lifecycle.ValidationError("At least one adult is required")
	}
	if params.Children < 0 {
		return 0, "", lifecycle.ValidationError("Children must be non-negative")
	}
	if params.RoomRate < 0 || params.TaxAmount < 0 || params.AdditionalCharges < 0 || params.DiscountAmount < 0 {
		return 0, "", lifecycle.ValidationError("Charges must be non-negative")
	}
	if params.Source == "" {
		params.Source = "walk_in"
	}
	if !bookingSources[params.Source] {
		return 0, "", lifecycle.ValidationError("Invalid booking source")
	}

	nights := billing.Nights(params.CheckInDate, params.CheckOutDate)
	roomCharges, total := billing.BookingTotals(params.RoomRate, nights, params.TaxAmount, params.AdditionalCharges, params.DiscountAmount)

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var roomExists bool
	if err := tx.QueryRow(ctx, `select exists(select 1 from rooms where id = $1 and is_active)`, params.RoomID).Scan(&roomExists); err != nil {
		return 0, "", err
	}
	if !roomExists {
		return 0, "", lifecycle.NotFound("Room")
	}
	var customerExists bool
	if err := tx.QueryRow(ctx, `select exists(select 1 from customers where id = $1)`, params.CustomerID).Scan(&customerExists); err != nil {
		return 0, "", err
	}
	if !customerExists {
		return 0, "", lifecycle.NotFound("Customer")
	}

	now := time.Now()
	var bookingID int64
	bookingNumber, err := insertNumbered(ctx, tx, BookingNumberPrefix, now, func(sp pgx.Tx, number string) error {
		return sp.QueryRow(ctx, `
			insert into room_bookings (
				booking_number, customer_id, room_id,
				check_in_date, check_out_date, nights,
				adults, children,
				room_rate, total_room_charges, tax_amount, additional_charges, discount_amount, total_amount,
				status, source, special_requests, created_by_user_id, created_at, updated_at
			) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
			returning id
		`,
			number, params.CustomerID, params.RoomID,
			params.CheckInDate, params.CheckOutDate, nights,
			params.Adults, params.Children,
			params.RoomRate, roomCharges, params.TaxAmount, params.AdditionalCharges, params.DiscountAmount, total,
			lifecycle.BookingPending, params.Source, params.SpecialRequests, nullableActor(actor), now,
		).Scan(&bookingID)
	})
	if err != nil {
		return 0, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, "", err
	}

	s.recordActivity(ctx, "booking.created", queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "booking.created",
		Entity:      "room_booking",
		EntityID:    bookingID,
		Description: fmt.Sprintf("Created booking %s (%d nights)", bookingNumber, nights),
	})
	return bookingID, bookingNumber, nil
}

func (s *Bookings) Confirm(ctx context.Context, actor Actor, bookingID int64) error {
	return s.transition(ctx, actor, bookingID, lifecycle.BookingConfirmed, "booking.confirmed", "Booking confirmed")
}

func (s *Bookings) CheckIn(ctx context.Context, actor Actor, bookingID int64) error {
	return s.transition(ctx, actor, bookingID, lifecycle.BookingCheckedIn, "booking.checked_in", "Guest checked in")
}

func (s *Bookings) CheckOut(ctx context.Context, actor Actor, bookingID int64) error {
	return s.transition(ctx, actor, bookingID, lifecycle.BookingCheckedOut, "booking.checked_out", "Guest checked out")
}

func (s *Bookings) Cancel(ctx context.Context, actor Actor, bookingID int64) error {
	return s.transition(ctx, actor, bookingID, lifecycle.BookingCancelled, "booking.cancelled", "Booking cancelled")
}

func (s *Bookings) NoShow(ctx context.Context, actor Actor, bookingID int64) error {
	return s.transition(ctx, actor, bookingID, lifecycle.BookingNoShow, "booking.no_show", "Booking marked as no-show")
}

// transition applies one booking status change with its room and customer
// side effects, atomically.
func (s *Bookings) transition(ctx context.Context, actor Actor, bookingID int64, to string, action, description string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	var roomID, customerID int64
	var totalAmount pgtype.Numeric
	err = tx.QueryRow(ctx, `
		select status, room_id, customer_id, total_amount
		from room_bookings where id = $1 for update
	`, bookingID).Scan(&status, &roomID, &customerID, &totalAmount)
	if err != nil {
		if isNoRows(err) {
			return lifecycle.NotFound("Booking")
		}
		return err
	}

	if lcErr := lifecycle.ValidateBookingTransition(status, to); lcErr != nil {
		return lcErr
	}

	var roomStatus string
	if err := tx.QueryRow(ctx, `select status from rooms where id = $1 for update`, roomID).Scan(&roomStatus); err != nil {
		return err
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update room_bookings
		set status = $1,
			updated_at = $2,
			checked_in_at = case when $1 = 'checked_in' then $2 else checked_in_at end,
			checked_in_by_user_id = case when $1 = 'checked_in' then $3 else checked_in_by_user_id end,
			checked_out_at = case when $1 = 'checked_out' then $2 else checked_out_at end,
			checked_out_by_user_id = case when $1 = 'checked_out' then $3 else checked_out_by_user_id end
		where id = $4
	`, to, now, nullableActor(actor), bookingID); err != nil {
		return err
	}

	if next := lifecycle.BookingRoomStatus(to, roomStatus); next != "" {
		if _, err := tx.Exec(ctx, `update rooms set status = $1, updated_at = $2 where id = $3`, next, now, roomID); err != nil {
			return err
		}
	}

	impact := lifecycle.BookingCustomerImpact(to, utils.NumericToFloat64(totalAmount))
	if impact.AddVisit {
		if _, err := tx.Exec(ctx, `
			update customers set total_visits = total_visits + 1, last_visit = $1, updated_at = $1 where id = $2
		`, now, customerID); err != nil {
			return err
		}
	}
	if impact.AddSpend != 0 {
		if _, err := tx.Exec(ctx, `
			update customers set total_spent = total_spent + $1, updated_at = $2 where id = $3
		`, impact.AddSpend, now, customerID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, action, queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      action,
		Entity:      "room_booking",
		EntityID:    bookingID,
		Description: description,
	})
	return nil
}

type RoomServiceParams struct {
	ServiceType string
	Description string
	Priority    int32
	Charge      float64
}

var roomServiceTypes = map[string]bool{
	"housekeeping": true,
	"maintenance":  true,
	"laundry":      true,
	"food_service": true,
	"concierge":    true,
	"other":        true,
}

// AddService attaches a requested room service entry to a booking.
func (s *Bookings) AddService(ctx context.Context, actor Actor, bookingID int64, params RoomServiceParams) (int64, error) {
	if !roomServiceTypes[params.ServiceType] {
		return 0, lifecycle.ValidationError("Invalid service type")
	}
	if params.Priority < 1 || params.Priority > 5 {
		return 0, lifecycle.ValidationError("Priority must be between 1 and 5")
	}
	if params.Charge < 0 {
		return 0, lifecycle.ValidationError("Charge must be non-negative")
	}

	var exists bool
	if err := s.DB.QueryRow(ctx, `select exists(select 1 from room_bookings where id = $1)`, bookingID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, lifecycle.NotFound("Booking")
	}

	var serviceID int64
	err := s.DB.QueryRow(ctx, `
		insert into room_services (booking_id, service_type, description, priority, charge, status, requested_by_user_id)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id
	`, bookingID, params.ServiceType, params.Description, params.Priority, params.Charge,
		lifecycle.ServiceRequested, nullableActor(actor),
	).Scan(&serviceID)
	if err != nil {
		return 0, err
	}

	s.recordActivity(ctx, "booking.service.requested", queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "booking.service.requested",
		Entity:      "room_service",
		EntityID:    serviceID,
		Description: fmt.Sprintf("Requested %s service", params.ServiceType),
	})
	return serviceID, nil
}

// AssignService moves a requested service to in_progress under an assignee.
func (s *Bookings) AssignService(ctx context.Context, actor Actor, serviceID, assigneeID int64) error {
	return s.serviceTransition(ctx, actor, serviceID, lifecycle.ServiceInProgress, &assigneeID)
}

// CompleteService closes a service entry; a non-zero charge is folded into
// the booking's additional charges with totals recomputed.
func (s *Bookings) CompleteService(ctx context.Context, actor Actor, serviceID int64) error {
	return s.serviceTransition(ctx, actor, serviceID, lifecycle.ServiceCompleted, nil)
}

func (s *Bookings) CancelService(ctx context.Context, actor Actor, serviceID int64) error {
	return s.serviceTransition(ctx, actor, serviceID, lifecycle.ServiceCancelled, nil)
}

func (s *Bookings) serviceTransition(ctx context.Context, actor Actor, serviceID int64, to string, assigneeID *int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	var bookingID int64
	var charge pgtype.Numeric
	err = tx.QueryRow(ctx, `
		select status, booking_id, charge from room_services where id = $1 for update
	`, serviceID).Scan(&status, &bookingID, &charge)
	if err != nil {
		if isNoRows(err) {
			return lifecycle.NotFound("Room service")
		}
		return err
	}

	if lcErr := lifecycle.ValidateServiceTransition(status, to); lcErr != nil {
		return lcErr
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update room_services
		set status = $1,
			assigned_to_user_id = coalesce($2, assigned_to_user_id),
			completed_at = case when $1 = 'completed' then $3 else completed_at end
		where id = $4
	`, to, assigneeID, now, serviceID); err != nil {
		return err
	}

	if to == lifecycle.ServiceCompleted {
		if amount := utils.NumericToFloat64(charge); amount > 0 {
			if err := addBookingCharges(ctx, tx, bookingID, amount); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, "booking.service."+to, queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "booking.service." + to,
		Entity:      "room_service",
		EntityID:    serviceID,
		Description: "Room service moved to " + to,
	})
	return nil
}

// addBookingCharges folds an extra charge into a booking and recomputes its
// derived totals in the same transaction.
func addBookingCharges(ctx context.Context, tx pgx.Tx, bookingID int64, amount float64) error {
	var rate, tax, additional, discount pgtype.Numeric
	var nights int
	err := tx.QueryRow(ctx, `
		select room_rate, nights, tax_amount, additional_charges, discount_amount
		from room_bookings where id = $1 for update
	`, bookingID).Scan(&rate, &nights, &tax, &additional, &discount)
	if err != nil {
		return err
	}

	newAdditional := billing.Round2(utils.NumericToFloat64(additional) + amount)
	roomCharges, total := billing.BookingTotals(
		utils.NumericToFloat64(rate), nights,
		utils.NumericToFloat64(tax), newAdditional, utils.NumericToFloat64(discount),
	)

	_, err = tx.Exec(ctx, `
		update room_bookings
		set additional_charges = $1, total_room_charges = $2, total_amount = $3, updated_at = now()
		where id = $4
	`, newAdditional, roomCharges, total, bookingID)
	return err
}
