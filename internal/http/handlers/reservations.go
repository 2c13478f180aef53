package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"havens-pos-service/internal/services"
	"havens-pos-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type createReservationRequest struct {
	CustomerID      int64   `json:"customerId"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	PartySize       int32   `json:"partySize"`
	DurationHours   float64 `json:"durationHours"`
	TableID         *int64  `json:"tableId"`
	Occasion        string  `json:"occasion"`
	SpecialRequests string  `json:"specialRequests"`
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation date")
		return
	}

	reservationID, reservationNumber, err := h.Services.Reservations.Create(r.Context(), actorFrom(r), services.CreateReservationParams{
		CustomerID:      req.CustomerID,
		Date:            date,
		Time:            req.Time,
		PartySize:       req.PartySize,
		DurationHours:   req.DurationHours,
		TableID:         req.TableID,
		Occasion:        req.Occasion,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to create reservation")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data": map[string]any{
			"id":                reservationID,
			"reservationNumber": reservationNumber,
		},
	})
}

const reservationSelectSQL = `
	select
		rs.id, rs.reservation_number, rs.customer_id, c.first_name || ' ' || c.last_name,
		rs.reservation_date, rs.reservation_time, rs.party_size, rs.duration_hours,
		rs.table_id, t.number, rs.occasion, rs.status,
		rs.seated_at, rs.completed_at, rs.created_at
	from reservations rs
	join customers c on c.id = rs.customer_id
	left join tables t on t.id = rs.table_id
`

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reservationID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return
	}

	row := h.DB.QueryRow(ctx, reservationSelectSQL+` where rs.id = $1`, reservationID)
	view, err := scanReservationRow(row)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
		return
	}

	history, err := h.loadReservationHistory(ctx, reservationID)
	if err != nil {
		h.Logger.Error("failed to load reservation history", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve reservation")
		return
	}
	view.History = history

	notes, err := h.loadReservationNotes(ctx, reservationID)
	if err != nil {
		h.Logger.Error("failed to load reservation notes", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve reservation")
		return
	}
	view.Notes = notes

	response.Success(w, view)
}

// ReservationsToday lists today's reservations in time order, spanning all
// statuses so the host stand sees cancellations too.
func (h *Handler) ReservationsToday(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), reservationSelectSQL+`
		where rs.reservation_date = current_date
		order by rs.reservation_time asc, rs.id asc
	`)
	if err != nil {
		h.Logger.Error("failed to list reservations", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve reservations")
		return
	}
	defer rows.Close()

	reservations := make([]ReservationView, 0)
	for rows.Next() {
		view, err := scanReservationRow(rows)
		if err != nil {
			continue
		}
		reservations = append(reservations, view)
	}
	response.Success(w, reservations)
}

func scanReservationRow(row orderRowScanner) (ReservationView, error) {
	var (
		view        ReservationView
		date        time.Time
		tableID     pgtype.Int8
		tableNumber pgtype.Text
		duration    pgtype.Float8
		seatedAt    pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&view.ID, &view.ReservationNumber, &view.CustomerID, &view.CustomerName,
		&date, &view.Time, &view.PartySize, &duration,
		&tableID, &tableNumber, &view.Occasion, &view.Status,
		&seatedAt, &completedAt, &view.CreatedAt,
	)
	if err != nil {
		return ReservationView{}, err
	}
	view.Date = date.Format("2006-01-02")
	if duration.Valid {
		view.DurationHours = duration.Float64
	}
	if tableID.Valid {
		view.TableID = &tableID.Int64
	}
	view.TableNumber = textPtr(tableNumber)
	view.SeatedAt = timePtr(seatedAt)
	view.CompletedAt = timePtr(completedAt)
	return view, nil
}

func (h *Handler) loadReservationHistory(ctx context.Context, reservationID int64) ([]ReservationHistoryView, error) {
	rows, err := h.DB.Query(ctx, `
		select id, action, description, performed_by_user_id, created_at
		from reservation_history
		where reservation_id = $1
		order by id asc
	`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]ReservationHistoryView, 0)
	for rows.Next() {
		var (
			entry       ReservationHistoryView
			performedBy pgtype.Int8
		)
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Description, &performedBy, &entry.Timestamp); err != nil {
			continue
		}
		if performedBy.Valid {
			entry.PerformedBy = &performedBy.Int64
		}
		history = append(history, entry)
	}
	return history, nil
}

func (h *Handler) loadReservationNotes(ctx context.Context, reservationID int64) ([]ReservationNoteView, error) {
	rows, err := h.DB.Query(ctx, `
		select id, note, created_by_user_id, created_at
		from reservation_notes
		where reservation_id = $1
		order by id asc
	`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]ReservationNoteView, 0)
	for rows.Next() {
		var (
			note      ReservationNoteView
			createdBy pgtype.Int8
		)
		if err := rows.Scan(&note.ID, &note.Note, &createdBy, &note.CreatedAt); err != nil {
			continue
		}
		if createdBy.Valid {
			note.CreatedBy = &createdBy.Int64
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (h *Handler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	h.reservationTransition(w, r, h.Services.Reservations.Confirm, "Reservation confirmed")
}

func (h *Handler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	h.reservationTransition(w, r, h.Services.Reservations.Complete, "Reservation completed")
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	h.reservationTransition(w, r, h.Services.Reservations.Cancel, "Reservation cancelled")
}

func (h *Handler) NoShowReservation(w http.ResponseWriter, r *http.Request) {
	h.reservationTransition(w, r, h.Services.Reservations.NoShow, "Reservation marked no-show")
}

func (h *Handler) reservationTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor services.Actor, reservationID int64) error, message string) {
	reservationID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return
	}
	if err := fn(r.Context(), actorFrom(r), reservationID); err != nil {
		h.writeDomainError(w, err, "Failed to update reservation status")
		return
	}
	response.Message(w, message, map[string]any{"reservationId": reservationID})
}

func (h *Handler) SeatReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return
	}
	// body is optional, seating defaults to the reserved table
	var req struct {
		TableID *int64 `json:"tableId"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := h.Services.Reservations.Seat(r.Context(), actorFrom(r), reservationID, req.TableID); err != nil {
		h.writeDomainError(w, err, "Failed to seat reservation")
		return
	}
	response.Message(w, "Party seated", map[string]any{"reservationId": reservationID})
}

func (h *Handler) AddReservationNote(w http.ResponseWriter, r *http.Request) {
	reservationID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Note == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Note is required")
		return
	}
	noteID, err := h.Services.Reservations.AddNote(r.Context(), actorFrom(r), reservationID, req.Note)
	if err != nil {
		h.writeDomainError(w, err, "Failed to add reservation note")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    map[string]any{"id": noteID, "reservationId": reservationID},
	})
}
