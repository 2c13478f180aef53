package handlers

import (
	"context"
	"net/http"
	"time"

	"havens-pos-service/internal/services"
	"havens-pos-service/internal/utils"
	"havens-pos-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type createBookingRequest struct {
	CustomerID        int64   `json:"customerId"`
	RoomID            int64   `json:"roomId"`
	CheckInDate       string  `json:"checkInDate"`
	CheckOutDate      string  `json:"checkOutDate"`
	Adults            int32   `json:"adults"`
	Children          int32   `json:"children"`
	RoomRate          float64 `json:"roomRate"`
	TaxAmount         float64 `json:"taxAmount"`
	AdditionalCharges float64 `json:"additionalCharges"`
	DiscountAmount    float64 `json:"discountAmount"`
	Source            string  `json:"source"`
	SpecialRequests   string  `json:"specialRequests"`
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	checkIn, err := time.Parse("2006-01-02", req.CheckInDate)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid checkInDate")
		return
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOutDate)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid checkOutDate")
		return
	}

	bookingID, bookingNumber, err := h.Services.Bookings.Create(r.Context(), actorFrom(r), services.CreateBookingParams{
		CustomerID:        req.CustomerID,
		RoomID:            req.RoomID,
		CheckInDate:       checkIn,
		CheckOutDate:      checkOut,
		Adults:            req.Adults,
		Children:          req.Children,
		RoomRate:          req.RoomRate,
		TaxAmount:         req.TaxAmount,
		AdditionalCharges: req.AdditionalCharges,
		DiscountAmount:    req.DiscountAmount,
		Source:            req.Source,
		SpecialRequests:   req.SpecialRequests,
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to create booking")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data": map[string]any{
			"id":            bookingID,
			"bookingNumber": bookingNumber,
		},
	})
}

const bookingSelectSQL = `
	select
		b.id, b.booking_number, b.customer_id, c.first_name || ' ' || c.last_name,
		b.room_id, rm.number,
		b.check_in_date, b.check_out_date, b.nights, b.adults, b.children,
		b.room_rate, b.total_room_charges, b.tax_amount, b.additional_charges,
		b.discount_amount, b.total_amount,
		b.status, b.source, b.checked_in_at, b.checked_out_at, b.created_at
	from room_bookings b
	join customers c on c.id = b.customer_id
	join rooms rm on rm.id = b.room_id
`

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	row := h.DB.QueryRow(ctx, bookingSelectSQL+` where b.id = $1`, bookingID)
	view, err := scanBookingRow(row)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		return
	}

	bookingServices, err := h.loadBookingServices(ctx, bookingID)
	if err != nil {
		h.Logger.Error("failed to load booking services", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve booking")
		return
	}
	view.Services = bookingServices
	response.Success(w, view)
}

// ArrivalsToday lists bookings due to check in today.
func (h *Handler) ArrivalsToday(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, `
		where b.check_in_date = current_date and b.status in ('pending', 'confirmed')
		order by b.created_at asc
	`)
}

// DeparturesToday lists in-house bookings due to check out today.
func (h *Handler) DeparturesToday(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, `
		where b.check_out_date = current_date and b.status = 'checked_in'
		order by b.created_at asc
	`)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request, clause string) {
	rows, err := h.DB.Query(r.Context(), bookingSelectSQL+clause)
	if err != nil {
		h.Logger.Error("failed to list bookings", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve bookings")
		return
	}
	defer rows.Close()

	bookings := make([]BookingView, 0)
	for rows.Next() {
		view, err := scanBookingRow(rows)
		if err != nil {
			continue
		}
		bookings = append(bookings, view)
	}
	response.Success(w, bookings)
}

func scanBookingRow(row orderRowScanner) (BookingView, error) {
	var (
		view         BookingView
		checkInDate  time.Time
		checkOutDate time.Time
		roomRate     pgtype.Numeric
		roomCharges  pgtype.Numeric
		tax          pgtype.Numeric
		additional   pgtype.Numeric
		discount     pgtype.Numeric
		total        pgtype.Numeric
		checkedInAt  pgtype.Timestamptz
		checkedOutAt pgtype.Timestamptz
	)
	err := row.Scan(
		&view.ID, &view.BookingNumber, &view.CustomerID, &view.CustomerName,
		&view.RoomID, &view.RoomNumber,
		&checkInDate, &checkOutDate, &view.Nights, &view.Adults, &view.Children,
		&roomRate, &roomCharges, &tax, &additional,
		&discount, &total,
		&view.Status, &view.Source, &checkedInAt, &checkedOutAt, &view.CreatedAt,
	)
	if err != nil {
		return BookingView{}, err
	}
	view.CheckInDate = checkInDate.Format("2006-01-02")
	view.CheckOutDate = checkOutDate.Format("2006-01-02")
	view.RoomRate = utils.NumericToFloat64(roomRate)
	view.TotalRoomCharges = utils.NumericToFloat64(roomCharges)
	view.TaxAmount = utils.NumericToFloat64(tax)
	view.AdditionalCharges = utils.NumericToFloat64(additional)
	view.DiscountAmount = utils.NumericToFloat64(discount)
	view.TotalAmount = utils.NumericToFloat64(total)
	view.CheckedInAt = timePtr(checkedInAt)
	view.CheckedOutAt = timePtr(checkedOutAt)
	return view, nil
}

func (h *Handler) loadBookingServices(ctx context.Context, bookingID int64) ([]RoomServiceView, error) {
	rows, err := h.DB.Query(ctx, `
		select id, service_type, description, priority, charge, status, completed_at
		from room_services
		where booking_id = $1
		order by id asc
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoomServiceView, 0)
	for rows.Next() {
		var (
			s           RoomServiceView
			charge      pgtype.Numeric
			completedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&s.ID, &s.ServiceType, &s.Description, &s.Priority, &charge, &s.Status, &completedAt); err != nil {
			continue
		}
		s.Charge = utils.NumericToFloat64(charge)
		s.CompletedAt = timePtr(completedAt)
		out = append(out, s)
	}
	return out, nil
}

func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	h.bookingTransition(w, r, h.Services.Bookings.Confirm, "Booking confirmed")
}

func (h *Handler) CheckInBooking(w http.ResponseWriter, r *http.Request) {
	h.bookingTransition(w, r, h.Services.Bookings.CheckIn, "Guest checked in")
}

func (h *Handler) CheckOutBooking(w http.ResponseWriter, r *http.Request) {
	h.bookingTransition(w, r, h.Services.Bookings.CheckOut, "Guest checked out")
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.bookingTransition(w, r, h.Services.Bookings.Cancel, "Booking cancelled")
}

func (h *Handler) NoShowBooking(w http.ResponseWriter, r *http.Request) {
	h.bookingTransition(w, r, h.Services.Bookings.NoShow, "Booking marked no-show")
}

func (h *Handler) bookingTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor services.Actor, bookingID int64) error, message string) {
	bookingID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}
	if err := fn(r.Context(), actorFrom(r), bookingID); err != nil {
		h.writeDomainError(w, err, "Failed to update booking status")
		return
	}
	response.Message(w, message, map[string]any{"bookingId": bookingID})
}

type addRoomServiceRequest struct {
	ServiceType string  `json:"serviceType"`
	Description string  `json:"description"`
	Priority    int32   `json:"priority"`
	Charge      float64 `json:"charge"`
}

func (h *Handler) AddBookingService(w http.ResponseWriter, r *http.Request) {
	bookingID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}
	var req addRoomServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	serviceID, err := h.Services.Bookings.AddService(r.Context(), actorFrom(r), bookingID, services.RoomServiceParams{
		ServiceType: req.ServiceType,
		Description: req.Description,
		Priority:    req.Priority,
		Charge:      req.Charge,
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to add room service")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    map[string]any{"id": serviceID, "bookingId": bookingID},
	})
}

func (h *Handler) AssignBookingService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := readPathInt64(r, "serviceId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid service id")
		return
	}
	var req struct {
		AssigneeID int64 `json:"assigneeId"`
	}
	if err := decodeJSON(r, &req); err != nil || req.AssigneeID == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "assigneeId is required")
		return
	}
	if err := h.Services.Bookings.AssignService(r.Context(), actorFrom(r), serviceID, req.AssigneeID); err != nil {
		h.writeDomainError(w, err, "Failed to assign room service")
		return
	}
	response.Message(w, "Service assigned", map[string]any{"serviceId": serviceID})
}

func (h *Handler) CompleteBookingService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := readPathInt64(r, "serviceId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid service id")
		return
	}
	if err := h.Services.Bookings.CompleteService(r.Context(), actorFrom(r), serviceID); err != nil {
		h.writeDomainError(w, err, "Failed to complete room service")
		return
	}
	response.Message(w, "Service completed", map[string]any{"serviceId": serviceID})
}

func (h *Handler) CancelBookingService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := readPathInt64(r, "serviceId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid service id")
		return
	}
	if err := h.Services.Bookings.CancelService(r.Context(), actorFrom(r), serviceID); err != nil {
		h.writeDomainError(w, err, "Failed to cancel room service")
		return
	}
	response.Message(w, "Service cancelled", map[string]any{"serviceId": serviceID})
}
