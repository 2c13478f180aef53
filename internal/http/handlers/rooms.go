package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"havens-pos-service/internal/lifecycle"
	"havens-pos-service/internal/services"
	"havens-pos-service/internal/utils"
	"havens-pos-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := `
		select id, number, room_type, floor, status, last_cleaned, is_active, max_occupancy, base_price
		from rooms
		where is_active
	`
	var args []any
	if status := r.URL.Query().Get("status"); status != "" {
		if !lifecycle.ValidRoomStatus(status) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown room status")
			return
		}
		query += ` and status = $1`
		args = append(args, status)
	}
	query += ` order by floor asc, number asc`

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		h.Logger.Error("failed to list rooms", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve rooms")
		return
	}
	defer rows.Close()
	h.writeRoomRows(w, rows)
}

// ListAvailableRooms returns rooms free for the requested stay window. With no
// window given it falls back to rooms currently marked available.
func (h *Handler) ListAvailableRooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checkIn := r.URL.Query().Get("checkIn")
	checkOut := r.URL.Query().Get("checkOut")
	if checkIn == "" || checkOut == "" {
		h.listRoomsByStatus(ctx, w, lifecycle.RoomAvailable)
		return
	}

	checkInDate, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid checkIn date")
		return
	}
	checkOutDate, err := time.Parse("2006-01-02", checkOut)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid checkOut date")
		return
	}
	if !checkOutDate.After(checkInDate) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "checkOut must be after checkIn")
		return
	}

	rows, err := h.DB.Query(ctx, `
		select r.id, r.number, r.room_type, r.floor, r.status, r.last_cleaned, r.is_active, r.max_occupancy, r.base_price
		from rooms r
		where r.is_active
		  and r.status not in ('maintenance', 'out_of_order')
		  and not exists (
			select 1 from room_bookings b
			where b.room_id = r.id
			  and b.status in ('pending', 'confirmed', 'checked_in')
			  and b.check_in_date < $2
			  and b.check_out_date > $1
		  )
		order by r.floor asc, r.number asc
	`, checkInDate, checkOutDate)
	if err != nil {
		h.Logger.Error("failed to list available rooms", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve rooms")
		return
	}
	defer rows.Close()

	h.writeRoomRows(w, rows)
}

func (h *Handler) listRoomsByStatus(ctx context.Context, w http.ResponseWriter, status string) {
	rows, err := h.DB.Query(ctx, `
		select id, number, room_type, floor, status, last_cleaned, is_active, max_occupancy, base_price
		from rooms
		where is_active and status = $1
		order by floor asc, number asc
	`, status)
	if err != nil {
		h.Logger.Error("failed to list rooms", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve rooms")
		return
	}
	defer rows.Close()
	h.writeRoomRows(w, rows)
}

type roomRows interface {
	Next() bool
	Scan(dest ...any) error
}

func (h *Handler) writeRoomRows(w http.ResponseWriter, rows roomRows) {
	rooms := make([]RoomView, 0)
	for rows.Next() {
		var (
			room        RoomView
			lastCleaned pgtype.Timestamptz
			basePrice   pgtype.Numeric
		)
		if err := rows.Scan(
			&room.ID, &room.Number, &room.RoomType, &room.Floor, &room.Status,
			&lastCleaned, &room.IsActive, &room.MaxOccupancy, &basePrice,
		); err != nil {
			continue
		}
		room.LastCleaned = timePtr(lastCleaned)
		room.BasePrice = utils.NumericToFloat64(basePrice)
		rooms = append(rooms, room)
	}
	response.Success(w, rooms)
}

func (h *Handler) SetRoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := h.Services.Rooms.SetStatus(r.Context(), actorFrom(r), roomID, req.Status); err != nil {
		h.writeDomainError(w, err, "Failed to update room status")
		return
	}
	response.Message(w, "Room status updated", map[string]any{"id": roomID, "status": req.Status})
}

func (h *Handler) MarkRoomCleaned(w http.ResponseWriter, r *http.Request) {
	roomID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room id")
		return
	}
	if err := h.Services.Rooms.MarkCleaned(r.Context(), actorFrom(r), roomID); err != nil {
		h.writeDomainError(w, err, "Failed to mark room cleaned")
		return
	}
	response.Message(w, "Room cleaned", map[string]any{"id": roomID, "status": lifecycle.RoomAvailable})
}

type scheduleMaintenanceRequest struct {
	MaintenanceType   string    `json:"maintenanceType"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ScheduledDate     time.Time `json:"scheduledDate"`
	EstimatedDuration int32     `json:"estimatedDurationMinutes"`
	Priority          int32     `json:"priority"`
	EstimatedCost     float64   `json:"estimatedCost"`
	AssignedToUserID  *int64    `json:"assignedToUserId"`
}

func (h *Handler) ScheduleRoomMaintenance(w http.ResponseWriter, r *http.Request) {
	roomID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room id")
		return
	}
	var req scheduleMaintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	maintenanceID, err := h.Services.Rooms.ScheduleMaintenance(r.Context(), actorFrom(r), roomID, services.MaintenanceParams{
		MaintenanceType:   req.MaintenanceType,
		Title:             req.Title,
		Description:       req.Description,
		ScheduledDate:     req.ScheduledDate,
		EstimatedDuration: req.EstimatedDuration,
		Priority:          req.Priority,
		EstimatedCost:     req.EstimatedCost,
		AssignedToUserID:  req.AssignedToUserID,
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to schedule maintenance")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    map[string]any{"id": maintenanceID, "roomId": roomID},
	})
}

func (h *Handler) StartRoomMaintenance(w http.ResponseWriter, r *http.Request) {
	maintenanceID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid maintenance id")
		return
	}
	if err := h.Services.Rooms.StartMaintenance(r.Context(), actorFrom(r), maintenanceID); err != nil {
		h.writeDomainError(w, err, "Failed to start maintenance")
		return
	}
	response.Message(w, "Maintenance started", map[string]any{"id": maintenanceID})
}

func (h *Handler) CompleteRoomMaintenance(w http.ResponseWriter, r *http.Request) {
	maintenanceID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid maintenance id")
		return
	}
	// body is optional, actual cost may be reported later
	var req struct {
		ActualCost *float64 `json:"actualCost"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := h.Services.Rooms.CompleteMaintenance(r.Context(), actorFrom(r), maintenanceID, req.ActualCost); err != nil {
		h.writeDomainError(w, err, "Failed to complete maintenance")
		return
	}
	response.Message(w, "Maintenance completed", map[string]any{"id": maintenanceID})
}

func (h *Handler) CancelRoomMaintenance(w http.ResponseWriter, r *http.Request) {
	maintenanceID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid maintenance id")
		return
	}
	if err := h.Services.Rooms.CancelMaintenance(r.Context(), actorFrom(r), maintenanceID); err != nil {
		h.writeDomainError(w, err, "Failed to cancel maintenance")
		return
	}
	response.Message(w, "Maintenance cancelled", map[string]any{"id": maintenanceID})
}
