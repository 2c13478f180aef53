package services

import (
	"context"
	"fmt"
	"time"

	"havens-pos-service/internal/lifecycle"
	"havens-pos-service/internal/queue"
)

type Rooms struct {
	Deps
}

// SetStatus force-sets a room's status (front-desk override).
func (s *Rooms) SetStatus(ctx context.Context, actor Actor, roomID int64, status string) error {
	if !lifecycle.ValidRoomStatus(status) {
		return lifecycle.ValidationError("Invalid room status")
	}

	tag, err := s.DB.Exec(ctx, `update rooms set status = $1, updated_at = now() where id = $2`, status, roomID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.NotFound("Room")
	}

	s.recordActivity(ctx, "room.status.updated", queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "room.status.updated",
		Entity:      "room",
		EntityID:    roomID,
		Description: "Room status set to " + status,
	})
	return nil
}

// MarkCleaned returns a cleaning room to service.
func (s *Rooms) MarkCleaned(ctx context.Context, actor Actor, roomID int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, `select status from rooms where id = $1 for update`, roomID).Scan(&status)
	if err != nil {
		if isNoRows(err) {
			return lifecycle.NotFound("Room")
		}
		return err
	}
	if status != lifecycle.RoomCleaning {
		return lifecycle.ValidationError("Room is not being cleaned")
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update rooms set status = $1, last_cleaned = $2, updated_at = $2 where id = $3
	`, lifecycle.RoomAvailable, now, roomID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, "room.cleaned", queue.ActivityEvent{
		UserID:   actor.UserID,
		Action:   "room.cleaned",
		Entity:   "room",
		EntityID: roomID,
	})
	return nil
}

type MaintenanceParams struct {
	MaintenanceType   string
	Title             string
	Description       string
	ScheduledDate     time.Time
	EstimatedDuration int32
	Priority          int32
	EstimatedCost     float64
	AssignedToUserID  *int64
}

var maintenanceTypes = map[string]bool{
	"preventive":    true,
	"corrective":    true,
	"emergency":     true,
	"deep_cleaning": true,
	"renovation":    true,
}

// ScheduleMaintenance records a maintenance job; work scheduled for today or
// earlier takes the room out of service immediately.
func (s *Rooms) ScheduleMaintenance(ctx context.Context, actor Actor, roomID int64, params MaintenanceParams) (int64, error) {
	if !maintenanceTypes[params.MaintenanceType] {
		return 0, lifecycle.ValidationError("Invalid maintenance type")
	}
	if params.Title == "" {
		return 0, lifecycle.ValidationError("Title is required")
	}
	if params.Priority < 1 || params.Priority > 5 {
		return 0, lifecycle.ValidationError("Priority must be between 1 and 5")
	}
	if params.EstimatedDuration < 1 {
		return 0, lifecycle.ValidationError("Estimated duration must be at least 1 hour")
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `select exists(select 1 from rooms where id = $1)`, roomID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, lifecycle.NotFound("Room")
	}

	var maintenanceID int64
	err = tx.QueryRow(ctx, `
		insert into room_maintenance (
			room_id, maintenance_type, title, description,
			scheduled_date, estimated_duration, status, priority,
			estimated_cost, assigned_to_user_id, created_by_user_id
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		returning id
	`, roomID, params.MaintenanceType, params.Title, params.Description,
		params.ScheduledDate, params.EstimatedDuration, lifecycle.MaintenanceScheduled, params.Priority,
		params.EstimatedCost, params.AssignedToUserID, nullableActor(actor),
	).Scan(&maintenanceID)
	if err != nil {
		return 0, err
	}

	if !params.ScheduledDate.After(time.Now()) {
		if _, err := tx.Exec(ctx, `
			update rooms set status = $1, updated_at = now() where id = $2
		`, lifecycle.RoomMaintenance, roomID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	s.recordActivity(ctx, "room.maintenance.scheduled", queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "room.maintenance.scheduled",
		Entity:      "room_maintenance",
		EntityID:    maintenanceID,
		Description: fmt.Sprintf("Scheduled %s: %s", params.MaintenanceType, params.Title),
	})
	return maintenanceID, nil
}

func (s *Rooms) StartMaintenance(ctx context.Context, actor Actor, maintenanceID int64) error {
	return s.maintenanceTransition(ctx, actor, maintenanceID, lifecycle.MaintenanceInProgress, nil)
}

// CompleteMaintenance closes the job; the room lands in cleaning so
// housekeeping runs before it is reused.
func (s *Rooms) CompleteMaintenance(ctx context.Context, actor Actor, maintenanceID int64, actualCost *float64) error {
	if actualCost != nil && *actualCost < 0 {
		return lifecycle.ValidationError("Actual cost must be non-negative")
	}
	return s.maintenanceTransition(ctx, actor, maintenanceID, lifecycle.MaintenanceCompleted, actualCost)
}

func (s *Rooms) CancelMaintenance(ctx context.Context, actor Actor, maintenanceID int64) error {
	return s.maintenanceTransition(ctx, actor, maintenanceID, lifecycle.MaintenanceCancelled, nil)
}

func (s *Rooms) maintenanceTransition(ctx context.Context, actor Actor, maintenanceID int64, to string, actualCost *float64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	var roomID int64
	err = tx.QueryRow(ctx, `
		select status, room_id from room_maintenance where id = $1 for update
	`, maintenanceID).Scan(&status, &roomID)
	if err != nil {
		if isNoRows(err) {
			return lifecycle.NotFound("Maintenance record")
		}
		return err
	}

	if lcErr := lifecycle.ValidateMaintenanceTransition(status, to); lcErr != nil {
		return lcErr
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update room_maintenance
		set status = $1,
			started_at = case when $1 = 'in_progress' then $2 else started_at end,
			completed_at = case when $1 = 'completed' then $2 else completed_at end,
			actual_cost = coalesce($3, actual_cost)
		where id = $4
	`, to, now, actualCost, maintenanceID); err != nil {
		return err
	}

	if next := lifecycle.MaintenanceRoomStatus(to); next != "" {
		if _, err := tx.Exec(ctx, `update rooms set status = $1, updated_at = $2 where id = $3`, next, now, roomID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, "room.maintenance."+to, queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "room.maintenance." + to,
		Entity:      "room_maintenance",
		EntityID:    maintenanceID,
		Description: "Maintenance moved to " + to,
	})
	return nil
}
