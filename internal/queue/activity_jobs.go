package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	EventsExchange = "pos.events"
	ActivityQueue  = "pos.activity"
)

// ActivityEvent is the audit side-channel payload published on every create
// and major lifecycle transition. Delivery is best-effort: a publish or
// persist failure never fails the transition that produced it.
type ActivityEvent struct {
	UserID      int64     `json:"userId"`
	Action      string    `json:"action"`
	Entity      string    `json:"entity"`
	EntityID    int64     `json:"entityId"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func EnsureActivityTopology(ctx context.Context, qc *Client) error {
	if qc == nil {
		return nil
	}
	if err := qc.EnsureExchange(EventsExchange); err != nil {
		return err
	}
	if _, err := qc.EnsureQueue(ActivityQueue); err != nil {
		return err
	}
	// '#' matches multi-segment routing keys like 'order.status.updated'
	return qc.BindQueue(ActivityQueue, EventsExchange, "#")
}

// PersistActivityEvent writes one user_activities row for a consumed event.
func PersistActivityEvent(ctx context.Context, db *pgxpool.Pool, body []byte) error {
	var event ActivityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// malformed payloads are dropped, not retried
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	_, err := db.Exec(ctx, `
		insert into user_activities (user_id, action, entity, entity_id, description, created_at)
		values ($1, $2, $3, $4, $5, $6)
	`, nullableID(event.UserID), event.Action, event.Entity, event.EntityID, event.Description, event.OccurredAt)
	return err
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}
