// Package services applies lifecycle transitions to persisted entities.
// Every transition runs in one transaction that locks the primary row before
// validating, so concurrent callers race on the lock and the loser fails with
// INVALID_TRANSITION instead of double-applying side effects.
package services

import (
	"context"
	"errors"
	"time"

	"havens-pos-service/internal/queue"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Deps struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Queue  *queue.Client
}

type Registry struct {
	Orders       *Orders
	Kitchen      *Kitchen
	Bookings     *Bookings
	Reservations *Reservations
	Rooms        *Rooms
}

func New(db *pgxpool.Pool, logger *zap.Logger, queueClient *queue.Client) *Registry {
	deps := Deps{DB: db, Logger: logger, Queue: queueClient}
	return &Registry{
		Orders:       &Orders{deps},
		Kitchen:      &Kitchen{deps},
		Bookings:     &Bookings{deps},
		Reservations: &Reservations{deps},
		Rooms:        &Rooms{deps},
	}
}

// Actor identifies the staff member driving a transition.
type Actor struct {
	UserID int64
	Name   string
}

// recordActivity emits the audit side-channel event. Failures are logged and
// swallowed: the audit log must never fail or block a committed transition.
func (d Deps) recordActivity(ctx context.Context, routingKey string, event queue.ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if d.Queue != nil {
		if err := d.Queue.PublishJSON(ctx, queue.EventsExchange, routingKey, event); err != nil {
			d.Logger.Warn("activity publish failed", zap.String("action", event.Action), zap.Error(err))
		}
		return
	}

	_, err := d.DB.Exec(ctx, `
		insert into user_activities (user_id, action, entity, entity_id, description, created_at)
		values ($1, $2, $3, $4, $5, $6)
	`, event.UserID, event.Action, event.Entity, event.EntityID, event.Description, event.OccurredAt)
	if err != nil {
		d.Logger.Warn("activity insert failed", zap.String("action", event.Action), zap.Error(err))
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
