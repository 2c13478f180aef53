package services

import (
	"context"
	"time"

	"havens-pos-service/internal/lifecycle"
	"havens-pos-service/internal/queue"

	"github.com/jackc/pgx/v5"
)

type Kitchen struct {
	Deps
}

// StartItem begins preparation of one kitchen display item and propagates
// the aggregate status to the order when every item has started.
func (s *Kitchen) StartItem(ctx context.Context, actor Actor, displayID int64) error {
	return s.itemTransition(ctx, actor, displayID, lifecycle.OrderPreparing, "kitchen.item.started")
}

// CompleteItem marks one item as plated and propagates the aggregate status
// to the order when every item is ready.
func (s *Kitchen) CompleteItem(ctx context.Context, actor Actor, displayID int64) error {
	return s.itemTransition(ctx, actor, displayID, lifecycle.OrderReady, "kitchen.item.completed")
}

func (s *Kitchen) itemTransition(ctx context.Context, actor Actor, displayID int64, to string, action string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the order first so concurrent item updates serialize per order.
	var orderID int64
	err = tx.QueryRow(ctx, `
		select o.id
		from kitchen_displays kd
		join order_items oi on oi.id = kd.order_item_id
		join orders o on o.id = oi.order_id
		where kd.id = $1
		for update of o
	`, displayID).Scan(&orderID)
	if err != nil {
		if isNoRows(err) {
			return lifecycle.NotFound("Kitchen display item")
		}
		return err
	}

	var orderItemID int64
	var itemStatus, orderStatus string
	err = tx.QueryRow(ctx, `
		select oi.id, oi.status, o.status
		from kitchen_displays kd
		join order_items oi on oi.id = kd.order_item_id
		join orders o on o.id = oi.order_id
		where kd.id = $1
		for update of oi
	`, displayID).Scan(&orderItemID, &itemStatus, &orderStatus)
	if err != nil {
		return err
	}

	if lcErr := lifecycle.ValidateKitchenItemTransition(itemStatus, to); lcErr != nil {
		return lcErr
	}

	now := time.Now()
	if to == lifecycle.OrderPreparing {
		if _, err := tx.Exec(ctx, `
			update kitchen_displays set started_at = $1, assigned_to_user_id = coalesce(assigned_to_user_id, $2) where id = $3
		`, now, nullableActor(actor), displayID); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx, `
			update kitchen_displays set completed_at = $1 where id = $2
		`, now, displayID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		update order_items set status = $1, updated_at = $2 where id = $3
	`, to, now, orderItemID); err != nil {
		return err
	}

	if err := propagateOrderStatus(ctx, tx, orderID, orderStatus, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, action, queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      action,
		Entity:      "kitchen_display",
		EntityID:    displayID,
		Description: "Kitchen item moved to " + to,
	})
	return nil
}

// propagateOrderStatus applies the derived item-aggregate status. Orders with
// no items are left untouched.
func propagateOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, orderStatus string, now time.Time) error {
	rows, err := tx.Query(ctx, `select status from order_items where order_id = $1`, orderID)
	if err != nil {
		return err
	}
	statuses := make([]string, 0, 8)
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			rows.Close()
			return err
		}
		statuses = append(statuses, status)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	derived, changed := lifecycle.OrderStatusFromItems(orderStatus, statuses)
	if !changed {
		return nil
	}

	_, err = tx.Exec(ctx, `
		update orders set status = $1, updated_at = $2 where id = $3
	`, derived, now, orderID)
	return err
}
