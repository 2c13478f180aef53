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

type Orders struct {
	Deps
}

type OrderAddOnParams struct {
	AddOnID  int64
	Quantity int32
}

type OrderItemParams struct {
	MenuItemID          int64
	Quantity            int32
	SpecialInstructions string
	AddOns              []OrderAddOnParams
}

type CreateOrderParams struct {
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       string
	TableID             *int64
	OrderType           string
	SpecialInstructions string
	TaxAmount           float64
	// DefaultTaxRate is applied against the computed subtotal when no
	// explicit TaxAmount is given.
	DefaultTaxRate float64
	DiscountAmount float64
	Items          []OrderItemParams
}

// Create inserts a pending order with price-snapshot line items and marks the
// table occupied for dine-in orders.
func (s *Orders) Create(ctx context.Context, actor Actor, params CreateOrderParams) (int64, string, error) {
	if !lifecycle.ValidOrderType(params.OrderType) {
		return 0, "", lifecycle.ValidationError("Invalid order type")
	}
	if params.TaxAmount < 0 || params.DiscountAmount < 0 {
		return 0, "", lifecycle.ValidationError("Tax and discount must be non-negative")
	}
	for _, item := range params.Items {
		if item.Quantity < 1 {
			return 0, "", lifecycle.ValidationError("Item quantity must be at least 1")
		}
		for _, addon := range item.AddOns {
			if addon.Quantity < 1 {
				return 0, "", lifecycle.ValidationError("Add-on quantity must be at least 1")
			}
		}
	}
	if params.OrderType != lifecycle.OrderTypeDineIn && params.TableID != nil {
		return 0, "", lifecycle.ValidationError("Only dine-in orders take a table")
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()

	// lock the table row so occupancy updates serialize with transitions;
	// sharing a table across orders is allowed, so occupancy is not checked
	if params.TableID != nil {
		var tableID int64
		err := tx.QueryRow(ctx, `
			select id from tables where id = $1 and is_active for update
		`, *params.TableID).Scan(&tableID)
		if err != nil {
			if isNoRows(err) {
				return 0, "", lifecycle.NotFound("Table")
			}
			return 0, "", err
		}
	}

	orderID, orderNumber, err := s.insertOrder(ctx, tx, now, actor, params)
	if err != nil {
		return 0, "", err
	}

	for _, item := range params.Items {
		if err := s.insertItem(ctx, tx, orderID, item); err != nil {
			return 0, "", err
		}
	}

	if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
		return 0, "", err
	}

	if params.TaxAmount == 0 && params.DefaultTaxRate > 0 {
		var subtotal pgtype.Numeric
		if err := tx.QueryRow(ctx, `select subtotal from orders where id = $1`, orderID).Scan(&subtotal); err != nil {
			return 0, "", err
		}
		tax := billing.Round2(utils.NumericToFloat64(subtotal) * params.DefaultTaxRate)
		if _, err := tx.Exec(ctx, `update orders set tax_amount = $1 where id = $2`, tax, orderID); err != nil {
			return 0, "", err
		}
		if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
			return 0, "", err
		}
	}

	if params.OrderType == lifecycle.OrderTypeDineIn && params.TableID != nil {
		if _, err := tx.Exec(ctx, `update tables set is_occupied = true where id = $1`, *params.TableID); err != nil {
			return 0, "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, "", err
	}

	s.recordActivity(ctx, "order.created", queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "order.created",
		Entity:      "order",
		EntityID:    orderID,
		Description: fmt.Sprintf("Created order %s (%s)", orderNumber, params.OrderType),
	})
	return orderID, orderNumber, nil
}

func (s *Orders) insertOrder(ctx context.Context, tx pgx.Tx, now time.Time, actor Actor, params CreateOrderParams) (int64, string, error) {
	var orderID int64
	orderNumber, err := insertNumbered(ctx, tx, OrderNumberPrefix, now, func(sp pgx.Tx, number string) error {
		return sp.QueryRow(ctx, `
			insert into orders (
				order_number, customer_name, customer_phone, customer_email,
				table_id, order_type, status,
				subtotal, tax_amount, discount_amount, total_amount,
				special_instructions, server_user_id, created_at, updated_at
			) values ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, 0, $10, $11, $12, $12)
			returning id
		`,
			number, params.CustomerName, params.CustomerPhone, params.CustomerEmail,
			params.TableID, params.OrderType, lifecycle.OrderPending,
			params.TaxAmount, params.DiscountAmount,
			params.SpecialInstructions, nullableActor(actor), now,
		).Scan(&orderID)
	})
	if err != nil {
		return 0, "", err
	}
	return orderID, orderNumber, nil
}

func (s *Orders) insertItem(ctx context.Context, tx pgx.Tx, orderID int64, item OrderItemParams) error {
	// snapshot the menu price at creation time
	var price pgtype.Numeric
	err := tx.QueryRow(ctx, `select price from menu_items where id = $1`, item.MenuItemID).Scan(&price)
	if err != nil {
		if isNoRows(err) {
			return lifecycle.NotFound("Menu item")
		}
		return err
	}
	unitPrice := utils.NumericToFloat64(price)

	var itemID int64
	err = tx.QueryRow(ctx, `
		insert into order_items (order_id, menu_item_id, quantity, unit_price, subtotal, special_instructions, status)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id
	`, orderID, item.MenuItemID, item.Quantity, unitPrice,
		billing.LineSubtotal(item.Quantity, unitPrice), item.SpecialInstructions, lifecycle.OrderPending,
	).Scan(&itemID)
	if err != nil {
		return err
	}

	for _, addon := range item.AddOns {
		var addonPrice pgtype.Numeric
		err := tx.QueryRow(ctx, `select price from menu_item_addons where id = $1`, addon.AddOnID).Scan(&addonPrice)
		if err != nil {
			if isNoRows(err) {
				return lifecycle.NotFound("Add-on")
			}
			return err
		}
		unit := utils.NumericToFloat64(addonPrice)
		_, err = tx.Exec(ctx, `
			insert into order_item_addons (order_item_id, addon_id, quantity, unit_price, subtotal)
			values ($1, $2, $3, $4, $5)
		`, itemID, addon.AddOnID, addon.Quantity, unit, billing.LineSubtotal(addon.Quantity, unit))
		if err != nil {
			return err
		}
	}
	return nil
}

// AddItem appends a line to a pending order and recomputes its totals.
func (s *Orders) AddItem(ctx context.Context, actor Actor, orderID int64, item OrderItemParams) error {
	if item.Quantity < 1 {
		return lifecycle.ValidationError("Item quantity must be at least 1")
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if status != lifecycle.OrderPending {
		return lifecycle.ValidationError("Items can only be changed while the order is pending")
	}

	if err := s.insertItem(ctx, tx, orderID, item); err != nil {
		return err
	}
	if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateItemQuantity changes a line's quantity; the line subtotal and order
// totals are recomputed in the same transaction.
func (s *Orders) UpdateItemQuantity(ctx context.Context, actor Actor, orderID, itemID int64, quantity int32) error {
	if quantity < 1 {
		return lifecycle.ValidationError("Item quantity must be at least 1")
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if status != lifecycle.OrderPending {
		return lifecycle.ValidationError("Items can only be changed while the order is pending")
	}

	var unitPrice pgtype.Numeric
	err = tx.QueryRow(ctx, `
		select unit_price from order_items where id = $1 and order_id = $2
	`, itemID, orderID).Scan(&unitPrice)
	if err != nil {
		if isNoRows(err) {
			return lifecycle.NotFound("Order item")
		}
		return err
	}

	subtotal := billing.LineSubtotal(quantity, utils.NumericToFloat64(unitPrice))
	if _, err := tx.Exec(ctx, `
		update order_items set quantity = $1, subtotal = $2, updated_at = now() where id = $3
	`, quantity, subtotal, itemID); err != nil {
		return err
	}

	if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RemoveItem deletes a line (add-ons cascade) and recomputes totals.
func (s *Orders) RemoveItem(ctx context.Context, actor Actor, orderID, itemID int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if status != lifecycle.OrderPending {
		return lifecycle.ValidationError("Items can only be changed while the order is pending")
	}

	tag, err := tx.Exec(ctx, `delete from order_items where id = $1 and order_id = $2`, itemID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.NotFound("Order item")
	}

	if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetCharges updates tax/discount and recomputes totals.
func (s *Orders) SetCharges(ctx context.Context, actor Actor, orderID int64, tax, discount float64) error {
	if tax < 0 || discount < 0 {
		return lifecycle.ValidationError("Tax and discount must be non-negative")
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := lockOrder(ctx, tx, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		update orders set tax_amount = $1, discount_amount = $2, updated_at = now() where id = $3
	`, tax, discount, orderID); err != nil {
		return err
	}
	if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Confirm sends a pending order to the kitchen: one kitchen display row per
// item with estimated completion derived from the menu preparation time.
func (s *Orders) Confirm(ctx context.Context, actor Actor, orderID int64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if lcErr := lifecycle.ValidateOrderTransition(status, lifecycle.OrderConfirmed); lcErr != nil {
		return lcErr
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update orders set status = $1, confirmed_at = $2, updated_at = $2 where id = $3
	`, lifecycle.OrderConfirmed, now, orderID); err != nil {
		return err
	}

	type displaySeed struct {
		itemID  int64
		station string
		prep    int32
	}
	rows, err := tx.Query(ctx, `
		select oi.id, mi.station, mi.preparation_time
		from order_items oi
		join menu_items mi on mi.id = oi.menu_item_id
		where oi.order_id = $1
		order by oi.id
	`, orderID)
	if err != nil {
		return err
	}
	var seeds []displaySeed
	for rows.Next() {
		var seed displaySeed
		if err := rows.Scan(&seed.itemID, &seed.station, &seed.prep); err != nil {
			rows.Close()
			return err
		}
		seeds = append(seeds, seed)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// one display per item, promised at confirm time plus the prep window
	for _, seed := range seeds {
		if _, err := tx.Exec(ctx, `
			insert into kitchen_displays (order_item_id, station, priority, estimated_completion)
			values ($1, $2, 1, $3)
		`, seed.itemID, lifecycle.KitchenStation(seed.station),
			lifecycle.KitchenEstimatedCompletion(now, seed.prep)); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, "order.confirmed", queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "order.confirmed",
		Entity:      "order",
		EntityID:    orderID,
		Description: "Order confirmed and sent to kitchen",
	})
	return nil
}

// Cancel voids a non-served order and frees the table for dine-in.
func (s *Orders) Cancel(ctx context.Context, actor Actor, orderID int64) error {
	return s.transition(ctx, actor, orderID, lifecycle.OrderCancelled, "order.cancelled", "Order cancelled")
}

// Serve marks a preparing or ready order as served.
func (s *Orders) Serve(ctx context.Context, actor Actor, orderID int64) error {
	return s.transition(ctx, actor, orderID, lifecycle.OrderServed, "order.served", "Order served")
}

// Complete closes a served order and frees the table for dine-in.
func (s *Orders) Complete(ctx context.Context, actor Actor, orderID int64) error {
	return s.transition(ctx, actor, orderID, lifecycle.OrderCompleted, "order.completed", "Order completed")
}

func (s *Orders) transition(ctx context.Context, actor Actor, orderID int64, to string, action, description string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status, orderType string
	var tableID pgtype.Int8
	err = tx.QueryRow(ctx, `
		select status, order_type, table_id from orders where id = $1 for update
	`, orderID).Scan(&status, &orderType, &tableID)
	if err != nil {
		if isNoRows(err) {
			return lifecycle.NotFound("Order")
		}
		return err
	}

	if lcErr := lifecycle.ValidateOrderTransition(status, to); lcErr != nil {
		return lcErr
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		update orders
		set status = $1,
			updated_at = $2,
			served_at = case when $1 = 'served' then $2 else served_at end,
			completed_at = case when $1 = 'completed' then $2 else completed_at end
		where id = $3
	`, to, now, orderID); err != nil {
		return err
	}

	freesTable := to == lifecycle.OrderCancelled || to == lifecycle.OrderCompleted
	if freesTable && orderType == lifecycle.OrderTypeDineIn && tableID.Valid {
		if _, err := tx.Exec(ctx, `update tables set is_occupied = false where id = $1`, tableID.Int64); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.recordActivity(ctx, action, queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      action,
		Entity:      "order",
		EntityID:    orderID,
		Description: description,
	})
	return nil
}

type PaymentParams struct {
	Amount          float64
	Method          string
	Status          string
	TransactionID   string
	ReferenceNumber string
	CardLastFour    string
}

var paymentMethods = map[string]bool{
	"cash":           true,
	"card":           true,
	"digital_wallet": true,
	"bank_transfer":  true,
	"loyalty_points": true,
}

var paymentStatuses = map[string]bool{
	"pending":    true,
	"processing": true,
	"completed":  true,
	"failed":     true,
	"refunded":   true,
}

// AddPayment records a payment against an order. Payment state is deliberately
// independent of the order status.
func (s *Orders) AddPayment(ctx context.Context, actor Actor, orderID int64, params PaymentParams) (int64, error) {
	if params.Amount <= 0 {
		return 0, lifecycle.ValidationError("Payment amount must be positive")
	}
	if !paymentMethods[params.Method] {
		return 0, lifecycle.ValidationError("Invalid payment method")
	}
	if params.Status == "" {
		params.Status = "pending"
	}
	if !paymentStatuses[params.Status] {
		return 0, lifecycle.ValidationError("Invalid payment status")
	}

	var exists bool
	if err := s.DB.QueryRow(ctx, `select exists(select 1 from orders where id = $1)`, orderID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, lifecycle.NotFound("Order")
	}

	var paymentID int64
	err := s.DB.QueryRow(ctx, `
		insert into payments (order_id, amount, payment_method, status, transaction_id, reference_number, card_last_four, processed_by_user_id, processed_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, now())
		returning id
	`, orderID, params.Amount, params.Method, params.Status,
		params.TransactionID, params.ReferenceNumber, params.CardLastFour, nullableActor(actor),
	).Scan(&paymentID)
	if err != nil {
		return 0, err
	}

	s.recordActivity(ctx, "order.payment.added", queue.ActivityEvent{
		UserID:      actor.UserID,
		Action:      "order.payment.added",
		Entity:      "payment",
		EntityID:    paymentID,
		Description: fmt.Sprintf("Payment of %.2f by %s", params.Amount, params.Method),
	})
	return paymentID, nil
}

func lockOrder(ctx context.Context, tx pgx.Tx, orderID int64) (string, error) {
	var status string
	err := tx.QueryRow(ctx, `select status from orders where id = $1 for update`, orderID).Scan(&status)
	if err != nil {
		if isNoRows(err) {
			return "", lifecycle.NotFound("Order")
		}
		return "", err
	}
	return status, nil
}

// recomputeOrderTotals re-derives the cached money fields from line state.
// Invoked inside the same transaction as every item or charge mutation.
func recomputeOrderTotals(ctx context.Context, tx pgx.Tx, orderID int64) error {
	rows, err := tx.Query(ctx, `select subtotal from order_items where order_id = $1`, orderID)
	if err != nil {
		return err
	}
	lines := make([]float64, 0, 8)
	for rows.Next() {
		var value pgtype.Numeric
		if err := rows.Scan(&value); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, utils.NumericToFloat64(value))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	var tax, discount pgtype.Numeric
	if err := tx.QueryRow(ctx, `
		select tax_amount, discount_amount from orders where id = $1
	`, orderID).Scan(&tax, &discount); err != nil {
		return err
	}

	subtotal, total := billing.OrderTotals(lines, utils.NumericToFloat64(tax), utils.NumericToFloat64(discount))
	_, err = tx.Exec(ctx, `
		update orders set subtotal = $1, total_amount = $2, updated_at = now() where id = $3
	`, subtotal, total, orderID)
	return err
}

func nullableActor(actor Actor) any {
	if actor.UserID <= 0 {
		return nil
	}
	return actor.UserID
}
