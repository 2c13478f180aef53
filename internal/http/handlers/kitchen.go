package handlers

import (
	"net/http"
	"time"

	"havens-pos-service/internal/lifecycle"
	"havens-pos-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

const kitchenQueueSQL = `
	select
		kd.id, kd.order_item_id, o.order_number, mi.name,
		oi.quantity, oi.status, kd.station, kd.priority,
		kd.estimated_completion, kd.started_at, kd.completed_at,
		t.number
	from kitchen_displays kd
	join order_items oi on oi.id = kd.order_item_id
	join orders o on o.id = oi.order_id
	join menu_items mi on mi.id = oi.menu_item_id
	left join tables t on t.id = o.table_id
`

// KitchenQueue returns the pending and in-progress kitchen tickets, oldest
// estimate first. Station can be narrowed via ?station=.
func (h *Handler) KitchenQueue(w http.ResponseWriter, r *http.Request) {
	query := kitchenQueueSQL + `
		where oi.status in ($1, $2) and o.status not in ('completed', 'cancelled')
	`
	args := []any{lifecycle.OrderPending, lifecycle.OrderPreparing}
	if station := r.URL.Query().Get("station"); station != "" {
		query += ` and kd.station = $3`
		args = append(args, station)
	}
	query += ` order by kd.priority desc, kd.estimated_completion asc`

	h.writeKitchenRows(w, r, query, args)
}

// KitchenOverdue lists tickets past their estimated completion that are not
// done yet. Overdue is derived at read time, never stored.
func (h *Handler) KitchenOverdue(w http.ResponseWriter, r *http.Request) {
	query := kitchenQueueSQL + `
		where oi.status in ($1, $2)
		  and o.status not in ('completed', 'cancelled')
		  and kd.estimated_completion < $3
		order by kd.estimated_completion asc
	`
	h.writeKitchenRows(w, r, query, []any{lifecycle.OrderPending, lifecycle.OrderPreparing, time.Now()})
}

func (h *Handler) writeKitchenRows(w http.ResponseWriter, r *http.Request, query string, args []any) {
	rows, err := h.DB.Query(r.Context(), query, args...)
	if err != nil {
		h.Logger.Error("failed to query kitchen displays", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve kitchen queue")
		return
	}
	defer rows.Close()

	now := time.Now()
	displays := make([]KitchenDisplayView, 0)
	for rows.Next() {
		var (
			d           KitchenDisplayView
			startedAt   pgtype.Timestamptz
			completedAt pgtype.Timestamptz
			tableNumber pgtype.Text
		)
		if err := rows.Scan(
			&d.ID, &d.OrderItemID, &d.OrderNumber, &d.MenuItemName,
			&d.Quantity, &d.ItemStatus, &d.Station, &d.Priority,
			&d.EstimatedCompletion, &startedAt, &completedAt,
			&tableNumber,
		); err != nil {
			continue
		}
		d.StartedAt = timePtr(startedAt)
		d.CompletedAt = timePtr(completedAt)
		d.TableNumber = textPtr(tableNumber)
		d.IsOverdue = d.ItemStatus != lifecycle.OrderReady && now.After(d.EstimatedCompletion)
		displays = append(displays, d)
	}
	response.Success(w, displays)
}

func (h *Handler) StartKitchenItem(w http.ResponseWriter, r *http.Request) {
	displayID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid display id")
		return
	}
	if err := h.Services.Kitchen.StartItem(r.Context(), actorFrom(r), displayID); err != nil {
		h.writeDomainError(w, err, "Failed to start kitchen item")
		return
	}
	response.Message(w, "Preparation started", map[string]any{"id": displayID})
}

func (h *Handler) CompleteKitchenItem(w http.ResponseWriter, r *http.Request) {
	displayID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid display id")
		return
	}
	if err := h.Services.Kitchen.CompleteItem(r.Context(), actorFrom(r), displayID); err != nil {
		h.writeDomainError(w, err, "Failed to complete kitchen item")
		return
	}
	response.Message(w, "Item ready", map[string]any{"id": displayID})
}
