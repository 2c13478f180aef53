package handlers

import (
	"context"
	"net/http"
	"time"

	"havens-pos-service/internal/lifecycle"
	"havens-pos-service/internal/services"
	"havens-pos-service/internal/utils"
	"havens-pos-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type createOrderAddOnRequest struct {
	AddOnID  int64 `json:"addonId"`
	Quantity int32 `json:"quantity"`
}

type createOrderItemRequest struct {
	MenuItemID          int64                     `json:"menuItemId"`
	Quantity            int32                     `json:"quantity"`
	SpecialInstructions string                    `json:"specialInstructions"`
	AddOns              []createOrderAddOnRequest `json:"addons"`
}

type createOrderRequest struct {
	CustomerName        string                   `json:"customerName"`
	CustomerPhone       string                   `json:"customerPhone"`
	CustomerEmail       string                   `json:"customerEmail"`
	TableID             *int64                   `json:"tableId"`
	OrderType           string                   `json:"orderType"`
	SpecialInstructions string                   `json:"specialInstructions"`
	TaxAmount           float64                  `json:"taxAmount"`
	DiscountAmount      float64                  `json:"discountAmount"`
	Items               []createOrderItemRequest `json:"items"`
}

func itemParams(req createOrderItemRequest) services.OrderItemParams {
	params := services.OrderItemParams{
		MenuItemID:          req.MenuItemID,
		Quantity:            req.Quantity,
		SpecialInstructions: req.SpecialInstructions,
	}
	for _, addon := range req.AddOns {
		params.AddOns = append(params.AddOns, services.OrderAddOnParams{
			AddOnID:  addon.AddOnID,
			Quantity: addon.Quantity,
		})
	}
	return params
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	params := services.CreateOrderParams{
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
		TableID:             req.TableID,
		OrderType:           req.OrderType,
		SpecialInstructions: req.SpecialInstructions,
		TaxAmount:           req.TaxAmount,
		DefaultTaxRate:      h.Config.DefaultTaxRate,
		DiscountAmount:      req.DiscountAmount,
	}
	for _, item := range req.Items {
		params.Items = append(params.Items, itemParams(item))
	}

	orderID, orderNumber, err := h.Services.Orders.Create(r.Context(), actorFrom(r), params)
	if err != nil {
		h.writeDomainError(w, err, "Failed to create order")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data": map[string]any{
			"id":          orderID,
			"orderNumber": orderNumber,
			"status":      lifecycle.OrderPending,
		},
	})
}

func (h *Handler) ListActiveOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	statusFilter := r.URL.Query().Get("status")
	query := `
		select
			o.id, o.order_number, o.customer_name, o.customer_phone,
			o.table_id, t.number, o.order_type, o.status,
			o.subtotal, o.tax_amount, o.discount_amount, o.total_amount,
			o.special_instructions, o.created_at, o.updated_at,
			o.confirmed_at, o.served_at, o.completed_at
		from orders o
		left join tables t on t.id = o.table_id
	`
	var args []any
	if statusFilter != "" {
		if !lifecycle.ValidOrderStatus(statusFilter) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown order status")
			return
		}
		query += ` where o.status = $1`
		args = append(args, statusFilter)
	} else {
		query += ` where o.status not in ('completed', 'cancelled')`
	}
	query += ` order by o.created_at desc limit 200`

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		h.Logger.Error("failed to list orders", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve orders")
		return
	}
	defer rows.Close()

	orders := make([]OrderView, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		view, err := scanOrderRow(rows)
		if err != nil {
			continue
		}
		orders = append(orders, view)
		ids = append(ids, view.ID)
	}

	if len(ids) > 0 {
		itemsByOrder, err := h.loadOrderItems(ctx, ids)
		if err != nil {
			h.Logger.Error("failed to load order items", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve orders")
			return
		}
		for i := range orders {
			orders[i].Items = itemsByOrder[orders[i].ID]
			if orders[i].Items == nil {
				orders[i].Items = make([]OrderItemView, 0)
			}
		}
	}
	response.Success(w, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	row := h.DB.QueryRow(ctx, `
		select
			o.id, o.order_number, o.customer_name, o.customer_phone,
			o.table_id, t.number, o.order_type, o.status,
			o.subtotal, o.tax_amount, o.discount_amount, o.total_amount,
			o.special_instructions, o.created_at, o.updated_at,
			o.confirmed_at, o.served_at, o.completed_at
		from orders o
		left join tables t on t.id = o.table_id
		where o.id = $1
	`, orderID)
	view, err := scanOrderRow(row)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	itemsByOrder, err := h.loadOrderItems(ctx, []int64{orderID})
	if err != nil {
		h.Logger.Error("failed to load order items", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve order")
		return
	}
	view.Items = itemsByOrder[orderID]
	if view.Items == nil {
		view.Items = make([]OrderItemView, 0)
	}

	payments, err := h.loadOrderPayments(ctx, orderID)
	if err != nil {
		h.Logger.Error("failed to load order payments", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve order")
		return
	}
	view.Payments = payments

	response.Success(w, view)
}

func (h *Handler) AddOrderItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}
	var req createOrderItemRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := h.Services.Orders.AddItem(r.Context(), actorFrom(r), orderID, itemParams(req)); err != nil {
		h.writeDomainError(w, err, "Failed to add order item")
		return
	}
	response.Message(w, "Item added", map[string]any{"orderId": orderID})
}

func (h *Handler) UpdateOrderItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}
	itemID, err := readPathInt64(r, "itemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}
	var req struct {
		Quantity int32 `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := h.Services.Orders.UpdateItemQuantity(r.Context(), actorFrom(r), orderID, itemID, req.Quantity); err != nil {
		h.writeDomainError(w, err, "Failed to update order item")
		return
	}
	response.Message(w, "Item updated", map[string]any{"orderId": orderID, "itemId": itemID})
}

func (h *Handler) RemoveOrderItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}
	itemID, err := readPathInt64(r, "itemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}
	if err := h.Services.Orders.RemoveItem(r.Context(), actorFrom(r), orderID, itemID); err != nil {
		h.writeDomainError(w, err, "Failed to remove order item")
		return
	}
	response.Message(w, "Item removed", map[string]any{"orderId": orderID, "itemId": itemID})
}

func (h *Handler) SetOrderCharges(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}
	var req struct {
		TaxAmount      float64 `json:"taxAmount"`
		DiscountAmount float64 `json:"discountAmount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := h.Services.Orders.SetCharges(r.Context(), actorFrom(r), orderID, req.TaxAmount, req.DiscountAmount); err != nil {
		h.writeDomainError(w, err, "Failed to update order charges")
		return
	}
	response.Message(w, "Charges updated", map[string]any{"orderId": orderID})
}

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.Services.Orders.Confirm, "Order confirmed")
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.Services.Orders.Cancel, "Order cancelled")
}

func (h *Handler) ServeOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.Services.Orders.Serve, "Order served")
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.Services.Orders.Complete, "Order completed")
}

func (h *Handler) orderTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor services.Actor, orderID int64) error, message string) {
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}
	if err := fn(r.Context(), actorFrom(r), orderID); err != nil {
		h.writeDomainError(w, err, "Failed to update order status")
		return
	}
	response.Message(w, message, map[string]any{"orderId": orderID})
}

type addPaymentRequest struct {
	Amount          float64 `json:"amount"`
	Method          string  `json:"paymentMethod"`
	Status          string  `json:"status"`
	TransactionID   string  `json:"transactionId"`
	ReferenceNumber string  `json:"referenceNumber"`
	CardLastFour    string  `json:"cardLastFour"`
}

func (h *Handler) AddOrderPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}
	var req addPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	paymentID, err := h.Services.Orders.AddPayment(r.Context(), actorFrom(r), orderID, services.PaymentParams{
		Amount:          req.Amount,
		Method:          req.Method,
		Status:          req.Status,
		TransactionID:   req.TransactionID,
		ReferenceNumber: req.ReferenceNumber,
		CardLastFour:    req.CardLastFour,
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to record payment")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    map[string]any{"id": paymentID, "orderId": orderID},
	})
}

type orderRowScanner interface {
	Scan(dest ...any) error
}

func scanOrderRow(row orderRowScanner) (OrderView, error) {
	var (
		view         OrderView
		customerName pgtype.Text
		phone        pgtype.Text
		tableID      pgtype.Int8
		tableNumber  pgtype.Text
		subtotal     pgtype.Numeric
		tax          pgtype.Numeric
		discount     pgtype.Numeric
		total        pgtype.Numeric
		instructions pgtype.Text
		confirmedAt  pgtype.Timestamptz
		servedAt     pgtype.Timestamptz
		completedAt  pgtype.Timestamptz
	)
	err := row.Scan(
		&view.ID, &view.OrderNumber, &customerName, &phone,
		&tableID, &tableNumber, &view.OrderType, &view.Status,
		&subtotal, &tax, &discount, &total,
		&instructions, &view.CreatedAt, &view.UpdatedAt,
		&confirmedAt, &servedAt, &completedAt,
	)
	if err != nil {
		return OrderView{}, err
	}
	view.CustomerName = textPtr(customerName)
	view.CustomerPhone = textPtr(phone)
	if tableID.Valid {
		view.TableID = &tableID.Int64
	}
	view.TableNumber = textPtr(tableNumber)
	view.Subtotal = utils.NumericToFloat64(subtotal)
	view.TaxAmount = utils.NumericToFloat64(tax)
	view.DiscountAmount = utils.NumericToFloat64(discount)
	view.TotalAmount = utils.NumericToFloat64(total)
	view.SpecialInstructions = textPtr(instructions)
	view.ConfirmedAt = timePtr(confirmedAt)
	view.ServedAt = timePtr(servedAt)
	view.CompletedAt = timePtr(completedAt)
	return view, nil
}

func (h *Handler) loadOrderItems(ctx context.Context, orderIDs []int64) (map[int64][]OrderItemView, error) {
	rows, err := h.DB.Query(ctx, `
		select
			oi.id, oi.order_id, oi.menu_item_id, mi.name,
			oi.quantity, oi.unit_price, oi.subtotal, oi.status, oi.special_instructions,
			oia.id, oia.quantity, oia.unit_price, oia.subtotal, mia.name
		from order_items oi
		join menu_items mi on mi.id = oi.menu_item_id
		left join order_item_addons oia on oia.order_item_id = oi.id
		left join menu_item_addons mia on mia.id = oia.addon_id
		where oi.order_id = any($1)
		order by oi.id asc, oia.id asc
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	itemsByOrder := make(map[int64][]OrderItemView)
	itemIndex := make(map[int64]int)
	for rows.Next() {
		var (
			item         OrderItemView
			orderID      int64
			unitPrice    pgtype.Numeric
			subtotal     pgtype.Numeric
			instructions pgtype.Text
			addonID      pgtype.Int8
			addonQty     pgtype.Int4
			addonPrice   pgtype.Numeric
			addonSub     pgtype.Numeric
			addonName    pgtype.Text
		)
		if err := rows.Scan(
			&item.ID, &orderID, &item.MenuItemID, &item.MenuItemName,
			&item.Quantity, &unitPrice, &subtotal, &item.Status, &instructions,
			&addonID, &addonQty, &addonPrice, &addonSub, &addonName,
		); err != nil {
			continue
		}
		item.UnitPrice = utils.NumericToFloat64(unitPrice)
		item.Subtotal = utils.NumericToFloat64(subtotal)
		item.SpecialInstructions = textPtr(instructions)

		idx, seen := itemIndex[item.ID]
		if !seen {
			item.AddOns = make([]OrderItemAddOnView, 0)
			itemsByOrder[orderID] = append(itemsByOrder[orderID], item)
			idx = len(itemsByOrder[orderID]) - 1
			itemIndex[item.ID] = idx
		}
		if addonID.Valid {
			addon := OrderItemAddOnView{
				ID:        addonID.Int64,
				Quantity:  addonQty.Int32,
				UnitPrice: utils.NumericToFloat64(addonPrice),
				Subtotal:  utils.NumericToFloat64(addonSub),
			}
			if addonName.Valid {
				addon.Name = addonName.String
			}
			itemsByOrder[orderID][idx].AddOns = append(itemsByOrder[orderID][idx].AddOns, addon)
		}
	}
	return itemsByOrder, nil
}

func (h *Handler) loadOrderPayments(ctx context.Context, orderID int64) ([]PaymentView, error) {
	rows, err := h.DB.Query(ctx, `
		select id, amount, payment_method, status, processed_at
		from payments
		where order_id = $1
		order by id asc
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]PaymentView, 0)
	for rows.Next() {
		var (
			p           PaymentView
			amount      pgtype.Numeric
			processedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&p.ID, &amount, &p.Method, &p.Status, &processedAt); err != nil {
			continue
		}
		p.Amount = utils.NumericToFloat64(amount)
		p.ProcessedAt = timePtr(processedAt)
		payments = append(payments, p)
	}
	return payments, nil
}

func textPtr(value pgtype.Text) *string {
	if !value.Valid || value.String == "" {
		return nil
	}
	return &value.String
}

func timePtr(value pgtype.Timestamptz) *time.Time {
	if !value.Valid {
		return nil
	}
	return &value.Time
}
