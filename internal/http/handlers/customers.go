package handlers

import (
	"net/http"
	"strings"

	"havens-pos-service/internal/utils"
	"havens-pos-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := `
		select id, first_name, last_name, email, phone, total_visits, total_spent, last_visit, is_vip
		from customers
	`
	var args []any
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		query += `
		where first_name ilike $1 or last_name ilike $1 or phone ilike $1 or email ilike $1
		`
		args = append(args, "%"+search+"%")
	}
	query += ` order by last_visit desc nulls last, id desc limit 100`

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		h.Logger.Error("failed to list customers", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve customers")
		return
	}
	defer rows.Close()

	customers := make([]CustomerView, 0)
	for rows.Next() {
		view, err := scanCustomerRow(rows)
		if err != nil {
			continue
		}
		customers = append(customers, view)
	}
	response.Success(w, customers)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid customer id")
		return
	}

	row := h.DB.QueryRow(ctx, `
		select id, first_name, last_name, email, phone, total_visits, total_spent, last_visit, is_vip
		from customers
		where id = $1
	`, customerID)
	view, err := scanCustomerRow(row)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}
	response.Success(w, view)
}

func scanCustomerRow(row orderRowScanner) (CustomerView, error) {
	var (
		view       CustomerView
		email      pgtype.Text
		phone      pgtype.Text
		totalSpent pgtype.Numeric
		lastVisit  pgtype.Timestamptz
	)
	err := row.Scan(
		&view.ID, &view.FirstName, &view.LastName, &email, &phone,
		&view.TotalVisits, &totalSpent, &lastVisit, &view.IsVIP,
	)
	if err != nil {
		return CustomerView{}, err
	}
	if email.Valid {
		view.Email = email.String
	}
	if phone.Valid {
		view.Phone = phone.String
	}
	view.TotalSpent = utils.NumericToFloat64(totalSpent)
	view.LastVisit = timePtr(lastVisit)
	return view, nil
}
