package handlers

import (
	"net/http"

	"havens-pos-service/pkg/response"

	"go.uber.org/zap"
)

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.DB.Query(ctx, `
		select id, number, capacity, section, is_active, is_occupied
		from tables
		where is_active
		order by section asc, number asc
	`)
	if err != nil {
		h.Logger.Error("failed to list tables", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve tables")
		return
	}
	defer rows.Close()

	tables := make([]TableView, 0)
	for rows.Next() {
		var t TableView
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity, &t.Section, &t.IsActive, &t.IsOccupied); err != nil {
			continue
		}
		tables = append(tables, t)
	}
	response.Success(w, tables)
}

func (h *Handler) ListAvailableTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.DB.Query(ctx, `
		select id, number, capacity, section, is_active, is_occupied
		from tables
		where is_active and not is_occupied
		order by capacity asc, number asc
	`)
	if err != nil {
		h.Logger.Error("failed to list available tables", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve tables")
		return
	}
	defer rows.Close()

	tables := make([]TableView, 0)
	for rows.Next() {
		var t TableView
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity, &t.Section, &t.IsActive, &t.IsOccupied); err != nil {
			continue
		}
		tables = append(tables, t)
	}
	response.Success(w, tables)
}

func (h *Handler) OccupyTable(w http.ResponseWriter, r *http.Request) {
	h.setTableOccupied(w, r, true, "Table marked occupied")
}

func (h *Handler) FreeTable(w http.ResponseWriter, r *http.Request) {
	h.setTableOccupied(w, r, false, "Table marked free")
}

func (h *Handler) setTableOccupied(w http.ResponseWriter, r *http.Request, occupied bool, message string) {
	ctx := r.Context()
	tableID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid table id")
		return
	}

	tag, err := h.DB.Exec(ctx, `
		update tables set is_occupied = $1 where id = $2 and is_active
	`, occupied, tableID)
	if err != nil {
		h.Logger.Error("failed to update table occupancy", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update table")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Table not found")
		return
	}
	response.Message(w, message, map[string]any{"id": tableID, "isOccupied": occupied})
}
