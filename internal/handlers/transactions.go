package handlers

import (
	"net/http"

	"bonfire/internal/middleware"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	txType := query.Get("type")
	limit := parseIntParam(query.Get("limit"), 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := parseIntParam(query.Get("offset"), 0)
	rows, err := h.ledger.ListByUser(r.Context(), userID, txType, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable_to_load_transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, map[string]any{
			"id":            row.ID,
			"type":          row.Type,
			"description":   row.Description,
			"amount":        valueToMoney(row.Amount),
			"balance_after": valueToMoney(row.BalanceAfter),
			"detail":        row.Detail,
			"created_at":    row.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}
