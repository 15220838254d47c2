package handlers

import (
	"encoding/json"
	"net/http"

	"bonfire/internal/money"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code string) {
	respondJSON(w, status, map[string]string{"error": code})
}

func valueToMoney(minor int64) string {
	return money.FormatMinor(minor)
}
