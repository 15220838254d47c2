package handlers

import (
	"net/http"

	"bonfire/internal/auth"
	"bonfire/internal/websocket"
)

// WSBalances upgrades to a websocket that streams wallet balance updates.
// Browsers cannot set headers on websocket dials, so the token rides in the
// query string.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid_token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
