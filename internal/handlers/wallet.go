package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"bonfire/internal/middleware"
	"bonfire/internal/money"
	"bonfire/internal/services"
)

type amountRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.wallet.Balance(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable_to_load_wallet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"balance":    valueToMoney(wallet.Balance),
		"updated_at": wallet.UpdatedAt,
	})
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.wallet.Deposit)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.wallet.Withdraw)
}

func (h *Handler) applyAmount(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, userID string, amountMinor int64) (int64, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	amountMinor, err := money.ParseMinor(req.Amount)
	if err != nil || amountMinor <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	newBalance, err := apply(r.Context(), userID, amountMinor)
	if err != nil {
		switch err {
		case services.ErrInsufficientFunds:
			respondError(w, http.StatusBadRequest, "insufficient_funds")
		case services.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		default:
			respondError(w, http.StatusInternalServerError, "wallet_mutation_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"balance": valueToMoney(newBalance)})
}

// SelfCheck reconciles the stored balance against a replay of the ledger.
func (h *Handler) SelfCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.wallet.Balance(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable_to_load_wallet")
		return
	}
	ledgerSum, err := h.ledger.SumByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable_to_self_check")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"wallet_balance": valueToMoney(wallet.Balance),
		"ledger_sum":     valueToMoney(ledgerSum),
		"difference":     valueToMoney(wallet.Balance - ledgerSum),
	})
}
