package handlers

import (
	"encoding/json"
	"net/http"

	"bonfire/internal/middleware"
	"bonfire/internal/models"
	"bonfire/internal/money"
	"bonfire/internal/services"
	"bonfire/internal/validator"
)

type swapItemPayload struct {
	Name        string       `json:"name"`
	ImageURL    *string      `json:"image_url"`
	ExternalID  *string      `json:"external_id"`
	ExternalAPI *string      `json:"external_api"`
	Attrs       models.Attrs `json:"attrs"`
}

type swapRequest struct {
	GiveItemIDs  []string          `json:"give_item_ids"`
	ReceiveItems []swapItemPayload `json:"receive_items"`
	GiveMoney    string            `json:"give_money"`
	ReceiveMoney string            `json:"receive_money"`
}

func (h *Handler) Swap(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	if err := validator.ValidateItemIDs(req.GiveItemIDs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id")
		return
	}
	giveMinor, err := parseOptionalAmount(req.GiveMoney)
	if err != nil || giveMinor < 0 {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	receiveMinor, err := parseOptionalAmount(req.ReceiveMoney)
	if err != nil || receiveMinor < 0 {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	receiveItems := make([]services.ReceiveItem, 0, len(req.ReceiveItems))
	for _, item := range req.ReceiveItems {
		if err := validator.ValidateItemName(item.Name); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_item_name")
			return
		}
		if err := validator.ValidateImageURL(item.ImageURL); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_image_url")
			return
		}
		receiveItems = append(receiveItems, services.ReceiveItem{
			Name:        item.Name,
			ImageURL:    item.ImageURL,
			ExternalID:  item.ExternalID,
			ExternalAPI: item.ExternalAPI,
			Attrs:       item.Attrs,
		})
	}

	result, err := h.swap.Swap(r.Context(), services.SwapRequest{
		UserID:            userID,
		GiveItemIDs:       req.GiveItemIDs,
		ReceiveItems:      receiveItems,
		GiveMoneyMinor:    giveMinor,
		ReceiveMoneyMinor: receiveMinor,
	})
	if err != nil {
		switch err {
		case services.ErrEmptySwap:
			respondError(w, http.StatusBadRequest, "empty_swap")
		case services.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		case services.ErrItemsNotFound:
			respondError(w, http.StatusNotFound, "items_not_found")
		case services.ErrInsufficientFunds:
			respondError(w, http.StatusBadRequest, "insufficient_funds")
		default:
			respondError(w, http.StatusInternalServerError, "swap_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": result.TransactionID,
		"removed_count":  result.RemovedCount,
		"added_count":    result.AddedCount,
		"balance":        valueToMoney(result.NewBalance),
	})
}

func parseOptionalAmount(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return money.ParseMinor(raw)
}
