package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bonfire/internal/middleware"
	"bonfire/internal/models"
	"bonfire/internal/services"
	"bonfire/internal/validator"
)

func (h *Handler) ListVault(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.inventory.ListVaulted(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable_to_load_vault")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

type submitItemPayload struct {
	Name            string       `json:"name"`
	ImageURL        *string      `json:"image_url"`
	CollectibleType string       `json:"collectible_type"`
	ExternalID      *string      `json:"external_id"`
	ExternalAPI     *string      `json:"external_api"`
	Attrs           models.Attrs `json:"attrs"`
	Notes           *string      `json:"notes"`
}

type submitRequest struct {
	Items []submitItemPayload `json:"items"`
}

func (h *Handler) SubmitItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "no_items")
		return
	}
	specs := make([]services.SubmitItem, 0, len(req.Items))
	for _, item := range req.Items {
		if err := validator.ValidateItemName(item.Name); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_item_name")
			return
		}
		if err := validator.ValidateImageURL(item.ImageURL); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_image_url")
			return
		}
		specs = append(specs, services.SubmitItem{
			Name:            item.Name,
			ImageURL:        item.ImageURL,
			CollectibleType: item.CollectibleType,
			ExternalID:      item.ExternalID,
			ExternalAPI:     item.ExternalAPI,
			Attrs:           item.Attrs,
			Notes:           item.Notes,
		})
	}
	email := middleware.EmailFromContext(r.Context())
	result, err := h.vault.Submit(r.Context(), userID, email, specs)
	if err != nil {
		if err == services.ErrNoItems {
			respondError(w, http.StatusBadRequest, "no_items")
			return
		}
		respondError(w, http.StatusInternalServerError, "submit_failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": result.TransactionID,
		"items":          result.Items,
		"balance":        valueToMoney(result.Balance),
	})
}

type redeemRequest struct {
	ItemIDs []string `json:"item_ids"`
}

func (h *Handler) RedeemItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return
	}
	if err := validator.ValidateItemIDs(req.ItemIDs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id")
		return
	}
	result, err := h.vault.Redeem(r.Context(), userID, req.ItemIDs)
	if err != nil {
		switch err {
		case services.ErrNoItems:
			respondError(w, http.StatusBadRequest, "no_items")
		case services.ErrItemsNotFound:
			respondError(w, http.StatusNotFound, "items_not_found")
		default:
			respondError(w, http.StatusInternalServerError, "redeem_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transaction_id": result.TransactionID,
		"removed_count":  result.RemovedCount,
	})
}

func (h *Handler) SearchInventory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseIntParam(query.Get("limit"), 50)
	offset := parseIntParam(query.Get("offset"), 0)
	items, err := h.inventory.Search(r.Context(), userID, query.Get("q"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable_to_search")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

func parseIntParam(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
