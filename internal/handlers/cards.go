package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"bonfire/internal/models"
	"bonfire/internal/store"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sortBy := query.Get("sort_by")
	if sortBy != "price" {
		sortBy = "relevance"
	}
	cards, err := h.catalog.Search(r.Context(), store.SearchParams{
		Query:    query.Get("q"),
		Language: query.Get("language"),
		SortBy:   sortBy,
		Limit:    parseIntParam(query.Get("limit"), 50),
		Offset:   parseIntParam(query.Get("offset"), 0),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable_to_search_cards")
		return
	}
	respondJSON(w, http.StatusOK, normalizeCards(cards))
}

func (h *Handler) PopularCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.catalog.Popular(r.Context(), parseIntParam(r.URL.Query().Get("limit"), 50))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable_to_load_cards")
		return
	}
	respondJSON(w, http.StatusOK, normalizeCards(cards))
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "card_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable_to_load_card")
		return
	}
	respondJSON(w, http.StatusOK, normalizeCard(card))
}

func normalizeCards(cards []models.Card) []map[string]any {
	out := make([]map[string]any, 0, len(cards))
	for _, card := range cards {
		out = append(out, normalizeCard(card))
	}
	return out
}

func normalizeCard(card models.Card) map[string]any {
	entry := map[string]any{
		"id":          card.ID,
		"external_id": card.ExternalID,
		"name":        card.Name,
		"set_name":    card.SetName,
		"number":      card.Number,
		"rarity":      card.Rarity,
		"supertype":   card.Supertype,
		"subtypes":    card.Subtypes(),
		"image_small": card.ImageSmall,
		"image_large": card.ImageLarge,
		"language":    card.Language,
		"name_jp":     card.NameJP,
	}
	if card.MarketPrice != nil {
		entry["market_price"] = valueToMoney(*card.MarketPrice)
		entry["price_source"] = card.PriceSource
	}
	return entry
}
