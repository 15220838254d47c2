package store

import (
	"context"
	"strings"

	"bonfire/internal/models"

	"github.com/google/uuid"
)

// CatalogStore is the queryable table of external card data kept in sync by
// the cardsync job. The trading core only reads from it.
type CatalogStore struct {
	db DB
}

func NewCatalogStore(db DB) *CatalogStore {
	return &CatalogStore{db: db}
}

const cardColumns = `id, external_id, name, set_name, set_id, number, rarity,
	supertype, subtypes, image_small, image_large, language, name_jp,
	market_price, price_source, price_updated_at, created_at, updated_at`

type SearchParams struct {
	Query    string
	Language string
	SortBy   string // "relevance" (default) or "price"
	Limit    int
	Offset   int
}

func (s *CatalogStore) Search(ctx context.Context, params SearchParams) ([]models.Card, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	match := "%" + strings.TrimSpace(params.Query) + "%"
	language := params.Language

	if params.SortBy == "price" {
		var cards []models.Card
		err := s.db.SelectContext(ctx, &cards, `
			SELECT `+cardColumns+`
			FROM cards
			WHERE ($1 = '' OR language = $1)
			  AND ($2 = '%%' OR name ILIKE $2 OR set_name ILIKE $2 OR number ILIKE $2 OR rarity ILIKE $2)
			ORDER BY market_price DESC NULLS LAST
			LIMIT $3 OFFSET $4
		`, language, match, limit, params.Offset)
		if err != nil {
			return nil, err
		}
		return cards, nil
	}

	// Relevance: surface the ten most expensive cards of each set, most
	// expensive and most recently ingested first.
	var cards []models.Card
	err := s.db.SelectContext(ctx, &cards, `
		WITH ranked AS (
			SELECT id AS card_id,
			       ROW_NUMBER() OVER (PARTITION BY set_name ORDER BY market_price DESC NULLS LAST) AS row_num
			FROM cards
			WHERE set_name IS NOT NULL
			  AND market_price IS NOT NULL
			  AND market_price > 0
			  AND ($1 = '' OR language = $1)
			  AND ($2 = '%%' OR name ILIKE $2 OR set_name ILIKE $2 OR number ILIKE $2 OR rarity ILIKE $2)
		)
		SELECT `+cardColumns+`
		FROM cards
		WHERE id IN (SELECT card_id FROM ranked WHERE row_num <= 10)
		ORDER BY market_price DESC NULLS LAST, created_at DESC NULLS LAST
		LIMIT $3 OFFSET $4
	`, language, match, limit, params.Offset)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *CatalogStore) Popular(ctx context.Context, limit int) ([]models.Card, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var cards []models.Card
	err := s.db.SelectContext(ctx, &cards, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE market_price IS NOT NULL AND market_price > 0
		ORDER BY market_price DESC NULLS LAST, created_at DESC NULLS LAST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *CatalogStore) GetByID(ctx context.Context, id string) (models.Card, error) {
	var card models.Card
	err := s.db.GetContext(ctx, &card, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE id = $1
	`, id)
	if err != nil {
		return models.Card{}, err
	}
	return card, nil
}

type CardInput struct {
	ExternalID   string
	Name         string
	SetName      *string
	SetID        *string
	Number       *string
	Rarity       *string
	Supertype    *string
	SubtypesJSON *string
	ImageSmall   *string
	ImageLarge   *string
	Language     string
	NameJP       *string
	MarketPrice  *int64
	PriceSource  *string
	Raw          models.Attrs
}

// Upsert inserts or refreshes one card keyed by its external id.
func (s *CatalogStore) Upsert(ctx context.Context, input CardInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (id, external_id, name, set_name, set_id, number, rarity, supertype,
		                   subtypes, image_small, image_large, language, name_jp,
		                   market_price, price_source, price_updated_at, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        CASE WHEN $14::bigint IS NULL THEN NULL ELSE NOW() END, $16)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			set_name = EXCLUDED.set_name,
			set_id = EXCLUDED.set_id,
			number = EXCLUDED.number,
			rarity = EXCLUDED.rarity,
			supertype = EXCLUDED.supertype,
			subtypes = EXCLUDED.subtypes,
			image_small = EXCLUDED.image_small,
			image_large = EXCLUDED.image_large,
			language = EXCLUDED.language,
			name_jp = EXCLUDED.name_jp,
			market_price = EXCLUDED.market_price,
			price_source = EXCLUDED.price_source,
			price_updated_at = EXCLUDED.price_updated_at,
			raw = EXCLUDED.raw,
			updated_at = NOW()
	`, uuid.NewString(), input.ExternalID, input.Name, input.SetName, input.SetID, input.Number,
		input.Rarity, input.Supertype, input.SubtypesJSON, input.ImageSmall, input.ImageLarge,
		input.Language, input.NameJP, input.MarketPrice, input.PriceSource, input.Raw)
	return err
}
