package store

import (
	"context"

	"bonfire/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type InventoryStore struct {
	db DB
}

func NewInventoryStore(db DB) *InventoryStore {
	return &InventoryStore{db: db}
}

const itemColumns = `id, user_id, name, image_url, status, collectible_type,
	external_id, external_api, attrs, notes, submitted_at, authenticated_at,
	vaulted_at, created_at, updated_at`

type ItemSpec struct {
	UserID          string
	Name            string
	ImageURL        *string
	CollectibleType string
	ExternalID      *string
	ExternalAPI     *string
	Attrs           models.Attrs
	Notes           *string
}

func (s *InventoryStore) ListVaulted(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.SelectContext(ctx, &items, `
		SELECT `+itemColumns+`
		FROM inventory
		WHERE user_id = $1 AND status = $2
		ORDER BY vaulted_at DESC
	`, userID, models.StatusVaulted)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetOwnedForUpdate returns only the rows that match both the id set and the
// owner, locked for the remainder of the transaction. Callers must compare
// the returned count with len(ids): a shortfall means at least one id is
// missing or belongs to another user, and the operation must abort.
func (s *InventoryStore) GetOwnedForUpdate(ctx context.Context, tx Tx, userID string, ids []string) ([]models.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.InventoryItem
	err := tx.SelectContext(ctx, &items, `
		SELECT `+itemColumns+`
		FROM inventory
		WHERE user_id = $1 AND id = ANY($2)
		FOR UPDATE
	`, userID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new item directly in vaulted status with the submission
// and vaulting timestamps stamped server-side.
func (s *InventoryStore) Create(ctx context.Context, tx Tx, spec ItemSpec) (models.InventoryItem, error) {
	collectibleType := spec.CollectibleType
	if collectibleType == "" {
		collectibleType = "card"
	}
	id := uuid.NewString()
	var item models.InventoryItem
	err := tx.GetContext(ctx, &item, `
		INSERT INTO inventory (id, user_id, name, image_url, status, collectible_type,
		                       external_id, external_api, attrs, notes, submitted_at, vaulted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING `+itemColumns+`
	`, id, spec.UserID, spec.Name, spec.ImageURL, models.StatusVaulted, collectibleType,
		spec.ExternalID, spec.ExternalAPI, spec.Attrs, spec.Notes)
	if err != nil {
		return models.InventoryItem{}, err
	}
	return item, nil
}

func (s *InventoryStore) Delete(ctx context.Context, tx Execer, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := tx.ExecContext(ctx, `
		DELETE FROM inventory
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Search is a simple substring match over the user's own items.
func (s *InventoryStore) Search(ctx context.Context, userID, q string, limit, offset int) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.SelectContext(ctx, &items, `
		SELECT `+itemColumns+`
		FROM inventory
		WHERE user_id = $1
		  AND (name ILIKE $2 OR collectible_type ILIKE $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, userID, "%"+q+"%", limit, offset)
	if err != nil {
		return nil, err
	}
	return items, nil
}
