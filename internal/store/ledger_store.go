package store

import (
	"context"

	"bonfire/internal/models"
)

// LedgerStore writes and reads the append-only transaction record. Rows are
// never updated or deleted.
type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type TransactionInput struct {
	ID           string
	UserID       string
	Type         string
	Description  string
	Amount       int64
	BalanceAfter int64
	Detail       models.Attrs
}

func (s *LedgerStore) Insert(ctx context.Context, tx Execer, input TransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, description, amount, balance_after, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, input.ID, input.UserID, input.Type, input.Description, input.Amount, input.BalanceAfter, input.Detail)
	return err
}

func (s *LedgerStore) ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, type, description, amount, balance_after, detail, created_at
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	if txType != "" {
		query += ` AND type = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, txType, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	var rows []models.Transaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// SumByUser recomputes a balance from the ledger alone, used by the
// self-check endpoint to reconcile against the stored wallet balance.
func (s *LedgerStore) SumByUser(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
	`, userID)
	return sum, err
}
