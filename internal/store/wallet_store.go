package store

import (
	"context"

	"bonfire/internal/models"

	"github.com/google/uuid"
)

type WalletStore struct {
	db DB
}

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

const walletColumns = `id, user_id, balance, created_at, updated_at`

// GetOrCreate fetches the user's wallet, creating an empty one on first
// access. It commits independently; use GetOrCreateForUpdate when composing
// into a larger atomic unit.
func (s *WalletStore) GetOrCreate(ctx context.Context, userID string) (models.Wallet, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.NewString(), userID); err != nil {
		return models.Wallet{}, err
	}
	var wallet models.Wallet
	err := s.db.GetContext(ctx, &wallet, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	return wallet, nil
}

// GetOrCreateForUpdate is the in-transaction variant: the wallet row comes
// back locked, so the caller's balance check and update serialize against
// concurrent mutations of the same wallet.
func (s *WalletStore) GetOrCreateForUpdate(ctx context.Context, tx Tx, userID string) (models.Wallet, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.NewString(), userID); err != nil {
		return models.Wallet{}, err
	}
	var wallet models.Wallet
	err := tx.GetContext(ctx, &wallet, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	return wallet, nil
}

func (s *WalletStore) UpdateBalance(ctx context.Context, tx Execer, walletID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, walletID)
	return err
}
