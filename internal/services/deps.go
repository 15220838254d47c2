package services

import (
	"context"

	"bonfire/internal/models"
	"bonfire/internal/notify"
	"bonfire/internal/store"
	"bonfire/internal/websocket"
)

type WalletStore interface {
	GetOrCreate(ctx context.Context, userID string) (models.Wallet, error)
	GetOrCreateForUpdate(ctx context.Context, tx store.Tx, userID string) (models.Wallet, error)
	UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance int64) error
}

type InventoryStore interface {
	GetOwnedForUpdate(ctx context.Context, tx store.Tx, userID string, ids []string) ([]models.InventoryItem, error)
	Create(ctx context.Context, tx store.Tx, spec store.ItemSpec) (models.InventoryItem, error)
	Delete(ctx context.Context, tx store.Execer, ids []string) (int64, error)
}

type LedgerStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.TransactionInput) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// Notifier hands a message to the fire-and-forget dispatcher. Enqueue never
// blocks and never reports delivery failures back to the caller.
type Notifier interface {
	Enqueue(msg notify.VaultConfirmation)
}
