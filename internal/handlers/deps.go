package handlers

import (
	"context"

	"bonfire/internal/models"
	"bonfire/internal/services"
	"bonfire/internal/store"
)

type WalletService interface {
	Balance(ctx context.Context, userID string) (models.Wallet, error)
	Deposit(ctx context.Context, userID string, amountMinor int64) (int64, error)
	Withdraw(ctx context.Context, userID string, amountMinor int64) (int64, error)
}

type SwapService interface {
	Swap(ctx context.Context, req services.SwapRequest) (services.SwapResult, error)
}

type VaultService interface {
	Submit(ctx context.Context, userID, email string, specs []services.SubmitItem) (services.SubmitResult, error)
	Redeem(ctx context.Context, userID string, itemIDs []string) (services.RedeemResult, error)
}

type InventoryStore interface {
	ListVaulted(ctx context.Context, userID string) ([]models.InventoryItem, error)
	Search(ctx context.Context, userID, q string, limit, offset int) ([]models.InventoryItem, error)
}

type LedgerStore interface {
	ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error)
	SumByUser(ctx context.Context, userID string) (int64, error)
}

type CatalogStore interface {
	Search(ctx context.Context, params store.SearchParams) ([]models.Card, error)
	Popular(ctx context.Context, limit int) ([]models.Card, error)
	GetByID(ctx context.Context, id string) (models.Card, error)
}
