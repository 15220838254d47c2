package services

import (
	"context"

	"bonfire/internal/models"
	"bonfire/internal/notify"
	"bonfire/internal/store"
	"bonfire/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubWalletStore struct {
	getOrCreateFn          func(ctx context.Context, userID string) (models.Wallet, error)
	getOrCreateForUpdateFn func(ctx context.Context, tx store.Tx, userID string) (models.Wallet, error)
	updateBalanceFn        func(ctx context.Context, tx store.Execer, walletID string, balance int64) error
}

func (s stubWalletStore) GetOrCreate(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getOrCreateFn == nil {
		return models.Wallet{}, nil
	}
	return s.getOrCreateFn(ctx, userID)
}

func (s stubWalletStore) GetOrCreateForUpdate(ctx context.Context, tx store.Tx, userID string) (models.Wallet, error) {
	if s.getOrCreateForUpdateFn == nil {
		return models.Wallet{}, nil
	}
	return s.getOrCreateForUpdateFn(ctx, tx, userID)
}

func (s stubWalletStore) UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance int64) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, walletID, balance)
}

type stubInventoryStore struct {
	getOwnedFn func(ctx context.Context, tx store.Tx, userID string, ids []string) ([]models.InventoryItem, error)
	createFn   func(ctx context.Context, tx store.Tx, spec store.ItemSpec) (models.InventoryItem, error)
	deleteFn   func(ctx context.Context, tx store.Execer, ids []string) (int64, error)
}

func (s stubInventoryStore) GetOwnedForUpdate(ctx context.Context, tx store.Tx, userID string, ids []string) ([]models.InventoryItem, error) {
	if s.getOwnedFn == nil {
		return nil, nil
	}
	return s.getOwnedFn(ctx, tx, userID, ids)
}

func (s stubInventoryStore) Create(ctx context.Context, tx store.Tx, spec store.ItemSpec) (models.InventoryItem, error) {
	if s.createFn == nil {
		return models.InventoryItem{ID: "created", UserID: spec.UserID, Name: spec.Name, Attrs: spec.Attrs, ImageURL: spec.ImageURL}, nil
	}
	return s.createFn(ctx, tx, spec)
}

func (s stubInventoryStore) Delete(ctx context.Context, tx store.Execer, ids []string) (int64, error) {
	if s.deleteFn == nil {
		return int64(len(ids)), nil
	}
	return s.deleteFn(ctx, tx, ids)
}

type stubLedgerStore struct {
	insertFn func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
}

func (s stubLedgerStore) Insert(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, input)
}

type stubHub struct {
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.calls = append(s.calls, update)
}

type stubNotifier struct {
	messages []notify.VaultConfirmation
}

func (s *stubNotifier) Enqueue(msg notify.VaultConfirmation) {
	s.messages = append(s.messages, msg)
}

func stringPtr(s string) *string {
	return &s
}
