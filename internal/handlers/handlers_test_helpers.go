package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bonfire/internal/auth"
	"bonfire/internal/config"
	"bonfire/internal/middleware"
	"bonfire/internal/models"
	"bonfire/internal/services"
	"bonfire/internal/store"
	"bonfire/internal/websocket"
)

type stubWalletService struct {
	balanceFn  func(ctx context.Context, userID string) (models.Wallet, error)
	depositFn  func(ctx context.Context, userID string, amountMinor int64) (int64, error)
	withdrawFn func(ctx context.Context, userID string, amountMinor int64) (int64, error)
}

func (s stubWalletService) Balance(ctx context.Context, userID string) (models.Wallet, error) {
	if s.balanceFn == nil {
		return models.Wallet{}, nil
	}
	return s.balanceFn(ctx, userID)
}

func (s stubWalletService) Deposit(ctx context.Context, userID string, amountMinor int64) (int64, error) {
	if s.depositFn == nil {
		return 0, nil
	}
	return s.depositFn(ctx, userID, amountMinor)
}

func (s stubWalletService) Withdraw(ctx context.Context, userID string, amountMinor int64) (int64, error) {
	if s.withdrawFn == nil {
		return 0, nil
	}
	return s.withdrawFn(ctx, userID, amountMinor)
}

type stubSwapService struct {
	swapFn func(ctx context.Context, req services.SwapRequest) (services.SwapResult, error)
}

func (s stubSwapService) Swap(ctx context.Context, req services.SwapRequest) (services.SwapResult, error) {
	if s.swapFn == nil {
		return services.SwapResult{}, nil
	}
	return s.swapFn(ctx, req)
}

type stubVaultService struct {
	submitFn func(ctx context.Context, userID, email string, specs []services.SubmitItem) (services.SubmitResult, error)
	redeemFn func(ctx context.Context, userID string, itemIDs []string) (services.RedeemResult, error)
}

func (s stubVaultService) Submit(ctx context.Context, userID, email string, specs []services.SubmitItem) (services.SubmitResult, error) {
	if s.submitFn == nil {
		return services.SubmitResult{}, nil
	}
	return s.submitFn(ctx, userID, email, specs)
}

func (s stubVaultService) Redeem(ctx context.Context, userID string, itemIDs []string) (services.RedeemResult, error) {
	if s.redeemFn == nil {
		return services.RedeemResult{}, nil
	}
	return s.redeemFn(ctx, userID, itemIDs)
}

type stubInventoryStore struct {
	listVaultedFn func(ctx context.Context, userID string) ([]models.InventoryItem, error)
	searchFn      func(ctx context.Context, userID, q string, limit, offset int) ([]models.InventoryItem, error)
}

func (s stubInventoryStore) ListVaulted(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	if s.listVaultedFn == nil {
		return nil, nil
	}
	return s.listVaultedFn(ctx, userID)
}

func (s stubInventoryStore) Search(ctx context.Context, userID, q string, limit, offset int) ([]models.InventoryItem, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, userID, q, limit, offset)
}

type stubLedgerStore struct {
	listByUserFn func(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error)
	sumByUserFn  func(ctx context.Context, userID string) (int64, error)
}

func (s stubLedgerStore) ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, txType, limit, offset)
}

func (s stubLedgerStore) SumByUser(ctx context.Context, userID string) (int64, error) {
	if s.sumByUserFn == nil {
		return 0, nil
	}
	return s.sumByUserFn(ctx, userID)
}

type stubCatalogStore struct {
	searchFn  func(ctx context.Context, params store.SearchParams) ([]models.Card, error)
	popularFn func(ctx context.Context, limit int) ([]models.Card, error)
	getByIDFn func(ctx context.Context, id string) (models.Card, error)
}

func (s stubCatalogStore) Search(ctx context.Context, params store.SearchParams) ([]models.Card, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, params)
}

func (s stubCatalogStore) Popular(ctx context.Context, limit int) ([]models.Card, error) {
	if s.popularFn == nil {
		return nil, nil
	}
	return s.popularFn(ctx, limit)
}

func (s stubCatalogStore) GetByID(ctx context.Context, id string) (models.Card, error) {
	if s.getByIDFn == nil {
		return models.Card{}, nil
	}
	return s.getByIDFn(ctx, id)
}

func newTestHandler(wallet WalletService, swap SwapService, vault VaultService, inventory InventoryStore, ledger LedgerStore, catalog CatalogStore) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(cfg, wallet, swap, vault, inventory, ledger, catalog, websocket.NewHub())
}

// serveAuthed runs one handler behind the auth middleware with a token for
// user-1.
func serveAuthed(t *testing.T, handler http.HandlerFunc, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", "user-1", "alice@example.com", time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}

func stringPtr(value string) *string {
	return &value
}
