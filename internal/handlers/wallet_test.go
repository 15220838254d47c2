package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"bonfire/internal/models"
	"bonfire/internal/services"
)

func TestGetBalance(t *testing.T) {
	handler := newTestHandler(stubWalletService{
		balanceFn: func(_ context.Context, userID string) (models.Wallet, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user: %s", userID)
			}
			return models.Wallet{ID: "w-1", UserID: userID, Balance: 12345}, nil
		},
	}, stubSwapService{}, stubVaultService{}, stubInventoryStore{}, stubLedgerStore{}, stubCatalogStore{})

	rr := serveAuthed(t, handler.GetBalance, http.MethodGet, "/wallet/balance", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["balance"] != "123.45" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestDeposit(t *testing.T) {
	var gotAmount int64
	handler := newTestHandler(stubWalletService{
		depositFn: func(_ context.Context, _ string, amountMinor int64) (int64, error) {
			gotAmount = amountMinor
			return 3500, nil
		},
	}, stubSwapService{}, stubVaultService{}, stubInventoryStore{}, stubLedgerStore{}, stubCatalogStore{})

	body := strings.NewReader(`{"amount": "25.00"}`)
	rr := serveAuthed(t, handler.Deposit, http.MethodPost, "/wallet/deposit", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotAmount != 2500 {
		t.Fatalf("unexpected amount: %d", gotAmount)
	}
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["balance"] != "35.00" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestDepositInvalidAmount(t *testing.T) {
	handler := newTestHandler(stubWalletService{
		depositFn: func(context.Context, string, int64) (int64, error) {
			t.Fatal("service should not be called")
			return 0, nil
		},
	}, stubSwapService{}, stubVaultService{}, stubInventoryStore{}, stubLedgerStore{}, stubCatalogStore{})

	for _, amount := range []string{`"-5.00"`, `"0"`, `"abc"`, `""`} {
		body := strings.NewReader(`{"amount": ` + amount + `}`)
		rr := serveAuthed(t, handler.Deposit, http.MethodPost, "/wallet/deposit", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("amount %s: expected 400, got %d", amount, rr.Code)
		}
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	handler := newTestHandler(stubWalletService{
		withdrawFn: func(context.Context, string, int64) (int64, error) {
			return 0, services.ErrInsufficientFunds
		},
	}, stubSwapService{}, stubVaultService{}, stubInventoryStore{}, stubLedgerStore{}, stubCatalogStore{})

	body := strings.NewReader(`{"amount": "99.00"}`)
	rr := serveAuthed(t, handler.Withdraw, http.MethodPost, "/wallet/withdraw", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "insufficient_funds") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestSelfCheck(t *testing.T) {
	handler := newTestHandler(stubWalletService{
		balanceFn: func(context.Context, string) (models.Wallet, error) {
			return models.Wallet{ID: "w-1", Balance: 5000}, nil
		},
	}, stubSwapService{}, stubVaultService{}, stubInventoryStore{}, stubLedgerStore{
		sumByUserFn: func(context.Context, string) (int64, error) {
			return 4900, nil
		},
	}, stubCatalogStore{})

	rr := serveAuthed(t, handler.SelfCheck, http.MethodGet, "/wallet/self-check", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["wallet_balance"] != "50.00" || payload["ledger_sum"] != "49.00" || payload["difference"] != "1.00" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}
