package services

import (
	"context"
	"testing"

	"bonfire/internal/models"
	"bonfire/internal/store"

	"go.uber.org/zap"
)

func TestSwapEmptyRequest(t *testing.T) {
	service := NewSwapService(fakeTxRunner{}, stubWalletStore{}, stubInventoryStore{
		getOwnedFn: func(context.Context, store.Tx, string, []string) ([]models.InventoryItem, error) {
			t.Fatal("unexpected store call")
			return nil, nil
		},
	}, stubLedgerStore{}, &stubHub{}, zap.NewNop())
	_, err := service.Swap(context.Background(), SwapRequest{UserID: "user-1"})
	if err != ErrEmptySwap {
		t.Fatalf("expected ErrEmptySwap, got %v", err)
	}
}

func TestSwapNegativeMoney(t *testing.T) {
	service := NewSwapService(fakeTxRunner{}, stubWalletStore{}, stubInventoryStore{}, stubLedgerStore{}, &stubHub{}, zap.NewNop())
	_, err := service.Swap(context.Background(), SwapRequest{UserID: "user-1", GiveMoneyMinor: -100})
	if err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSwapItemsNotOwned(t *testing.T) {
	deleted := false
	service := NewSwapService(fakeTxRunner{}, stubWalletStore{}, stubInventoryStore{
		getOwnedFn: func(_ context.Context, _ store.Tx, _ string, ids []string) ([]models.InventoryItem, error) {
			// One of the two requested items belongs to someone else.
			return []models.InventoryItem{{ID: ids[0]}}, nil
		},
		deleteFn: func(context.Context, store.Execer, []string) (int64, error) {
			deleted = true
			return 0, nil
		},
	}, stubLedgerStore{}, &stubHub{}, zap.NewNop())
	_, err := service.Swap(context.Background(), SwapRequest{
		UserID:      "user-1",
		GiveItemIDs: []string{"item-1", "item-2"},
	})
	if err != ErrItemsNotFound {
		t.Fatalf("expected ErrItemsNotFound, got %v", err)
	}
	if deleted {
		t.Fatal("no items may be deleted when ownership check fails")
	}
}

func TestSwapInsufficientFunds(t *testing.T) {
	ledgerCalled := false
	balanceUpdated := false
	hub := &stubHub{}
	service := NewSwapService(fakeTxRunner{}, stubWalletStore{
		getOrCreateForUpdateFn: func(context.Context, store.Tx, string) (models.Wallet, error) {
			return models.Wallet{ID: "w-1", UserID: "user-1", Balance: 500}, nil
		},
		updateBalanceFn: func(context.Context, store.Execer, string, int64) error {
			balanceUpdated = true
			return nil
		},
	}, stubInventoryStore{}, stubLedgerStore{
		insertFn: func(context.Context, store.Execer, store.TransactionInput) error {
			ledgerCalled = true
			return nil
		},
	}, hub, zap.NewNop())
	_, err := service.Swap(context.Background(), SwapRequest{
		UserID:         "user-1",
		GiveMoneyMinor: 1000,
	})
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if balanceUpdated || ledgerCalled {
		t.Fatal("failed swap must not write balance or ledger")
	}
	if len(hub.calls) != 0 {
		t.Fatal("failed swap must not broadcast")
	}
}

func TestSwapSuccess(t *testing.T) {
	img := stringPtr("https://img.example/c.png")
	var deletedIDs []string
	var created []store.ItemSpec
	var updatedBalance int64
	var ledgerInput store.TransactionInput
	hub := &stubHub{}

	service := NewSwapService(fakeTxRunner{}, stubWalletStore{
		getOrCreateForUpdateFn: func(context.Context, store.Tx, string) (models.Wallet, error) {
			return models.Wallet{ID: "w-1", UserID: "user-1", Balance: 5000}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, _ string, balance int64) error {
			updatedBalance = balance
			return nil
		},
	}, stubInventoryStore{
		getOwnedFn: func(_ context.Context, _ store.Tx, userID string, ids []string) ([]models.InventoryItem, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user: %s", userID)
			}
			return []models.InventoryItem{{
				ID:     ids[0],
				UserID: userID,
				Name:   "Blastoise",
				Attrs:  models.Attrs{"value": 45.5},
			}}, nil
		},
		deleteFn: func(_ context.Context, _ store.Execer, ids []string) (int64, error) {
			deletedIDs = ids
			return int64(len(ids)), nil
		},
		createFn: func(_ context.Context, _ store.Tx, spec store.ItemSpec) (models.InventoryItem, error) {
			created = append(created, spec)
			return models.InventoryItem{ID: "new-item", Name: spec.Name}, nil
		},
	}, stubLedgerStore{
		insertFn: func(_ context.Context, _ store.Execer, input store.TransactionInput) error {
			ledgerInput = input
			return nil
		},
	}, hub, zap.NewNop())

	result, err := service.Swap(context.Background(), SwapRequest{
		UserID:      "user-1",
		GiveItemIDs: []string{"item-1", "item-1"}, // duplicate collapses to one
		ReceiveItems: []ReceiveItem{
			{Name: "Charizard", ImageURL: img, ExternalID: stringPtr("base1-4")},
			{Name: "Venusaur"},
		},
		GiveMoneyMinor:    3000,
		ReceiveMoneyMinor: 1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RemovedCount != 1 || result.AddedCount != 2 {
		t.Fatalf("unexpected counts: %#v", result)
	}
	if result.NewBalance != 3000 || updatedBalance != 3000 {
		t.Fatalf("expected balance 3000, got %d / %d", result.NewBalance, updatedBalance)
	}
	if len(deletedIDs) != 1 || deletedIDs[0] != "item-1" {
		t.Fatalf("unexpected deletions: %#v", deletedIDs)
	}
	if len(created) != 2 || created[0].Name != "Charizard" {
		t.Fatalf("unexpected creations: %#v", created)
	}
	if created[0].ExternalAPI == nil || *created[0].ExternalAPI != "external" {
		t.Fatalf("expected external api tag, got %#v", created[0].ExternalAPI)
	}
	if ledgerInput.Type != models.TxTrade || ledgerInput.Amount != -2000 || ledgerInput.BalanceAfter != 3000 {
		t.Fatalf("unexpected ledger row: %#v", ledgerInput)
	}
	if ledgerInput.Detail["give_money"] != "30.00" || ledgerInput.Detail["receive_money"] != "10.00" {
		t.Fatalf("unexpected money detail: %#v", ledgerInput.Detail)
	}
	if ledgerInput.Detail["removed_items_count"] != 1 || ledgerInput.Detail["receive_items_count"] != 2 {
		t.Fatalf("unexpected count detail: %#v", ledgerInput.Detail)
	}
	giveDetails := ledgerInput.Detail["give_items_details"].([]models.Attrs)
	if len(giveDetails) != 1 || giveDetails[0]["name"] != "Blastoise" || giveDetails[0]["value"] != "45.50" {
		t.Fatalf("unexpected give snapshot: %#v", giveDetails)
	}
	if len(hub.calls) != 1 || hub.calls[0].Balance != "30.00" {
		t.Fatalf("unexpected broadcasts: %#v", hub.calls)
	}
}

func TestSwapItemsOnlyNoMoney(t *testing.T) {
	var ledgerInput store.TransactionInput
	service := NewSwapService(fakeTxRunner{}, stubWalletStore{
		getOrCreateForUpdateFn: func(context.Context, store.Tx, string) (models.Wallet, error) {
			return models.Wallet{ID: "w-1", Balance: 0}, nil
		},
	}, stubInventoryStore{
		getOwnedFn: func(_ context.Context, _ store.Tx, _ string, ids []string) ([]models.InventoryItem, error) {
			return []models.InventoryItem{{ID: ids[0], Name: "Mewtwo"}}, nil
		},
	}, stubLedgerStore{
		insertFn: func(_ context.Context, _ store.Execer, input store.TransactionInput) error {
			ledgerInput = input
			return nil
		},
	}, &stubHub{}, zap.NewNop())

	result, err := service.Swap(context.Background(), SwapRequest{
		UserID:      "user-1",
		GiveItemIDs: []string{"item-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A zero-balance wallet is fine when no money moves.
	if result.NewBalance != 0 || ledgerInput.Amount != 0 {
		t.Fatalf("unexpected money movement: %#v", ledgerInput)
	}
}
