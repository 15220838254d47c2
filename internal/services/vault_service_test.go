package services

import (
	"context"
	"testing"

	"bonfire/internal/models"
	"bonfire/internal/store"

	"go.uber.org/zap"
)

func TestSubmitNoItems(t *testing.T) {
	service := NewVaultService(fakeTxRunner{}, stubWalletStore{}, stubInventoryStore{}, stubLedgerStore{}, &stubNotifier{}, zap.NewNop())
	_, err := service.Submit(context.Background(), "user-1", "alice@example.com", nil)
	if err != ErrNoItems {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestSubmitTwoItems(t *testing.T) {
	var created []store.ItemSpec
	var ledgerInput store.TransactionInput
	notifier := &stubNotifier{}
	service := NewVaultService(fakeTxRunner{}, stubWalletStore{
		getOrCreateForUpdateFn: func(context.Context, store.Tx, string) (models.Wallet, error) {
			return models.Wallet{ID: "w-1", Balance: 1500}, nil
		},
	}, stubInventoryStore{
		createFn: func(_ context.Context, _ store.Tx, spec store.ItemSpec) (models.InventoryItem, error) {
			created = append(created, spec)
			return models.InventoryItem{
				ID:     spec.Name,
				UserID: spec.UserID,
				Name:   spec.Name,
				Status: models.StatusVaulted,
				Attrs:  spec.Attrs,
			}, nil
		},
	}, stubLedgerStore{
		insertFn: func(_ context.Context, _ store.Execer, input store.TransactionInput) error {
			ledgerInput = input
			return nil
		},
	}, notifier, zap.NewNop())

	result, err := service.Submit(context.Background(), "user-1", "alice@example.com", []SubmitItem{
		{Name: "Charizard", Attrs: models.Attrs{"value": "125.99"}},
		{Name: "Pikachu"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 2 || len(created) != 2 {
		t.Fatalf("expected 2 items, got %#v", result.Items)
	}
	if result.Balance != 1500 {
		t.Fatalf("unexpected balance: %d", result.Balance)
	}
	if ledgerInput.Type != models.TxSubmit || ledgerInput.Amount != 0 || ledgerInput.BalanceAfter != 1500 {
		t.Fatalf("unexpected ledger row: %#v", ledgerInput)
	}
	if ledgerInput.Detail["items_count"] != 2 {
		t.Fatalf("unexpected detail: %#v", ledgerInput.Detail)
	}
	items := ledgerInput.Detail["items"].([]models.Attrs)
	if len(items) != 2 || items[0]["value"] != "125.99" {
		t.Fatalf("unexpected item snapshots: %#v", items)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.messages))
	}
	msg := notifier.messages[0]
	if msg.Recipient != "alice@example.com" || msg.UserName != "alice" {
		t.Fatalf("unexpected notification: %#v", msg)
	}
	if len(msg.Items) != 2 || msg.Items[0].Name != "Charizard" || msg.Items[0].Value != "125.99" {
		t.Fatalf("unexpected notification items: %#v", msg.Items)
	}
	if msg.ReferenceID != result.TransactionID {
		t.Fatalf("notification reference %q != transaction %q", msg.ReferenceID, result.TransactionID)
	}
}

func TestSubmitNoEmailSkipsNotification(t *testing.T) {
	notifier := &stubNotifier{}
	service := NewVaultService(fakeTxRunner{}, stubWalletStore{}, stubInventoryStore{}, stubLedgerStore{}, notifier, zap.NewNop())
	_, err := service.Submit(context.Background(), "user-1", "", []SubmitItem{{Name: "Pikachu"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("unexpected notifications: %#v", notifier.messages)
	}
}

func TestRedeemNoItems(t *testing.T) {
	service := NewVaultService(fakeTxRunner{}, stubWalletStore{}, stubInventoryStore{}, stubLedgerStore{}, &stubNotifier{}, zap.NewNop())
	_, err := service.Redeem(context.Background(), "user-1", nil)
	if err != ErrNoItems {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestRedeemForeignItemAborts(t *testing.T) {
	deleted := false
	service := NewVaultService(fakeTxRunner{}, stubWalletStore{}, stubInventoryStore{
		getOwnedFn: func(_ context.Context, _ store.Tx, _ string, ids []string) ([]models.InventoryItem, error) {
			return []models.InventoryItem{{ID: ids[0]}}, nil
		},
		deleteFn: func(context.Context, store.Execer, []string) (int64, error) {
			deleted = true
			return 0, nil
		},
	}, stubLedgerStore{}, &stubNotifier{}, zap.NewNop())
	_, err := service.Redeem(context.Background(), "user-1", []string{"mine", "not-mine"})
	if err != ErrItemsNotFound {
		t.Fatalf("expected ErrItemsNotFound, got %v", err)
	}
	if deleted {
		t.Fatal("no items may be deleted when ownership check fails")
	}
}

func TestRedeemSuccess(t *testing.T) {
	var deletedIDs []string
	var ledgerInput store.TransactionInput
	service := NewVaultService(fakeTxRunner{}, stubWalletStore{
		getOrCreateForUpdateFn: func(context.Context, store.Tx, string) (models.Wallet, error) {
			return models.Wallet{ID: "w-1", Balance: 700}, nil
		},
	}, stubInventoryStore{
		getOwnedFn: func(_ context.Context, _ store.Tx, _ string, ids []string) ([]models.InventoryItem, error) {
			items := make([]models.InventoryItem, 0, len(ids))
			for _, id := range ids {
				items = append(items, models.InventoryItem{ID: id, UserID: "user-1", Name: "Card " + id})
			}
			return items, nil
		},
		deleteFn: func(_ context.Context, _ store.Execer, ids []string) (int64, error) {
			deletedIDs = ids
			return int64(len(ids)), nil
		},
	}, stubLedgerStore{
		insertFn: func(_ context.Context, _ store.Execer, input store.TransactionInput) error {
			ledgerInput = input
			return nil
		},
	}, &stubNotifier{}, zap.NewNop())

	result, err := service.Redeem(context.Background(), "user-1", []string{"item-1", "item-2", "item-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RemovedCount != 2 || len(deletedIDs) != 2 {
		t.Fatalf("unexpected removals: %#v / %#v", result, deletedIDs)
	}
	if ledgerInput.Type != models.TxRedeem || ledgerInput.Amount != 0 || ledgerInput.BalanceAfter != 700 {
		t.Fatalf("unexpected ledger row: %#v", ledgerInput)
	}
	if ledgerInput.Detail["items_count"] != 2 {
		t.Fatalf("unexpected detail: %#v", ledgerInput.Detail)
	}
}
