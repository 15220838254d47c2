package services

import (
	"context"
	"fmt"

	"bonfire/internal/db"
	"bonfire/internal/models"
	"bonfire/internal/money"
	"bonfire/internal/notify"
	"bonfire/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// VaultService handles the single-sided vault mutations: submitting new
// items in and redeeming owned items out. Neither moves money, but both
// write a ledger row and commit as one unit with the inventory changes.
type VaultService struct {
	txRunner  db.TxRunner
	wallets   WalletStore
	inventory InventoryStore
	ledger    LedgerStore
	notifier  Notifier
	log       *zap.Logger
}

func NewVaultService(txRunner db.TxRunner, wallets WalletStore, inventory InventoryStore, ledger LedgerStore, notifier Notifier, log *zap.Logger) *VaultService {
	return &VaultService{
		txRunner:  txRunner,
		wallets:   wallets,
		inventory: inventory,
		ledger:    ledger,
		notifier:  notifier,
		log:       log,
	}
}

type SubmitItem struct {
	Name            string
	ImageURL        *string
	CollectibleType string
	ExternalID      *string
	ExternalAPI     *string
	Attrs           models.Attrs
	Notes           *string
}

type SubmitResult struct {
	TransactionID string
	Items         []models.InventoryItem
	Balance       int64
}

// Submit vaults a batch of new items and records one submit transaction.
// The confirmation email is handed off after commit; its delivery can no
// longer affect the outcome.
func (s *VaultService) Submit(ctx context.Context, userID, email string, specs []SubmitItem) (SubmitResult, error) {
	if len(specs) == 0 {
		return SubmitResult{}, ErrNoItems
	}
	var result SubmitResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		created := make([]models.InventoryItem, 0, len(specs))
		details := make([]models.Attrs, 0, len(specs))
		for _, spec := range specs {
			item, err := s.inventory.Create(ctx, tx, store.ItemSpec{
				UserID:          userID,
				Name:            spec.Name,
				ImageURL:        spec.ImageURL,
				CollectibleType: spec.CollectibleType,
				ExternalID:      spec.ExternalID,
				ExternalAPI:     spec.ExternalAPI,
				Attrs:           spec.Attrs,
				Notes:           spec.Notes,
			})
			if err != nil {
				return err
			}
			created = append(created, item)
			details = append(details, itemSnapshot(item.Name, item.Attrs, item.ImageURL))
		}

		wallet, err := s.wallets.GetOrCreateForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		transactionID := uuid.NewString()
		if err := s.ledger.Insert(ctx, tx, store.TransactionInput{
			ID:           transactionID,
			UserID:       userID,
			Type:         models.TxSubmit,
			Description:  fmt.Sprintf("Submitted %d item(s) to vault", len(created)),
			Amount:       0,
			BalanceAfter: wallet.Balance,
			Detail: models.Attrs{
				"items_count": len(created),
				"items":       details,
			},
		}); err != nil {
			return err
		}
		result = SubmitResult{TransactionID: transactionID, Items: created, Balance: wallet.Balance}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	if email != "" {
		items := make([]notify.ItemSummary, 0, len(result.Items))
		for _, item := range result.Items {
			summary := notify.ItemSummary{
				Name:  item.Name,
				Value: money.FormatMinor(money.DeclaredValueMinor(item.Attrs)),
			}
			if item.ImageURL != nil {
				summary.Image = *item.ImageURL
			}
			items = append(items, summary)
		}
		s.notifier.Enqueue(notify.VaultConfirmation{
			Recipient:   email,
			UserName:    userDisplayName(email),
			Items:       items,
			ReferenceID: result.TransactionID,
		})
	}
	s.log.Info("vault submit committed",
		zap.String("user_id", userID),
		zap.Int("items", len(result.Items)))
	return result, nil
}

type RedeemResult struct {
	TransactionID string
	RemovedCount  int
}

// Redeem withdraws owned items from the vault: snapshot, ledger row, then
// deletion, all in one unit. A count mismatch on the ownership fetch aborts
// with no deletions at all.
func (s *VaultService) Redeem(ctx context.Context, userID string, itemIDs []string) (RedeemResult, error) {
	ids := dedupe(itemIDs)
	if len(ids) == 0 {
		return RedeemResult{}, ErrNoItems
	}
	var result RedeemResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		items, err := s.inventory.GetOwnedForUpdate(ctx, tx, userID, ids)
		if err != nil {
			return err
		}
		if len(items) != len(ids) {
			return ErrItemsNotFound
		}
		details := make([]models.Attrs, 0, len(items))
		for _, item := range items {
			details = append(details, itemSnapshot(item.Name, item.Attrs, item.ImageURL))
		}

		wallet, err := s.wallets.GetOrCreateForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		transactionID := uuid.NewString()
		if err := s.ledger.Insert(ctx, tx, store.TransactionInput{
			ID:           transactionID,
			UserID:       userID,
			Type:         models.TxRedeem,
			Description:  fmt.Sprintf("Redeemed %d item(s) from vault", len(items)),
			Amount:       0,
			BalanceAfter: wallet.Balance,
			Detail: models.Attrs{
				"items_count": len(items),
				"items":       details,
				"item_ids":    ids,
			},
		}); err != nil {
			return err
		}
		if _, err := s.inventory.Delete(ctx, tx, ids); err != nil {
			return err
		}
		result = RedeemResult{TransactionID: transactionID, RemovedCount: len(items)}
		return nil
	})
	if err != nil {
		return RedeemResult{}, err
	}
	s.log.Info("vault redeem committed",
		zap.String("user_id", userID),
		zap.Int("items", result.RemovedCount))
	return result, nil
}

// userDisplayName falls back to the mailbox part of the address when no
// profile name is available.
func userDisplayName(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}
