package services

import (
	"context"
	"fmt"
	"strings"

	"bonfire/internal/db"
	"bonfire/internal/models"
	"bonfire/internal/money"
	"bonfire/internal/store"
	"bonfire/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SwapService executes the atomic exchange of items and money between a
// user's state and externally supplied counter-party inputs. Everything a
// swap touches (inventory deletions, inventory insertions, the wallet
// balance, the ledger row) commits or rolls back as one serializable
// transaction.
type SwapService struct {
	txRunner  db.TxRunner
	wallets   WalletStore
	inventory InventoryStore
	ledger    LedgerStore
	hub       BalanceHub
	log       *zap.Logger
}

func NewSwapService(txRunner db.TxRunner, wallets WalletStore, inventory InventoryStore, ledger LedgerStore, hub BalanceHub, log *zap.Logger) *SwapService {
	return &SwapService{
		txRunner:  txRunner,
		wallets:   wallets,
		inventory: inventory,
		ledger:    ledger,
		hub:       hub,
		log:       log,
	}
}

// ReceiveItem describes one counter-party item entering the user's vault.
type ReceiveItem struct {
	Name        string
	ImageURL    *string
	ExternalID  *string
	ExternalAPI *string
	Attrs       models.Attrs
}

type SwapRequest struct {
	UserID            string
	GiveItemIDs       []string
	ReceiveItems      []ReceiveItem
	GiveMoneyMinor    int64
	ReceiveMoneyMinor int64
}

type SwapResult struct {
	TransactionID string
	RemovedCount  int
	AddedCount    int
	NewBalance    int64
}

func (s *SwapService) Swap(ctx context.Context, req SwapRequest) (SwapResult, error) {
	if req.GiveMoneyMinor < 0 || req.ReceiveMoneyMinor < 0 {
		return SwapResult{}, ErrInvalidAmount
	}
	giveIDs := dedupe(req.GiveItemIDs)
	if len(giveIDs) == 0 && len(req.ReceiveItems) == 0 && req.GiveMoneyMinor == 0 && req.ReceiveMoneyMinor == 0 {
		return SwapResult{}, ErrEmptySwap
	}

	var result SwapResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		given, err := s.inventory.GetOwnedForUpdate(ctx, tx, req.UserID, giveIDs)
		if err != nil {
			return err
		}
		if len(given) != len(giveIDs) {
			return ErrItemsNotFound
		}

		giveDetails := make([]models.Attrs, 0, len(given))
		for _, item := range given {
			giveDetails = append(giveDetails, itemSnapshot(item.Name, item.Attrs, item.ImageURL))
		}
		if _, err := s.inventory.Delete(ctx, tx, giveIDs); err != nil {
			return err
		}

		receiveDetails := make([]models.Attrs, 0, len(req.ReceiveItems))
		for _, incoming := range req.ReceiveItems {
			externalAPI := incoming.ExternalAPI
			if externalAPI == nil && incoming.ExternalID != nil {
				tagged := "external"
				externalAPI = &tagged
			}
			if _, err := s.inventory.Create(ctx, tx, store.ItemSpec{
				UserID:      req.UserID,
				Name:        incoming.Name,
				ImageURL:    incoming.ImageURL,
				ExternalID:  incoming.ExternalID,
				ExternalAPI: externalAPI,
				Attrs:       incoming.Attrs,
			}); err != nil {
				return err
			}
			receiveDetails = append(receiveDetails, itemSnapshot(incoming.Name, incoming.Attrs, incoming.ImageURL))
		}

		wallet, err := s.wallets.GetOrCreateForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		// The item mutations above are tentative tx-local writes at this
		// point; failing here rolls all of them back.
		if req.GiveMoneyMinor > 0 && wallet.Balance < req.GiveMoneyMinor {
			return ErrInsufficientFunds
		}
		newBalance := wallet.Balance - req.GiveMoneyMinor + req.ReceiveMoneyMinor
		if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
			return err
		}

		net := req.ReceiveMoneyMinor - req.GiveMoneyMinor
		transactionID := uuid.NewString()
		if err := s.ledger.Insert(ctx, tx, store.TransactionInput{
			ID:           transactionID,
			UserID:       req.UserID,
			Type:         models.TxTrade,
			Description:  swapDescription(len(given), len(req.ReceiveItems), req.GiveMoneyMinor, req.ReceiveMoneyMinor),
			Amount:       net,
			BalanceAfter: newBalance,
			Detail: models.Attrs{
				"give_items":            giveIDs,
				"give_items_details":    giveDetails,
				"receive_items_count":   len(req.ReceiveItems),
				"receive_items_details": receiveDetails,
				"give_money":            money.FormatMinor(req.GiveMoneyMinor),
				"receive_money":         money.FormatMinor(req.ReceiveMoneyMinor),
				"removed_items_count":   len(given),
			},
		}); err != nil {
			return err
		}

		result = SwapResult{
			TransactionID: transactionID,
			RemovedCount:  len(given),
			AddedCount:    len(req.ReceiveItems),
			NewBalance:    newBalance,
		}
		return nil
	})
	if err != nil {
		return SwapResult{}, err
	}

	s.log.Info("swap committed",
		zap.String("user_id", req.UserID),
		zap.Int("removed", result.RemovedCount),
		zap.Int("added", result.AddedCount),
		zap.Int64("balance_after", result.NewBalance))
	s.hub.BroadcastBalance(req.UserID, websocket.BalanceUpdate{
		Balance: money.FormatMinor(result.NewBalance),
	})
	return result, nil
}

// itemSnapshot captures what the ledger keeps about an item, since the item
// row itself may be deleted later.
func itemSnapshot(name string, attrs models.Attrs, imageURL *string) models.Attrs {
	snapshot := models.Attrs{
		"name":  name,
		"value": money.FormatMinor(money.DeclaredValueMinor(attrs)),
	}
	if imageURL != nil {
		snapshot["image"] = *imageURL
	}
	return snapshot
}

func swapDescription(removed, added int, giveMinor, receiveMinor int64) string {
	parts := make([]string, 0, 4)
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("gave %d item(s)", removed))
	}
	if added > 0 {
		parts = append(parts, fmt.Sprintf("received %d item(s)", added))
	}
	if giveMinor > 0 {
		parts = append(parts, fmt.Sprintf("paid %s", money.FormatMinor(giveMinor)))
	}
	if receiveMinor > 0 {
		parts = append(parts, fmt.Sprintf("collected %s", money.FormatMinor(receiveMinor)))
	}
	return "Trade: " + strings.Join(parts, ", ")
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
