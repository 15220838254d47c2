package services

import (
	"context"

	"bonfire/internal/db"
	"bonfire/internal/models"
	"bonfire/internal/money"
	"bonfire/internal/store"
	"bonfire/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// WalletService covers the plain money mutations. Deposit and Withdraw
// share the balance-then-ledger pattern the swap coordinator generalizes.
type WalletService struct {
	txRunner db.TxRunner
	wallets  WalletStore
	ledger   LedgerStore
	hub      BalanceHub
	log      *zap.Logger
}

func NewWalletService(txRunner db.TxRunner, wallets WalletStore, ledger LedgerStore, hub BalanceHub, log *zap.Logger) *WalletService {
	return &WalletService{
		txRunner: txRunner,
		wallets:  wallets,
		ledger:   ledger,
		hub:      hub,
		log:      log,
	}
}

// Balance fetches (or lazily creates) the wallet outside of any larger unit.
func (s *WalletService) Balance(ctx context.Context, userID string) (models.Wallet, error) {
	return s.wallets.GetOrCreate(ctx, userID)
}

func (s *WalletService) Deposit(ctx context.Context, userID string, amountMinor int64) (int64, error) {
	if amountMinor <= 0 {
		return 0, ErrInvalidAmount
	}
	newBalance, err := s.applyDelta(ctx, userID, amountMinor, models.TxDeposit, "Deposited "+money.FormatMinor(amountMinor))
	if err != nil {
		return 0, err
	}
	s.broadcast(userID, newBalance)
	return newBalance, nil
}

func (s *WalletService) Withdraw(ctx context.Context, userID string, amountMinor int64) (int64, error) {
	if amountMinor <= 0 {
		return 0, ErrInvalidAmount
	}
	newBalance, err := s.applyDelta(ctx, userID, -amountMinor, models.TxWithdraw, "Withdrew "+money.FormatMinor(amountMinor))
	if err != nil {
		return 0, err
	}
	s.broadcast(userID, newBalance)
	return newBalance, nil
}

// applyDelta re-reads the wallet under lock inside the transaction; the
// balance precondition is never evaluated against a cached value.
func (s *WalletService) applyDelta(ctx context.Context, userID string, deltaMinor int64, txType, description string) (int64, error) {
	var newBalance int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		wallet, err := s.wallets.GetOrCreateForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if wallet.Balance+deltaMinor < 0 {
			return ErrInsufficientFunds
		}
		newBalance = wallet.Balance + deltaMinor
		if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
			return err
		}
		return s.ledger.Insert(ctx, tx, store.TransactionInput{
			ID:           uuid.NewString(),
			UserID:       userID,
			Type:         txType,
			Description:  description,
			Amount:       deltaMinor,
			BalanceAfter: newBalance,
			Detail:       models.Attrs{"amount": money.FormatMinor(deltaMinor)},
		})
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("wallet mutation committed",
		zap.String("user_id", userID),
		zap.String("type", txType),
		zap.Int64("balance_after", newBalance))
	return newBalance, nil
}

func (s *WalletService) broadcast(userID string, balanceMinor int64) {
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Balance: money.FormatMinor(balanceMinor),
	})
}
