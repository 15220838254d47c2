package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bonfire/internal/config"
	"bonfire/internal/db"
	"bonfire/internal/handlers"
	"bonfire/internal/logging"
	"bonfire/internal/notify"
	"bonfire/internal/services"
	"bonfire/internal/store"
	"bonfire/internal/websocket"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log, cleanup := logging.New(cfg.AppEnv)
	defer cleanup()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	wallets := store.NewWalletStore(database)
	inventory := store.NewInventoryStore(database)
	ledger := store.NewLedgerStore(database)
	catalog := store.NewCatalogStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	sender := notify.NewResendSender(cfg.ResendAPIKey, cfg.ResendTemplateID, cfg.ResendFromEmail)
	dispatcher := notify.NewDispatcher(sender, log)
	defer dispatcher.Close()

	walletService := services.NewWalletService(txRunner, wallets, ledger, hub, log)
	swapService := services.NewSwapService(txRunner, wallets, inventory, ledger, hub, log)
	vaultService := services.NewVaultService(txRunner, wallets, inventory, ledger, dispatcher, log)

	handler := handlers.New(cfg, walletService, swapService, vaultService, inventory, ledger, catalog, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("vault API listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("shutdown error", zap.Error(err))
	}
}
