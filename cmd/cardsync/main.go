package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"bonfire/internal/catalog"
	"bonfire/internal/config"
	"bonfire/internal/db"
	"bonfire/internal/logging"
	"bonfire/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cardsync pulls the external card catalog into the local cards table. It
// runs once by default; pass -schedule to keep it resident and re-sync on a
// cron expression.
func main() {
	schedule := flag.String("schedule", "", `cron expression for periodic re-sync, e.g. "0 3 * * *"`)
	flag.Parse()

	cfg := config.Load()
	log, cleanup := logging.New(cfg.AppEnv)
	defer cleanup()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	cards := store.NewCatalogStore(database)
	client := catalog.NewClient(cfg.CardAPIURL, cfg.CardAPIKey, cards, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	runOnce := func() {
		report, err := client.Sync(ctx)
		if err != nil {
			log.Error("card sync failed", zap.Error(err))
			return
		}
		if len(report.PagesFailed) > 0 {
			log.Warn("card sync finished with failed pages",
				zap.Ints("pages", report.PagesFailed))
		}
	}

	if *schedule == "" {
		runOnce()
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(*schedule, runOnce); err != nil {
		log.Fatal("invalid schedule", zap.String("schedule", *schedule), zap.Error(err))
	}
	log.Info("card sync scheduled", zap.String("schedule", *schedule))
	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
}
