package handlers

import (
	"net/http"

	"bonfire/internal/config"
	"bonfire/internal/middleware"
	"bonfire/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpmetrics "github.com/slok/go-http-metrics/metrics/prometheus"
	metricsmiddleware "github.com/slok/go-http-metrics/middleware"
	metricsstd "github.com/slok/go-http-metrics/middleware/std"
)

type Handler struct {
	cfg       config.Config
	wallet    WalletService
	swap      SwapService
	vault     VaultService
	inventory InventoryStore
	ledger    LedgerStore
	catalog   CatalogStore
	hub       *websocket.Hub
}

func New(cfg config.Config, wallet WalletService, swap SwapService, vault VaultService, inventory InventoryStore, ledger LedgerStore, catalog CatalogStore, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:       cfg,
		wallet:    wallet,
		swap:      swap,
		vault:     vault,
		inventory: inventory,
		ledger:    ledger,
		catalog:   catalog,
		hub:       hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	metrics := metricsmiddleware.New(metricsmiddleware.Config{
		Recorder: httpmetrics.NewRecorder(httpmetrics.Config{}),
	})
	router.Use(func(next http.Handler) http.Handler {
		return metricsstd.Handler("", metrics, next)
	})

	authed := middleware.Auth(h.cfg.JWTSecret)

	router.Route("/wallet", func(r chi.Router) {
		r.Use(authed)
		r.Get("/balance", h.GetBalance)
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Get("/self-check", h.SelfCheck)
	})
	router.With(authed).Post("/trade/swap", h.Swap)
	router.Route("/vault", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", h.ListVault)
		r.Post("/submit", h.SubmitItems)
		r.Post("/redeem", h.RedeemItems)
	})
	router.With(authed).Get("/inventory/search", h.SearchInventory)
	router.With(authed).Get("/transactions", h.ListTransactions)

	router.Route("/cards", func(r chi.Router) {
		r.Get("/search", h.SearchCards)
		r.Get("/popular", h.PopularCards)
		r.Get("/{id}", h.GetCard)
	})

	router.Get("/ws/balances", h.WSBalances)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())
	return router
}
