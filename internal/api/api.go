// Package api exposes the ledger and engine over a JSON HTTP API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"lotledger/internal/store"
)

// NewRouter builds the HTTP API router.
func NewRouter(st *store.Store, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(requestLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := &handler{store: st}

	r.Get("/api/health", h.health)

	// Transactions
	r.Get("/api/transactions", h.listTransactions)
	r.Post("/api/transactions", h.addTransaction)
	r.Get("/api/transactions/{id}", h.getTransaction)
	r.Put("/api/transactions/{id}", h.updateTransaction)
	r.Delete("/api/transactions/{id}", h.deleteTransaction)

	// Positions
	r.Get("/api/holdings", h.getHoldings)
	r.Get("/api/closed-positions", h.getClosedPositions)
	r.Get("/api/lots", h.getLots)

	// Tax reporting
	r.Post("/api/sell-preview", h.sellPreview)
	r.Get("/api/realized-gains", h.getRealizedGains)
	r.Post("/api/wash-sale/check", h.washSaleCheck)

	// Prices
	r.Get("/api/prices", h.getPrices)
	r.Put("/api/prices/{symbol}", h.setPrice)

	return r
}

type handler struct {
	store *store.Store
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
