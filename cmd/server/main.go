package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atelierpress/devis/internal/config"
	"github.com/atelierpress/devis/internal/db"
	"github.com/atelierpress/devis/internal/distance"
	"github.com/atelierpress/devis/internal/migrations"
	"github.com/atelierpress/devis/internal/pricing"
	"github.com/atelierpress/devis/internal/seed"
	"github.com/atelierpress/devis/internal/tables"
)

type server struct {
	db       *sql.DB
	auth     *authService
	store    *tables.Store
	provider *tables.Provider
	distance pricing.DistanceFunc
	validate *validator.Validate
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatalf("failed to run startup seed: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seed inserted %d rows", stats.Inserts)
	}

	store := tables.NewStore(database)
	distanceClient := distance.NewClient(cfg.DistanceAPIURL)

	srv := &server{
		db:       database,
		auth:     newAuthService(database, cfg.SessionSecret),
		store:    store,
		provider: tables.NewProvider(store, cfg.PriceCacheTTL),
		distance: distanceClient.DistanceKm,
		validate: validator.New(),
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Post("/api/quote/price", s.handleQuotePrice)
	r.Post("/api/quotes", s.handleQuoteCreate)
	r.Get("/api/quotes", s.handleQuotesList)
	r.Get("/api/quotes/{id}", s.handleQuoteDetail)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/pricing-config", s.handleAdminPricingConfigGet)
		r.Put("/pricing-config", s.handleAdminPricingConfigUpdate)
		r.Get("/price-tables/{technique}", s.handleAdminPriceTableGet)
		r.Put("/price-tables/{technique}/entries", s.handleAdminPriceEntryUpsert)
		r.Delete("/price-tables/{technique}/entries", s.handleAdminPriceEntryDelete)
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
