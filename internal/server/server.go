// Package server assembles the DailyDash HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"dailydash/internal/accounts"
	"dailydash/internal/db"
	"dailydash/internal/news"
	"dailydash/internal/saved"
	"dailydash/internal/sources"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server is the DailyDash API server.
type Server struct {
	cfg        Config
	db         *db.DB
	log        *slog.Logger
	router     chi.Router
	httpServer *http.Server

	Accounts *accounts.Store
	Sources  *sources.Store
	News     *news.Store
	Saved    *saved.Store
}

// New creates a server with all feature stores wired to the database.
func New(cfg Config, database *db.DB, log *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		db:       database,
		log:      log,
		Accounts: accounts.NewStore(database),
		Sources:  sources.NewStore(database),
		News:     news.NewStore(database),
		Saved:    saved.NewStore(database),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Session resolution runs for every route; authorization is
	// enforced per-route by the feature packages.
	r.Use(s.Accounts.WithSession)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	accounts.RegisterRoutes(r, s.Accounts)
	sources.RegisterRoutes(r, s.Sources)
	news.RegisterRoutes(r, s.News)
	saved.RegisterRoutes(r, s.Saved)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Seed inserts the default admin, sources and sample articles when the
// database is empty.
func (s *Server) Seed(ctx context.Context) error {
	if err := s.Accounts.SeedAdmin(ctx); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if err := s.Sources.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seeding sources: %w", err)
	}
	n, err := s.News.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seeding articles: %w", err)
	}
	if n > 0 {
		s.log.Info("seeded sample articles", "count", n)
	}
	return nil
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("dailydash server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
