// Package server provides the HTTP server and routing for the pipeline API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/database"
	filtrationhandlers "github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/filtration/handlers"
)

// Config holds server configuration.
type Config struct {
	Log                zerolog.Logger
	Port               int
	DevMode            bool
	ResultsDB          *database.DB
	FiltrationHandlers *filtrationhandlers.Handler
}

// Server represents the HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	systemHandlers := NewSystemHandlers(cfg.ResultsDB, s.log)

	s.router.Route("/api", func(r chi.Router) {
		cfg.FiltrationHandlers.RegisterRoutes(r)
		systemHandlers.RegisterRoutes(r)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // filtration computations can run long
	}

	return s
}

// Router returns the chi router, used by handler tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
