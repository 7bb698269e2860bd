// Package server exposes lead intake over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/ratelimit"
)

// Config holds router configuration
type Config struct {
	Logger         logger.Logger
	Leads          *LeadHandler
	Health         *HealthHandler
	Limiter        *ratelimit.Limiter
	MetricsHandler http.Handler
	AllowedOrigins []string
}

// NewRouter creates a Chi router with all routes configured
func NewRouter(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(CORS(cfg.AllowedOrigins))
	}

	errs := apperrors.NewErrorHandler(cfg.Logger)

	r.Get("/healthz", cfg.Health.Live)
	r.Get("/readyz", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/leads", func(leads chi.Router) {
			leads.With(RateLimit(cfg.Limiter, errs)).Post("/", cfg.Leads.Create)
			leads.Get("/health", cfg.Health.Leads)
		})
		api.Get("/integrations/status", cfg.Health.Integrations)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteJSON(w, http.StatusNotFound, apperrors.ErrorResponse{Success: false, Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteJSON(w, http.StatusMethodNotAllowed, apperrors.ErrorResponse{Success: false, Error: "Method not allowed"})
	})

	return r
}
