// Package api provides the HTTP API for the RADAR dashboard.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/storeradar/radar/internal/api/handler"
	"github.com/storeradar/radar/internal/api/middleware"
	"github.com/storeradar/radar/internal/dashboard"
	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Sessions *dashboard.Manager
	Dataset  *dataset.Store
	Registry *resilience.Registry

	// ConfigError blocks the dashboard endpoints with a 503 problem.
	// Ops endpoints keep answering.
	ConfigError error

	// RequireTLS rejects plain HTTP requests behind a load balancer.
	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "radar-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:     cfg.Version,
		BuildTime:   cfg.BuildTime,
		Dataset:     cfg.Dataset,
		Sessions:    cfg.Sessions,
		Registry:    cfg.Registry,
		ConfigError: cfg.ConfigError,
	})
	metadataHandler := handler.NewMetadataHandler()
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.Logger)

	createRateLimit := middleware.RateLimitByIP(middleware.SessionCreateRateLimit)
	expensiveRateLimit := middleware.RateLimitBySession(middleware.ExpensiveRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	sessionRateLimit := middleware.RateLimitBySession(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/enums", metadataHandler.GetEnums)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Use(middleware.RequireConfigured(cfg.ConfigError))
			r.Use(middleware.RequireJSON)

			r.With(createRateLimit).Post("/", sessionHandler.CreateSession)

			r.Route("/{sessionId}", func(r chi.Router) {
				r.Use(sessionRateLimit)
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.DeleteSession)

				r.Put("/filters", sessionHandler.UpdateFilters)
				r.Put("/camera", sessionHandler.UpdateCamera)

				r.Post("/markers/{markerKey}/click", sessionHandler.ClickMarker)
				r.Post("/map/click", sessionHandler.ClickMap)
				r.Delete("/detail", sessionHandler.DismissDetail)

				r.Put("/search", sessionHandler.UpdateSearch)
				r.Post("/search/select", sessionHandler.SelectSuggestion)

				r.Route("/prediction", func(r chi.Router) {
					r.Delete("/", sessionHandler.DismissPrediction)
					r.Patch("/draft", sessionHandler.UpdateDraft)
					r.With(expensiveRateLimit).Post("/submit", sessionHandler.SubmitPrediction)
				})
			})
		})
	})

	return r
}
