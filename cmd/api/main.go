// Package main provides the entrypoint for the RADAR API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/storeradar/radar/internal/api"
	"github.com/storeradar/radar/internal/api/middleware"
	"github.com/storeradar/radar/internal/config"
	"github.com/storeradar/radar/internal/dashboard"
	"github.com/storeradar/radar/internal/database"
	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/places"
	"github.com/storeradar/radar/internal/places/google"
	"github.com/storeradar/radar/internal/prediction/scoring"
	"github.com/storeradar/radar/internal/provider/resilience"
	"github.com/storeradar/radar/internal/telemetry"
	"github.com/storeradar/radar/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "radar-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RADAR API")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// A missing maps key keeps the process up so ops endpoints can report it.
	configErr := cfg.Validate()
	if configErr != nil {
		log.Error().Err(configErr).Msg(middleware.MissingConfigDetail)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics(nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := middleware.NewProviderMetrics(nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Dataset
	var repo dataset.Repository
	switch cfg.DatasetSource {
	case config.DatasetSourcePostgres:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Str("database", cfg.Database.Redacted()).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("database connected")
		repo = dataset.NewPostgresRepository(pool)
	default:
		repo = dataset.NewFileRepository(cfg.DatasetPath)
	}

	store := dataset.NewStore(log.With().Str("component", "dataset").Logger())
	reloadJob := worker.NewReloadJob(worker.ReloadJobConfig{
		Store:      store,
		Repository: repo,
		Logger:     log.With().Str("component", "reload").Logger(),
	})
	if _, err := reloadJob.Run(ctx); err != nil {
		// Readiness stays failed until a reload succeeds.
		log.Error().Err(err).Str("source", repo.Name()).Msg("initial dataset load failed")
	}
	if cfg.DatasetReloadInterval > 0 {
		go reloadJob.Schedule(ctx, cfg.DatasetReloadInterval)
	}

	if cfg.PubSubEnabled() {
		listener, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.DatasetReloadSubscription,
			ReloadJob:        reloadJob,
			Logger:           log.With().Str("component", "pubsub").Logger(),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create dataset reload listener")
		}
		defer func() {
			if err := listener.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub client")
			}
		}()
		go func() {
			if err := listener.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("dataset reload listener stopped")
			}
		}()
	}

	// Outbound providers
	registry := resilience.NewRegistry()

	scoringHTTP := resilience.SingleShotClientConfig(scoring.ProviderName, cfg.ScoringTimeout)
	scoringHTTP.Registry = registry
	scorer := scoring.NewClient(scoring.ClientConfig{
		BaseURL:    cfg.ScoringBaseURL,
		HTTPClient: resilience.NewClient(scoringHTTP),
		Metrics:    providerMetrics,
		Logger:     log.With().Str("provider", scoring.ProviderName).Logger(),
	})

	placesHTTP := resilience.DefaultClientConfig(google.ProviderName)
	placesHTTP.Registry = registry
	placesService := places.NewService(places.ServiceConfig{
		Provider: google.NewClient(google.ClientConfig{
			APIKey:     cfg.MapsAPIKey,
			BaseURL:    cfg.PlacesBaseURL,
			HTTPClient: resilience.NewClient(placesHTTP),
			Metrics:    providerMetrics,
			Logger:     log.With().Str("provider", google.ProviderName).Logger(),
		}),
		Logger:  log.With().Str("component", "places").Logger(),
		Metrics: providerMetrics,
	})

	// Sessions. The gauges read the manager, so metrics are bound to the
	// observer after it exists and before any request is served.
	observer := &predictionObserver{}
	sessions := dashboard.NewManager(dashboard.ManagerConfig{
		Session: dashboard.SessionConfig{
			Dataset:  store,
			Places:   placesService,
			Scorer:   scorer,
			Debounce: cfg.SearchDebounce,
			Observer: observer,
		},
		TTL:    cfg.SessionTTL,
		Logger: log.With().Str("component", "sessions").Logger(),
	})

	dashboardMetrics, err := telemetry.NewDashboardMetrics(telemetry.Meter(serviceName), telemetry.DashboardGauges{
		Sessions:       sessions.Count,
		DatasetPoints:  func() int { return len(store.Snapshot().Points) },
		DatasetVersion: func() uint64 { return store.Snapshot().Version },
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize dashboard metrics")
		os.Exit(1)
	}
	defer func() { _ = dashboardMetrics.Close() }()
	observer.metrics = dashboardMetrics

	go sessions.Run(ctx)

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Sessions:    sessions,
		Dataset:     store,
		Registry:    registry,
		ConfigError: configErr,
		RequireTLS:  cfg.RequireTLS,
	})

	// Create HTTP server. The write timeout covers a cold-start scoring call.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ScoringTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("dataset_source", repo.Name()).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// predictionObserver forwards submissions to the dashboard metrics once they
// exist.
type predictionObserver struct {
	metrics *telemetry.DashboardMetrics
}

func (o *predictionObserver) RecordPrediction(ctx context.Context, duration time.Duration, err error) {
	if o.metrics != nil {
		o.metrics.RecordPrediction(ctx, duration, err)
	}
}
