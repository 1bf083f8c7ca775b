// Package config reads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/storeradar/radar/internal/database"
	"github.com/storeradar/radar/internal/places"
	"github.com/storeradar/radar/internal/prediction/scoring"
)

// ErrMissingMapsKey means MAPS_API_KEY is unset. The service still starts
// but refuses dashboard requests.
var ErrMissingMapsKey = errors.New("MAPS_API_KEY is not set")

// Dataset sources.
const (
	DatasetSourceFile     = "file"
	DatasetSourcePostgres = "postgres"
)

// Config is the service configuration.
type Config struct {
	Port        string
	Environment string

	MapsAPIKey     string
	PlacesBaseURL  string
	ScoringBaseURL string
	ScoringTimeout time.Duration

	DatasetSource string
	DatasetPath   string
	Database      database.Config

	// DatasetReloadInterval enables periodic reloads when positive.
	DatasetReloadInterval time.Duration

	SessionTTL     time.Duration
	SearchDebounce time.Duration

	TelemetryEnabled bool
	OTLPEndpoint     string
	TraceSampleRatio float64

	PubSubProjectID           string
	DatasetReloadSubscription string

	RequireTLS bool
}

// Load reads the given dotenv files, if present, and then the environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv creates a Config from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:                      getEnvOrDefault("APP_PORT", "8080"),
		Environment:               getEnvOrDefault("APP_ENV", "development"),
		MapsAPIKey:                strings.TrimSpace(os.Getenv("MAPS_API_KEY")),
		PlacesBaseURL:             os.Getenv("PLACES_BASE_URL"),
		ScoringBaseURL:            getEnvOrDefault("SCORING_BASE_URL", scoring.DefaultBaseURL),
		DatasetSource:             strings.ToLower(getEnvOrDefault("DATASET_SOURCE", DatasetSourceFile)),
		DatasetPath:               getEnvOrDefault("DATASET_PATH", "data/stores.json"),
		OTLPEndpoint:              getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		PubSubProjectID:           os.Getenv("PUBSUB_PROJECT_ID"),
		DatasetReloadSubscription: os.Getenv("DATASET_RELOAD_SUBSCRIPTION"),
	}

	var errs []error

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"SCORING_TIMEOUT", scoring.DefaultTimeout, &cfg.ScoringTimeout},
		{"SESSION_TTL", 30 * time.Minute, &cfg.SessionTTL},
		{"SEARCH_DEBOUNCE", places.DefaultDebounce, &cfg.SearchDebounce},
		{"DATASET_RELOAD_INTERVAL", 0, &cfg.DatasetReloadInterval},
	}
	for _, d := range durations {
		v, err := durationOrDefault(d.key, d.def)
		if err != nil {
			errs = append(errs, err)
		}
		*d.dest = v
	}

	bools := []struct {
		key  string
		dest *bool
	}{
		{"OTEL_ENABLED", &cfg.TelemetryEnabled},
		{"REQUIRE_TLS", &cfg.RequireTLS},
	}
	for _, b := range bools {
		v, err := boolOrDefault(b.key, false)
		if err != nil {
			errs = append(errs, err)
		}
		*b.dest = v
	}

	ratio, err := floatOrDefault("OTEL_SAMPLE_RATIO", 1)
	if err == nil && (ratio < 0 || ratio > 1) {
		err = fmt.Errorf("OTEL_SAMPLE_RATIO: %v is outside [0, 1]", ratio)
	}
	if err != nil {
		errs = append(errs, err)
	}
	cfg.TraceSampleRatio = ratio

	switch cfg.DatasetSource {
	case DatasetSourceFile:
	case DatasetSourcePostgres:
		db, err := database.ConfigFromEnv()
		if err != nil {
			errs = append(errs, err)
		}
		cfg.Database = db
	default:
		errs = append(errs, fmt.Errorf("DATASET_SOURCE: unknown source %q", cfg.DatasetSource))
	}

	return cfg, errors.Join(errs...)
}

// Validate reports configuration the dashboard cannot run without.
func (c Config) Validate() error {
	if c.MapsAPIKey == "" {
		return ErrMissingMapsKey
	}
	return nil
}

// PubSubEnabled reports whether the dataset reload listener should start.
func (c Config) PubSubEnabled() bool {
	return c.PubSubProjectID != "" && c.DatasetReloadSubscription != ""
}

// IsProduction reports whether APP_ENV is production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func durationOrDefault(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return def, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}

func boolOrDefault(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func floatOrDefault(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
