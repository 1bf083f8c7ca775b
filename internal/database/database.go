// Package database opens the PostgreSQL pool the store dataset is read from.
package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName identifies dashboard connections in pg_stat_activity.
const ApplicationName = "radar-api"

// Config describes the dataset database. The dashboard only reads from it, so
// the pool is small by default.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// ConfigFromEnv reads DB_* variables. Malformed numbers and durations are
// reported together.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Host:     envOr("DB_HOST", "localhost"),
		User:     envOr("DB_USER", "radar"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: envOr("DB_NAME", "radar"),
		SSLMode:  envOr("DB_SSL_MODE", "disable"),
	}

	var errs []error
	intVar := func(key string, def int, dest *int) {
		*dest = def
		if raw := os.Getenv(key); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				errs = append(errs, fmt.Errorf("%s: %q is not a non-negative integer", key, raw))
				return
			}
			*dest = v
		}
	}
	durationVar := func(key string, def time.Duration, dest *time.Duration) {
		*dest = def
		if raw := os.Getenv(key); raw != "" {
			v, err := time.ParseDuration(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dest = v
		}
	}

	intVar("DB_PORT", 5432, &cfg.Port)
	intVar("DB_MAX_CONNS", 4, &cfg.MaxConns)
	intVar("DB_MIN_CONNS", 0, &cfg.MinConns)
	durationVar("DB_CONN_MAX_LIFETIME", 30*time.Minute, &cfg.ConnMaxLifetime)
	durationVar("DB_CONNECT_TIMEOUT", 10*time.Second, &cfg.ConnectTimeout)

	if cfg.MaxConns == 0 {
		errs = append(errs, errors.New("DB_MAX_CONNS: must be at least 1"))
	}
	if cfg.MinConns > cfg.MaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS: %d exceeds DB_MAX_CONNS %d", cfg.MinConns, cfg.MaxConns))
	}

	return cfg, errors.Join(errs...)
}

// ConnectionString returns the postgres URL for c. Credentials are escaped.
func (c Config) ConnectionString() string {
	return c.url(c.Password).String()
}

// Redacted returns the connection string with the password masked.
func (c Config) Redacted() string {
	if c.Password == "" {
		return c.ConnectionString()
	}
	return c.url("xxxxx").String()
}

func (c Config) url(password string) *url.URL {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	if password != "" {
		u.User = url.UserPassword(c.User, password)
	} else {
		u.User = url.User(c.User)
	}

	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	q.Set("application_name", ApplicationName)
	u.RawQuery = q.Encode()
	return u
}

// Connect opens a read-only pool and verifies it with a ping bounded by
// ConnectTimeout.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns) //nolint:gosec // bounded by ConfigFromEnv
	poolConfig.MinConns = int32(cfg.MinConns) //nolint:gosec // bounded by ConfigFromEnv
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	poolConfig.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Redacted(), err)
	}

	return pool, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
