package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/storeradar/radar/internal/api/models"
)

// RateLimitConfig is a request budget per key and window.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

var (
	// SessionCreateRateLimit bounds session creation per client IP.
	SessionCreateRateLimit = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}

	// ExpensiveRateLimit bounds prediction submits, each of which reaches
	// the scoring service.
	ExpensiveRateLimit = RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute}

	// StandardRateLimit bounds camera moves, filter edits and searches.
	StandardRateLimit = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits by client IP as resolved by chi's RealIP.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return limiter(cfg, httprate.KeyByRealIP)
}

// RateLimitBySession limits by the sessionId URL parameter so a dashboard
// behind a shared NAT keeps its own budget. Outside session routes it falls
// back to the client IP.
func RateLimitBySession(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return limiter(cfg, func(r *http.Request) (string, error) {
		if id := chi.URLParam(r, "sessionId"); id != "" {
			return "session:" + id, nil
		}
		return httprate.KeyByRealIP(r)
	})
}

func limiter(cfg RateLimitConfig, key httprate.KeyFunc) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(exceeded(cfg.WindowLength)),
	)
}

// exceeded answers with a 429 problem. httprate does not expose the reset
// time, so Retry-After is the full window.
func exceeded(window time.Duration) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(window.Seconds())))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)
		models.KindTooManyRequests.New(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.").
			WithCode(models.CodeRateLimited).
			WithInstance(r.URL.Path).
			Write(w)
	}
}
