package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/storeradar/radar/internal/provider/resilience"
)

const meterName = "github.com/storeradar/radar/internal/api/middleware"

// Metrics holds the HTTP server instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates the HTTP server instruments on meter, or on the global
// meter provider when meter is nil.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	var m Metrics
	var errs [4]error
	m.requestDuration, errs[0] = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of dashboard API requests"), metric.WithUnit("s"))
	m.requestTotal, errs[1] = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Dashboard API requests by route and status"), metric.WithUnit("{request}"))
	m.requestsInFlight, errs[2] = meter.Int64UpDownCounter("http.server.requests_in_flight",
		metric.WithDescription("Dashboard API requests being served"), metric.WithUnit("{request}"))
	m.responseSize, errs[3] = meter.Int64Histogram("http.server.response.size",
		metric.WithDescription("Response body size"), metric.WithUnit("By"))
	if err := errors.Join(errs[:]...); err != nil {
		return nil, fmt.Errorf("creating http instruments: %w", err)
	}
	return &m, nil
}

// Middleware returns an HTTP middleware that records metrics for each
// request, labelled by route pattern rather than path.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// The route is unknown until the router runs.
			inFlight := metric.WithAttributes(attribute.String("http.method", r.Method))
			m.requestsInFlight.Add(r.Context(), 1, inFlight)
			defer m.requestsInFlight.Add(r.Context(), -1, inFlight)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routePattern(r)),
				attribute.String("http.status_code", strconv.Itoa(wrapped.statusCode)),
			}
			if wrapped.statusCode >= http.StatusBadRequest {
				attrs = append(attrs, attribute.Bool("error", true))
			}

			opts := metric.WithAttributes(attrs...)
			m.requestDuration.Record(r.Context(), time.Since(start).Seconds(), opts)
			m.requestTotal.Add(r.Context(), 1, opts)
			m.responseSize.Record(r.Context(), wrapped.written, opts)
		})
	}
}

// ProviderMetrics holds the instruments for scoring and places calls.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
}

// NewProviderMetrics creates the provider instruments on meter, or on the
// global meter provider when meter is nil.
func NewProviderMetrics(meter metric.Meter) (*ProviderMetrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	var m ProviderMetrics
	var errs [4]error
	m.requestDuration, errs[0] = meter.Float64Histogram("provider.request.duration",
		metric.WithDescription("Duration of outbound provider calls"), metric.WithUnit("s"))
	m.requestTotal, errs[1] = meter.Int64Counter("provider.request.total",
		metric.WithDescription("Outbound provider calls by outcome"), metric.WithUnit("{request}"))
	m.cacheHits, errs[2] = meter.Int64Counter("provider.cache.hit",
		metric.WithDescription("Place details served from the session cache"), metric.WithUnit("{hit}"))
	m.cacheMisses, errs[3] = meter.Int64Counter("provider.cache.miss",
		metric.WithDescription("Place details fetched from the provider"), metric.WithUnit("{miss}"))
	if err := errors.Join(errs[:]...); err != nil {
		return nil, fmt.Errorf("creating provider instruments: %w", err)
	}
	return &m, nil
}

// RecordRequest records one provider call.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	var opts metric.MeasurementOption
	if err != nil {
		opts = providerAttrs(provider, operation,
			attribute.Bool("error", true),
			attribute.String("error.type", errorType(err)),
		)
	} else {
		opts = providerAttrs(provider, operation)
	}

	// Recorded after the call; the request context may already be done.
	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), opts)
	m.requestTotal.Add(ctx, 1, opts)
}

// RecordCacheHit counts a lookup answered from cache.
func (m *ProviderMetrics) RecordCacheHit(provider, operation string) {
	m.cacheHits.Add(context.Background(), 1, providerAttrs(provider, operation))
}

// RecordCacheMiss counts a lookup that went to the provider.
func (m *ProviderMetrics) RecordCacheMiss(provider, operation string) {
	m.cacheMisses.Add(context.Background(), 1, providerAttrs(provider, operation))
}

func providerAttrs(provider, operation string, extra ...attribute.KeyValue) metric.MeasurementOption {
	attrs := append([]attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
	}, extra...)
	return metric.WithAttributes(attrs...)
}

// errorType buckets provider errors into a small label set.
func errorType(err error) string {
	var serverErr *resilience.ServerError
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &serverErr):
		return "server_error"
	default:
		return "other"
	}
}
