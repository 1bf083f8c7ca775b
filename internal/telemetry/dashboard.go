package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Prediction outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// DashboardGauges supplies the values behind the observable gauges. Nil
// functions are skipped.
type DashboardGauges struct {
	Sessions       func() int
	DatasetPoints  func() int
	DatasetVersion func() uint64
}

// DashboardMetrics records session and prediction activity.
type DashboardMetrics struct {
	predictions        metric.Int64Counter
	predictionDuration metric.Float64Histogram
	registration       metric.Registration
}

// NewDashboardMetrics creates the dashboard instruments on meter.
func NewDashboardMetrics(meter metric.Meter, gauges DashboardGauges) (*DashboardMetrics, error) {
	predictions, err := meter.Int64Counter(
		"radar.prediction.total",
		metric.WithDescription("Prediction submissions by outcome"),
		metric.WithUnit("{prediction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating prediction counter: %w", err)
	}

	predictionDuration, err := meter.Float64Histogram(
		"radar.prediction.duration",
		metric.WithDescription("Time from submit to scoring answer in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating prediction histogram: %w", err)
	}

	sessions, err := meter.Int64ObservableGauge(
		"radar.sessions.active",
		metric.WithDescription("Open dashboard sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions gauge: %w", err)
	}

	points, err := meter.Int64ObservableGauge(
		"radar.dataset.points",
		metric.WithDescription("Store points in the loaded dataset"),
		metric.WithUnit("{point}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dataset gauge: %w", err)
	}

	version, err := meter.Int64ObservableGauge(
		"radar.dataset.version",
		metric.WithDescription("Dataset version, bumped on every reload"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating version gauge: %w", err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		if gauges.Sessions != nil {
			o.ObserveInt64(sessions, int64(gauges.Sessions()))
		}
		if gauges.DatasetPoints != nil {
			o.ObserveInt64(points, int64(gauges.DatasetPoints()))
		}
		if gauges.DatasetVersion != nil {
			o.ObserveInt64(version, int64(gauges.DatasetVersion())) //nolint:gosec // versions stay far below MaxInt64
		}
		return nil
	}, sessions, points, version)
	if err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}

	return &DashboardMetrics{
		predictions:        predictions,
		predictionDuration: predictionDuration,
		registration:       reg,
	}, nil
}

// RecordPrediction records one completed submission.
func (m *DashboardMetrics) RecordPrediction(ctx context.Context, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))

	m.predictions.Add(ctx, 1, attrs)
	m.predictionDuration.Record(ctx, duration.Seconds(), attrs)
}

// Close unregisters the gauge callback.
func (m *DashboardMetrics) Close() error {
	return m.registration.Unregister()
}
