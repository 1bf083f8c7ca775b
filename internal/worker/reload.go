// Package worker runs background dataset jobs for the API process.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storeradar/radar/internal/dataset"
)

// DefaultReloadTimeout bounds a single reload.
const DefaultReloadTimeout = 2 * time.Minute

// ReloadJobConfig holds configuration for creating a ReloadJob.
type ReloadJobConfig struct {
	Store      *dataset.Store
	Repository dataset.Repository
	Logger     zerolog.Logger

	// Timeout bounds each run (default: 2 minutes).
	Timeout time.Duration
}

// ReloadJob replaces the in-memory dataset from its repository. Sessions
// pick up the new version on their next render.
type ReloadJob struct {
	store   *dataset.Store
	repo    dataset.Repository
	logger  zerolog.Logger
	timeout time.Duration

	runMu   sync.Mutex
	mu      sync.RWMutex
	metrics ReloadMetrics
}

// ReloadMetrics tracks reload statistics.
type ReloadMetrics struct {
	TotalReloads  int64
	FailedReloads int64
	Checks        int64

	LastReloadAt       time.Time
	LastReloadDuration time.Duration
	LastPoints         int
	LastError          string
}

// ReloadResult is the outcome of one run.
type ReloadResult struct {
	StartTime time.Time
	Duration  time.Duration
	Points    int
	Version   uint64

	// CheckOnly means the repository was read but the store left untouched.
	CheckOnly bool
}

// NewReloadJob creates a reload job.
func NewReloadJob(cfg ReloadJobConfig) *ReloadJob {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultReloadTimeout
	}
	return &ReloadJob{
		store:   cfg.Store,
		repo:    cfg.Repository,
		logger:  cfg.Logger,
		timeout: timeout,
	}
}

// Run loads the repository and swaps the result into the store. On error the
// current dataset stays in place. Runs are serialized.
func (j *ReloadJob) Run(ctx context.Context) (*ReloadResult, error) {
	j.runMu.Lock()
	defer j.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	kept, err := j.store.Reload(ctx, j.repo)
	result := &ReloadResult{
		StartTime: start,
		Duration:  time.Since(start),
		Points:    kept,
		Version:   j.store.Snapshot().Version,
	}
	j.record(result, err)

	if err != nil {
		j.logger.Error().
			Err(err).
			Str("source", j.repo.Name()).
			Dur("duration", result.Duration).
			Msg("dataset reload failed")
		return nil, err
	}

	j.logger.Info().
		Str("source", j.repo.Name()).
		Int("points", result.Points).
		Uint64("version", result.Version).
		Dur("duration", result.Duration).
		Msg("dataset reloaded")
	return result, nil
}

// Check reads the repository without replacing the dataset.
func (j *ReloadJob) Check(ctx context.Context) (*ReloadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	points, err := j.repo.Load(ctx)

	j.mu.Lock()
	j.metrics.Checks++
	j.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("checking dataset source %s: %w", j.repo.Name(), err)
	}
	return &ReloadResult{
		StartTime: start,
		Duration:  time.Since(start),
		Points:    len(points),
		Version:   j.store.Snapshot().Version,
		CheckOnly: true,
	}, nil
}

// Schedule runs the job every interval until ctx is cancelled.
func (j *ReloadJob) Schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Failures are logged by Run and the current dataset is kept.
			_, _ = j.Run(ctx)
		}
	}
}

// GetMetrics returns a copy of the current metrics.
func (j *ReloadJob) GetMetrics() ReloadMetrics {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.metrics
}

func (j *ReloadJob) record(result *ReloadResult, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.metrics.TotalReloads++
	j.metrics.LastReloadAt = result.StartTime
	j.metrics.LastReloadDuration = result.Duration
	if err != nil {
		j.metrics.FailedReloads++
		j.metrics.LastError = err.Error()
		return
	}
	j.metrics.LastPoints = result.Points
	j.metrics.LastError = ""
}
