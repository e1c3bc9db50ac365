// Package worker runs background jobs alongside the HTTP server.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airdash/airdash/internal/airquality"
)

// Snapshotter loads the readings snapshot, refreshing it when expired.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*airquality.Table, error)
	RefreshSnapshot(ctx context.Context) (*airquality.Table, error)
}

// WarmerConfig holds configuration for creating a Warmer.
type WarmerConfig struct {
	Service Snapshotter
	Logger  zerolog.Logger

	// OnStart loads the snapshot once before the first tick.
	OnStart bool

	// Interval between warm-ups. Zero disables periodic warming.
	Interval time.Duration

	// Timeout bounds a single warm-up (default: 30 seconds).
	Timeout time.Duration
}

// Warmer keeps the readings cache populated. Scheduled warm-ups only call
// Snapshot, so a cached table is replaced early only by an explicit Reload.
type Warmer struct {
	service  Snapshotter
	logger   zerolog.Logger
	onStart  bool
	interval time.Duration
	timeout  time.Duration

	mu    sync.RWMutex
	stats WarmStats
}

// WarmStats tracks warm-up statistics.
type WarmStats struct {
	Runs         int64
	Reloads      int64
	Failures     int64
	LastRunAt    time.Time
	LastDuration time.Duration
	LastRowCount int
	LastError    string
}

// NewWarmer creates a new cache warmer.
func NewWarmer(cfg WarmerConfig) *Warmer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Warmer{
		service:  cfg.Service,
		logger:   cfg.Logger,
		onStart:  cfg.OnStart,
		interval: cfg.Interval,
		timeout:  timeout,
	}
}

// Enabled reports whether Run would do any work.
func (w *Warmer) Enabled() bool {
	return w.onStart || w.interval > 0
}

// Run warms the cache until ctx is cancelled.
func (w *Warmer) Run(ctx context.Context) {
	if w.onStart {
		_ = w.WarmOnce(ctx)
	}
	if w.interval <= 0 {
		return
	}

	w.logger.Info().Dur("interval", w.interval).Msg("cache warmer started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("cache warmer stopped")
			return
		case <-ticker.C:
			_ = w.WarmOnce(ctx)
		}
	}
}

// WarmOnce loads the snapshot once and records the outcome.
func (w *Warmer) WarmOnce(ctx context.Context) error {
	return w.load(ctx, "warm-up", w.service.Snapshot)
}

// Reload drops the cached table and loads a fresh one.
func (w *Warmer) Reload(ctx context.Context) error {
	w.mu.Lock()
	w.stats.Reloads++
	w.mu.Unlock()
	w.logger.Info().Msg("reloading readings snapshot")
	return w.load(ctx, "reload", w.service.RefreshSnapshot)
}

func (w *Warmer) load(ctx context.Context, op string, fn func(context.Context) (*airquality.Table, error)) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	table, err := fn(ctx)
	duration := time.Since(start)

	w.mu.Lock()
	w.stats.Runs++
	w.stats.LastRunAt = start
	w.stats.LastDuration = duration
	if err != nil {
		w.stats.Failures++
		w.stats.LastError = err.Error()
	} else {
		w.stats.LastError = ""
		w.stats.LastRowCount = table.Len()
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn().Err(err).Str("op", op).Dur("duration", duration).Msg("cache " + op + " failed")
		return err
	}

	w.logger.Debug().
		Str("op", op).
		Int("rows", table.Len()).
		Dur("duration", duration).
		Msg("cache " + op + " completed")
	return nil
}

// Stats returns a copy of the current statistics.
func (w *Warmer) Stats() WarmStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}
