package airquality

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/airdash/airdash/internal/resilience"
)

// Source reads the full readings table.
type Source interface {
	// FetchReadings reads every row of the readings table in source order.
	FetchReadings(ctx context.Context) (*Table, error)

	// Name identifies the source in logs and metrics.
	Name() string
}

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Source is the readings table source.
	Source Source

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a fetched table is served (default: 5 minutes).
	CacheTTL time.Duration

	// QueryTimeout bounds a single refresh (default: 10 seconds).
	QueryTimeout time.Duration

	// Breaker guards the source. A default breaker is created when nil.
	Breaker *resilience.Breaker[*Table]

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service serves the readings table from a time-bounded cache.
// Concurrent misses share a single refresh.
type Service struct {
	source       Source
	logger       zerolog.Logger
	cacheTTL     time.Duration
	queryTimeout time.Duration
	breaker      *resilience.Breaker[*Table]
	now          func() time.Time
	metrics      *cacheMetrics

	group singleflight.Group

	mu          sync.RWMutex
	table       *Table
	cacheExpiry time.Time
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	queryTimeout := cfg.QueryTimeout
	if queryTimeout == 0 {
		queryTimeout = 10 * time.Second
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	breaker := cfg.Breaker
	if breaker == nil {
		breaker = resilience.NewBreaker[*Table](resilience.DefaultConfig(cfg.Source.Name()))
	}

	metrics, err := newCacheMetrics()
	if err != nil {
		cfg.Logger.Warn().Err(err).Msg("cache metrics unavailable")
	}

	return &Service{
		source:       cfg.Source,
		logger:       cfg.Logger,
		cacheTTL:     cacheTTL,
		queryTimeout: queryTimeout,
		breaker:      breaker,
		now:          now,
		metrics:      metrics,
	}
}

// Snapshot returns the readings table.
// A cached table is returned unchanged until it expires. After that the next
// call queries the source and replaces the cache.
func (s *Service) Snapshot(ctx context.Context) (*Table, error) {
	if table, ok := s.cached(); ok {
		s.metrics.recordHit(ctx)
		return table, nil
	}
	s.metrics.recordMiss(ctx)

	// The refresh outlives a caller that gives up so waiting callers still get it.
	ch := s.group.DoChan("snapshot", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RefreshSnapshot drops the cached table and loads a fresh one.
func (s *Service) RefreshSnapshot(ctx context.Context) (*Table, error) {
	s.InvalidateCache()
	return s.Snapshot(ctx)
}

// InvalidateCache clears the cached table.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = nil
	s.cacheExpiry = time.Time{}
}

// CacheStatus returns information about the current cache state.
func (s *Service) CacheStatus() CacheStatus {
	health := s.breaker.Health()

	s.mu.RLock()
	defer s.mu.RUnlock()

	status := CacheStatus{
		BreakerState: health.State.String(),
		LastError:    health.LastError,
	}
	if s.table == nil {
		return status
	}

	status.HasData = true
	status.FetchedAt = s.table.FetchedAt
	status.ExpiresAt = s.cacheExpiry
	status.IsExpired = !s.now().Before(s.cacheExpiry)
	status.RowCount = s.table.Len()
	status.Source = s.table.Source
	return status
}

// SourceHealth reports the breaker guarding the source.
func (s *Service) SourceHealth() resilience.Health {
	return s.breaker.Health()
}

// CacheStatus represents the current state of the cache.
type CacheStatus struct {
	HasData      bool
	FetchedAt    time.Time
	ExpiresAt    time.Time
	IsExpired    bool
	RowCount     int
	Source       string
	BreakerState string
	LastError    string
}

func (s *Service) cached() (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table != nil && s.now().Before(s.cacheExpiry) {
		return s.table, true
	}
	return nil, false
}

// refresh reads the table from the source. A failure leaves the previous
// table in place but never serves it past its expiry.
func (s *Service) refresh(ctx context.Context) (*Table, error) {
	// Another caller may have finished a refresh between our miss and this flight.
	if table, ok := s.cached(); ok {
		return table, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "airquality.refresh")
	defer span.End()

	s.logger.Debug().Str("source", s.source.Name()).Msg("refreshing air quality table")

	start := time.Now()
	table, err := s.breaker.Execute(func() (*Table, error) {
		return s.source.FetchReadings(ctx)
	})
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.recordRefresh(s.source.Name(), elapsed, 0, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error().
			Err(err).
			Str("source", s.source.Name()).
			Dur("duration", elapsed).
			Msg("failed to fetch air quality table")
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	if table.FetchedAt.IsZero() {
		table.FetchedAt = s.now()
	}

	s.mu.Lock()
	s.table = table
	s.cacheExpiry = s.now().Add(s.cacheTTL)
	expiresAt := s.cacheExpiry
	s.mu.Unlock()

	s.metrics.recordRefresh(s.source.Name(), elapsed, table.Len(), nil)
	span.SetAttributes(attribute.Int("airquality.rows", table.Len()))

	s.logger.Info().
		Int("rows", table.Len()).
		Dur("duration", elapsed).
		Time("expires_at", expiresAt).
		Msg("air quality table refreshed")

	return table, nil
}
