package airquality

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/airdash/airdash/internal/airquality"

// cacheMetrics holds the instruments for the snapshot cache.
type cacheMetrics struct {
	refreshDuration metric.Float64Histogram
	refreshTotal    metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	rowsLoaded      metric.Int64Histogram
}

func newCacheMetrics() (*cacheMetrics, error) {
	meter := otel.Meter(instrumentationName)

	refreshDuration, err := meter.Float64Histogram(
		"airquality.refresh.duration",
		metric.WithDescription("Duration of readings table refreshes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	refreshTotal, err := meter.Int64Counter(
		"airquality.refresh.total",
		metric.WithDescription("Total number of readings table refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"airquality.cache.hit",
		metric.WithDescription("Number of snapshot cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"airquality.cache.miss",
		metric.WithDescription("Number of snapshot cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	rowsLoaded, err := meter.Int64Histogram(
		"airquality.refresh.rows",
		metric.WithDescription("Rows loaded per refresh"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	return &cacheMetrics{
		refreshDuration: refreshDuration,
		refreshTotal:    refreshTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		rowsLoaded:      rowsLoaded,
	}, nil
}

func (m *cacheMetrics) recordRefresh(source string, duration time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("source.name", source)}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// Background context so a cancelled request still records its refresh.
	ctx := context.Background()
	m.refreshDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.refreshTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err == nil {
		m.rowsLoaded.Record(ctx, int64(rows), metric.WithAttributes(attrs...))
	}
}

func (m *cacheMetrics) recordHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1)
}

func (m *cacheMetrics) recordMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(ctx, 1)
}
