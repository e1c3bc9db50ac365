package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/airdash/airdash/internal/airquality"
	"github.com/airdash/airdash/internal/api/models"
	"github.com/airdash/airdash/internal/api/response"
	"github.com/airdash/airdash/internal/resilience"
	"github.com/airdash/airdash/internal/worker"
)

const readinessTimeout = 3 * time.Second

// StatusReporter exposes the snapshot cache and source breaker state.
type StatusReporter interface {
	CacheStatus() airquality.CacheStatus
	SourceHealth() resilience.Health
}

// WarmerReporter exposes the cache warmer statistics.
type WarmerReporter interface {
	Enabled() bool
	Stats() worker.WarmStats
}

// Pinger checks connectivity to the backing database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsConfig holds dependencies for OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	Status    StatusReporter
	Pinger    Pinger
	Warmer    WarmerReporter
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	status    StatusReporter
	pinger    Pinger
	warmer    WarmerReporter
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		status:    cfg.Status,
		pinger:    cfg.Pinger,
		warmer:    cfg.Warmer,
	}
}

// HealthCheck handles GET /ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /ops/ready - readiness check against the database.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]any{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /ops/status - cache and source status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Providers: []models.ProviderStatus{},
	}
	if h.status == nil {
		response.JSON(w, r, http.StatusOK, status)
		return
	}

	cache := h.status.CacheStatus()
	status.Cache = models.CacheStatus{
		HasData:   cache.HasData,
		FetchedAt: models.TimestampPtr(&cache.FetchedAt),
		ExpiresAt: models.TimestampPtr(&cache.ExpiresAt),
		IsExpired: cache.IsExpired,
		RowCount:  cache.RowCount,
		Source:    cache.Source,
	}

	if h.warmer != nil {
		status.Warmer = warmerStatus(h.warmer)
	}

	src := h.status.SourceHealth()
	provider := models.ProviderStatus{
		Provider:      src.Name,
		Status:        breakerStatus(src.State),
		CircuitState:  src.State.String(),
		LastSuccessAt: models.TimestampPtr(src.LastSuccessAt),
		LastFailureAt: models.TimestampPtr(src.LastFailureAt),
	}
	if src.LastError != "" {
		msg := src.LastError
		provider.Message = &msg
	}
	status.Providers = append(status.Providers, provider)
	status.Status = provider.Status

	response.JSON(w, r, http.StatusOK, status)
}

func breakerStatus(state gobreaker.State) models.HealthStatus {
	switch state {
	case gobreaker.StateClosed:
		return models.HealthStatusOK
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusFail
	}
}

func warmerStatus(w WarmerReporter) *models.WarmerStatus {
	stats := w.Stats()
	out := &models.WarmerStatus{
		Enabled:        w.Enabled(),
		Runs:           stats.Runs,
		Reloads:        stats.Reloads,
		Failures:       stats.Failures,
		LastRunAt:      models.TimestampPtr(&stats.LastRunAt),
		LastDurationMs: stats.LastDuration.Milliseconds(),
		LastRowCount:   stats.LastRowCount,
	}
	if stats.LastError != "" {
		msg := stats.LastError
		out.LastError = &msg
	}
	return out
}
