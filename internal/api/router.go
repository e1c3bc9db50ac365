// Package api provides the HTTP surface of the air quality dashboard.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airdash/airdash/internal/api/handler"
	"github.com/airdash/airdash/internal/api/middleware"
	"github.com/airdash/airdash/internal/api/response"
	"github.com/airdash/airdash/internal/dashboard"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	Service  handler.Snapshotter
	Status   handler.StatusReporter
	Pinger   handler.Pinger
	Warmer   handler.WarmerReporter
	Renderer *dashboard.Renderer
	Options  dashboard.Options
	// CacheTTL bounds how long browsers may cache pages and API views.
	CacheTTL time.Duration
	// Now overrides the reference clock, for tests.
	Now func() time.Time
}

// NewRouter creates a new chi router with all routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airdash"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement

	dashboardHandler := handler.NewDashboardHandler(handler.DashboardConfig{
		Service:  cfg.Service,
		Renderer: cfg.Renderer,
		Options:  cfg.Options,
		Logger:   cfg.Logger,
		Now:      cfg.Now,
	})
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Status:    cfg.Status,
		Pinger:    cfg.Pinger,
		Warmer:    cfg.Warmer,
	})

	standardRateLimit := rateLimit(middleware.StandardRateLimit) // 100 req/min
	chartRateLimit := rateLimit(middleware.ChartRateLimit)       // 60 req/min
	cacheControl := middleware.CacheControl(cfg.CacheTTL)

	// Dashboard pages
	r.Group(func(r chi.Router) {
		r.Use(cacheControl)
		r.With(standardRateLimit).Get("/", dashboardHandler.Page)
		r.With(chartRateLimit).Get("/chart", dashboardHandler.Chart)
	})

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(standardRateLimit)
		r.Use(cacheControl)
		r.Get("/cities", dashboardHandler.Cities)
		r.Get("/dashboard", dashboardHandler.View)
	})

	// Ops endpoints
	r.Route("/ops", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.CacheControl(0))
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
		r.Get("/status", opsHandler.SystemStatus)
	})

	return r
}

// rateLimit limits cfg per client IP and rejects excess requests with a 429
// problem carrying the rate limit headers.
func rateLimit(cfg middleware.RateLimitConfig) func(http.Handler) http.Handler {
	cfg.OnLimit = func(w http.ResponseWriter, r *http.Request) {
		response.TooManyRequestsWithInfo(w, r, middleware.RateLimitExceeded, &response.RateLimitInfo{
			Limit:      cfg.RequestLimit,
			Remaining:  0,
			ResetAt:    time.Now().Add(cfg.WindowLength).Unix(),
			RetryAfter: int(cfg.WindowLength.Seconds()),
		})
	}
	return middleware.RateLimitByIP(cfg)
}
