// Package main provides the entrypoint for the air quality dashboard server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/airdash/airdash/internal/airquality"
	"github.com/airdash/airdash/internal/airquality/postgres"
	"github.com/airdash/airdash/internal/api"
	"github.com/airdash/airdash/internal/api/middleware"
	"github.com/airdash/airdash/internal/config"
	"github.com/airdash/airdash/internal/dashboard"
	"github.com/airdash/airdash/internal/database"
	"github.com/airdash/airdash/internal/telemetry"
	"github.com/airdash/airdash/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "airdash"

func main() {
	ctx := context.Background()

	// Bootstrap logger until the configured level is known.
	log := newLogger(os.Getenv("APP_ENV") == "local", zerolog.InfoLevel)

	cfg, resolved, err := config.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log = newLogger(cfg.IsLocal(), level)

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Interface("secret_sources", resolved).
		Msg("starting air quality dashboard")

	loc, err := cfg.Location()
	if err != nil {
		log.Error().Err(err).Str("timezone", cfg.DataTimezone).Msg("invalid data timezone")
		os.Exit(1)
	}

	dbConfig := database.Config{
		URL:             cfg.DatabaseURL.Reveal(),
		ConnectTimeout:  cfg.ConnectTimeout,
		ApplicationName: serviceName,
	}
	// Reject a malformed DATABASE_URL at startup rather than on the first request.
	if _, err := database.ParseConfig(dbConfig); err != nil {
		log.Error().Err(err).Msg("invalid database configuration")
		os.Exit(1)
	}

	// Initialize OpenTelemetry
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		Logger:         log,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize telemetry")
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if tp.Enabled() {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	renderer, err := dashboard.LoadTemplates()
	if err != nil {
		log.Error().Err(err).Msg("failed to load templates")
		os.Exit(1)
	}

	source := postgres.NewSource(postgres.Config{
		Database: dbConfig,
		Location: loc,
		Logger:   log,
	})
	service := airquality.NewService(airquality.ServiceConfig{
		Source:       source,
		Logger:       log,
		CacheTTL:     cfg.CacheTTL,
		QueryTimeout: cfg.QueryTimeout,
	})

	warmer := worker.NewWarmer(worker.WarmerConfig{
		Service:  service,
		Logger:   log,
		OnStart:  cfg.WarmOnStart,
		Interval: cfg.WarmInterval,
		Timeout:  cfg.QueryTimeout + cfg.ConnectTimeout,
	})
	warmCtx, stopWarmer := context.WithCancel(ctx)
	defer stopWarmer()
	if warmer.Enabled() {
		go warmer.Run(warmCtx)
	}

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		RequireTLS:  cfg.RequireTLS,
		Service:     service,
		Status:      service,
		Pinger:      source,
		Warmer:      warmer,
		Renderer:    renderer,
		Options: dashboard.Options{
			Latest:        dashboard.LatestPolicy(cfg.LatestReadingPolicy),
			HistoryWindow: cfg.HistoryWindow,
		},
		CacheTTL: cfg.CacheTTL,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.QueryTimeout + cfg.ConnectTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	// SIGHUP reloads the snapshot without waiting for the TTL.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)

wait:
	for {
		select {
		case <-reload:
			go func() { _ = warmer.Reload(warmCtx) }()
		case sig := <-quit:
			log.Info().Str("signal", sig.String()).Msg("shutting down server")
			break wait
		case err := <-serverErr:
			log.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}

	stopWarmer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// newLogger builds the process logger. Local runs get human-readable output.
func newLogger(local bool, level zerolog.Level) zerolog.Logger {
	var log zerolog.Logger
	if local {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()
}
