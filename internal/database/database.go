// Package database provides PostgreSQL connection management.
//
// Connections are opened per query and closed by the caller; there is no pool.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrEmptyDSN is returned when no connection string is configured.
var ErrEmptyDSN = errors.New("database connection string is empty")

// Config holds database connection configuration.
type Config struct {
	// URL is the PostgreSQL connection string (URL or key/value form).
	URL string

	// ConnectTimeout bounds establishing the connection (default: 5 seconds).
	ConnectTimeout time.Duration

	// ApplicationName is reported to the server.
	ApplicationName string
}

// ParseConfig turns cfg into a pgx connection config.
func ParseConfig(cfg Config) (*pgx.ConnConfig, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyDSN
	}

	connConfig, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	connConfig.ConnectTimeout = timeout

	if cfg.ApplicationName != "" {
		connConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	return connConfig, nil
}

// Connect opens a single connection. The caller must close it.
func Connect(ctx context.Context, cfg Config) (*pgx.Conn, error) {
	connConfig, err := ParseConfig(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return conn, nil
}

// Ping opens a connection, pings the server and closes it.
func Ping(ctx context.Context, cfg Config) error {
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
