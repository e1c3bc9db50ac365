// Package postgres reads the air_quality_data table from PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/airdash/airdash/internal/airquality"
	"github.com/airdash/airdash/internal/database"
)

const sourceName = "postgres"

// readingsQuery reads the whole table; rows keep the order the server returns.
const readingsQuery = `SELECT * FROM air_quality_data`

// SQLSTATE codes for a missing table or column.
const (
	codeUndefinedTable  = "42P01"
	codeUndefinedColumn = "42703"
)

// Config holds configuration for the PostgreSQL source.
type Config struct {
	Database database.Config

	// Location interprets timestamps stored without a zone (default: UTC).
	Location *time.Location

	Logger zerolog.Logger
}

// Source is a PostgreSQL implementation of airquality.Source.
// Each fetch opens its own connection and closes it before returning.
type Source struct {
	db     database.Config
	loc    *time.Location
	logger zerolog.Logger
}

// NewSource creates a new PostgreSQL readings source.
func NewSource(cfg Config) *Source {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Source{
		db:     cfg.Database,
		loc:    loc,
		logger: cfg.Logger,
	}
}

// Name implements airquality.Source.
func (s *Source) Name() string {
	return sourceName
}

// FetchReadings implements airquality.Source.
func (s *Source) FetchReadings(ctx context.Context) (*airquality.Table, error) {
	conn, err := database.Connect(ctx, s.db)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := conn.Close(context.WithoutCancel(ctx)); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("failed to close database connection")
		}
	}()

	rows, err := conn.Query(ctx, readingsQuery)
	if err != nil {
		return nil, queryError("query readings", err)
	}
	defer rows.Close()

	dec, err := newRowDecoder(rows.FieldDescriptions(), s.loc)
	if err != nil {
		return nil, err
	}

	var readings []airquality.Reading
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(readings)+1, err)
		}
		reading, err := dec.decode(values)
		if err != nil {
			return nil, fmt.Errorf("decode row %d: %w", len(readings)+1, err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate readings", err)
	}

	s.logger.Debug().Int("rows", len(readings)).Msg("readings table loaded")

	return airquality.NewTable(sourceName, time.Now(), readings), nil
}

// Ping checks that the database accepts connections.
func (s *Source) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

// queryError wraps err, marking schema errors as a malformed table.
func queryError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUndefinedTable, codeUndefinedColumn:
			return fmt.Errorf("%w: %s: %w", airquality.ErrMalformedTable, op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ airquality.Source = (*Source)(nil)

