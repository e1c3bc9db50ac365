package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdash/airdash/internal/airquality"
)

func TestQueryError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		malformed bool
	}{
		{
			name:      "missing table",
			err:       &pgconn.PgError{Code: codeUndefinedTable, Message: `relation "air_quality_data" does not exist`},
			malformed: true,
		},
		{
			name:      "missing column",
			err:       fmt.Errorf("prepare: %w", &pgconn.PgError{Code: codeUndefinedColumn, Message: `column "aqi" does not exist`}),
			malformed: true,
		},
		{
			name: "permission denied",
			err:  &pgconn.PgError{Code: "42501", Message: "permission denied for table air_quality_data"},
		},
		{
			name: "timeout",
			err:  context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := queryError("query readings", tt.err)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.malformed, errors.Is(err, airquality.ErrMalformedTable))
			assert.Contains(t, err.Error(), "query readings")
		})
	}
}

func TestNewSource_Defaults(t *testing.T) {
	src := NewSource(Config{})

	assert.Equal(t, "postgres", src.Name())
	assert.NotNil(t, src.loc)
}
