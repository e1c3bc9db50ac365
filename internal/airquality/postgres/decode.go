package postgres

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/airdash/airdash/internal/airquality"
)

// Column names of the readings table. Extra columns are ignored.
const (
	colCity       = "city"
	colMeasuredAt = "measured_at"
	colAQI        = "aqi"
	colPM25       = "pm25"
	colPM10       = "pm10"
	colNO2        = "no2"
	colO3         = "o3"
	colCO         = "co"
	colSO2        = "so2"
)

var requiredColumns = []string{
	colCity, colMeasuredAt, colAQI,
	colPM25, colPM10, colNO2, colO3, colCO, colSO2,
}

// Layouts accepted for measured_at stored as text.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// rowDecoder maps positional row values to a Reading by column name.
type rowDecoder struct {
	index map[string]int
	oids  []uint32
	loc   *time.Location
}

func newRowDecoder(fields []pgconn.FieldDescription, loc *time.Location) (*rowDecoder, error) {
	index := make(map[string]int, len(fields))
	oids := make([]uint32, len(fields))
	for i, f := range fields {
		name := strings.ToLower(f.Name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
		oids[i] = f.DataTypeOID
	}

	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", airquality.ErrMalformedTable, col)
		}
	}

	return &rowDecoder{index: index, oids: oids, loc: loc}, nil
}

func (d *rowDecoder) decode(values []any) (airquality.Reading, error) {
	if len(values) != len(d.oids) {
		return airquality.Reading{}, fmt.Errorf("%w: row has %d values for %d columns",
			airquality.ErrMalformedTable, len(values), len(d.oids))
	}

	measuredAt, err := d.timestamp(colMeasuredAt, values)
	if err != nil {
		return airquality.Reading{}, err
	}

	return airquality.Reading{
		City:       toString(values[d.index[colCity]]),
		MeasuredAt: measuredAt,
		AQI:        toAQI(values[d.index[colAQI]]),
		PM25:       toFloat(values[d.index[colPM25]]),
		PM10:       toFloat(values[d.index[colPM10]]),
		NO2:        toFloat(values[d.index[colNO2]]),
		O3:         toFloat(values[d.index[colO3]]),
		CO:         toFloat(values[d.index[colCO]]),
		SO2:        toFloat(values[d.index[colSO2]]),
	}, nil
}

// timestamp normalizes a column to time.Time. NULL becomes the zero time,
// which never falls inside a history window.
func (d *rowDecoder) timestamp(col string, values []any) (time.Time, error) {
	i := d.index[col]
	switch v := values[i].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		// timestamp and date carry no zone; pgx hands them back as UTC wall clock.
		if d.oids[i] == pgtype.TimestampOID || d.oids[i] == pgtype.DateOID {
			return time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), d.loc), nil
		}
		return v, nil
	case string:
		t, err := parseTimestamp(v, d.loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: column %q: %w", airquality.ErrMalformedTable, col, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: column %q has unsupported type %T",
			airquality.ErrMalformedTable, col, v)
	}
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// toAQI returns nil for NULL and for values that are not whole numbers,
// both of which classify as unknown.
func toAQI(v any) *int {
	switch n := v.(type) {
	case int16:
		return airquality.IntPtr(int(n))
	case int32:
		return airquality.IntPtr(int(n))
	case int64:
		return airquality.IntPtr(int(n))
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil
		}
		return &i
	}

	f := toFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	return airquality.IntPtr(int(f))
}

// toFloat returns NaN for NULL and unparseable values.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case pgtype.Numeric:
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return math.NaN()
		}
		return f.Float64
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
