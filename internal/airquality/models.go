// Package airquality provides air quality readings, their classification and a
// cached snapshot of the readings table.
package airquality

import (
	"errors"
	"math"
	"strconv"
	"time"
)

// Source errors.
var (
	ErrSourceUnavailable = errors.New("air quality source unavailable")
	ErrMalformedTable    = errors.New("air quality table malformed")
)

// Pollutant represents an air quality pollutant type.
type Pollutant string

const (
	PollutantPM25 Pollutant = "PM25"
	PollutantPM10 Pollutant = "PM10"
	PollutantNO2  Pollutant = "NO2"
	PollutantO3   Pollutant = "O3"
	PollutantCO   Pollutant = "CO"
	PollutantSO2  Pollutant = "SO2"
)

// Pollutants lists the pollutants in display order.
var Pollutants = []Pollutant{
	PollutantPM25,
	PollutantPM10,
	PollutantNO2,
	PollutantO3,
	PollutantCO,
	PollutantSO2,
}

// DisplayName returns the label shown to users, e.g. "PM2.5".
func (p Pollutant) DisplayName() string {
	if p == PollutantPM25 {
		return "PM2.5"
	}
	return string(p)
}

// Reading is one row of the air_quality_data table.
// Pollutant concentrations are in µg/m³. A NULL concentration is stored as NaN.
type Reading struct {
	City       string
	MeasuredAt time.Time
	AQI        *int

	PM25 float64
	PM10 float64
	NO2  float64
	O3   float64
	CO   float64
	SO2  float64
}

// Concentration returns the reading's value for a pollutant.
func (r Reading) Concentration(p Pollutant) float64 {
	switch p {
	case PollutantPM25:
		return r.PM25
	case PollutantPM10:
		return r.PM10
	case PollutantNO2:
		return r.NO2
	case PollutantO3:
		return r.O3
	case PollutantCO:
		return r.CO
	case PollutantSO2:
		return r.SO2
	default:
		return math.NaN()
	}
}

// FormatConcentration renders a concentration with two decimals, or "N/A" for NaN.
func FormatConcentration(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Table is a point-in-time copy of the readings table.
// Readings keep the order the database returned them in.
type Table struct {
	Readings []Reading

	// FetchedAt is when this table was read from the source.
	FetchedAt time.Time

	// Source identifies the data source.
	Source string
}

// NewTable creates a table with the given readings.
func NewTable(source string, fetchedAt time.Time, readings []Reading) *Table {
	return &Table{
		Readings:  readings,
		FetchedAt: fetchedAt,
		Source:    source,
	}
}

// Len returns the number of readings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Readings)
}

// ForCity returns the readings whose city equals name exactly, in table order.
func (t *Table) ForCity(name string) []Reading {
	if t == nil {
		return nil
	}
	var out []Reading
	for _, r := range t.Readings {
		if r.City == name {
			out = append(out, r)
		}
	}
	return out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
