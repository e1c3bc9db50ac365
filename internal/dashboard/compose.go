// Package dashboard composes and renders the per-city air quality view.
package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/airdash/airdash/internal/airquality"
)

// DefaultHistoryWindow is how far back the trend chart reaches.
const DefaultHistoryWindow = 7 * 24 * time.Hour

// State is the terminal state of a composed view.
type State string

const (
	// StateNoData means the city has no readings at all.
	StateNoData State = "no_data"

	// StateNoRecentHistory means there is a latest reading but nothing inside the history window.
	StateNoRecentHistory State = "no_recent_history"

	// StateFull means the status card, metrics and chart are all present.
	StateFull State = "full"
)

// LatestPolicy selects which reading is shown as the current one.
type LatestPolicy string

const (
	// LatestByPosition takes the last reading in table order.
	LatestByPosition LatestPolicy = "position"

	// LatestByTimestamp takes the reading with the greatest measured_at.
	// Ties go to the later row.
	LatestByTimestamp LatestPolicy = "timestamp"
)

// Valid reports whether p is a known policy.
func (p LatestPolicy) Valid() bool {
	return p == LatestByPosition || p == LatestByTimestamp
}

// Options tune composition.
type Options struct {
	Latest        LatestPolicy
	HistoryWindow time.Duration
}

// DefaultOptions returns the options matching the legacy dashboard.
func DefaultOptions() Options {
	return Options{
		Latest:        LatestByPosition,
		HistoryWindow: DefaultHistoryWindow,
	}
}

// Plan is the render plan for one city.
type Plan struct {
	City    string      `json:"city"`
	State   State       `json:"state"`
	Warning string      `json:"warning,omitempty"`
	Status  *StatusCard `json:"status,omitempty"`
	Metrics []Metric    `json:"metrics,omitempty"`
	Chart   *Chart      `json:"chart,omitempty"`
}

// StatusCard summarizes the latest reading.
type StatusCard struct {
	AQI        *int      `json:"aqi"`
	Headline   string    `json:"headline"`
	Label      string    `json:"label"`
	Color      string    `json:"color"`
	MeasuredAt time.Time `json:"measured_at"`
}

// Metric is one pollutant concentration of the latest reading.
type Metric struct {
	Pollutant airquality.Pollutant `json:"pollutant"`
	Name      string               `json:"name"`
	Value     *float64             `json:"value"`
	Display   string               `json:"display"`
}

// Chart is the AQI trend over the history window.
type Chart struct {
	Title  string       `json:"title"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is one reading on the trend chart.
type ChartPoint struct {
	MeasuredAt time.Time `json:"measured_at"`
	AQI        *int      `json:"aqi"`
}

const (
	warnNoData          = "No data available for %s"
	warnNoRecentHistory = "Insufficient data for historical analysis"
)

// NoDataWarning returns the warning shown when a city has no readings.
func NoDataWarning(city string) string {
	return fmt.Sprintf(warnNoData, city)
}

// NoRecentHistoryWarning returns the warning shown in place of the chart when
// no reading falls inside the history window.
func NoRecentHistoryWarning() string {
	return warnNoRecentHistory
}

// ChartTitle returns the trend chart title for a city.
func ChartTitle(city string) string {
	return "AQI Evolution in " + city
}

// Compose builds the render plan for city from the table as of now.
// City matching is exact and case-sensitive. Readings keep table order throughout.
func Compose(table *airquality.Table, city string, now time.Time, opts Options) Plan {
	plan := Plan{City: city}

	rows := table.ForCity(city)
	if len(rows) == 0 {
		plan.State = StateNoData
		plan.Warning = NoDataWarning(city)
		return plan
	}

	latest := pickLatest(rows, opts.Latest)
	plan.Status = statusCard(latest)
	plan.Metrics = metrics(latest)

	window := opts.HistoryWindow
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	recent := withinWindow(rows, now.Add(-window))
	if len(recent) == 0 {
		plan.State = StateNoRecentHistory
		plan.Warning = warnNoRecentHistory
		return plan
	}

	points := make([]ChartPoint, len(recent))
	for i, r := range recent {
		points[i] = ChartPoint{MeasuredAt: r.MeasuredAt, AQI: r.AQI}
	}
	plan.State = StateFull
	plan.Chart = &Chart{Title: ChartTitle(city), Points: points}
	return plan
}

func pickLatest(rows []airquality.Reading, policy LatestPolicy) airquality.Reading {
	if policy != LatestByTimestamp {
		return rows[len(rows)-1]
	}
	best := rows[0]
	for _, r := range rows[1:] {
		if !r.MeasuredAt.Before(best.MeasuredAt) {
			best = r
		}
	}
	return best
}

func statusCard(r airquality.Reading) *StatusCard {
	status := airquality.Classify(r.AQI)
	headline := "AQI: N/A"
	if r.AQI != nil {
		headline = "AQI: " + strconv.Itoa(*r.AQI)
	}
	return &StatusCard{
		AQI:        r.AQI,
		Headline:   headline,
		Label:      status.Label,
		Color:      status.Color,
		MeasuredAt: r.MeasuredAt,
	}
}

func metrics(r airquality.Reading) []Metric {
	out := make([]Metric, 0, len(airquality.Pollutants))
	for _, p := range airquality.Pollutants {
		v := r.Concentration(p)
		m := Metric{
			Pollutant: p,
			Name:      p.DisplayName(),
			Display:   airquality.FormatConcentration(v),
		}
		if !math.IsNaN(v) {
			m.Value = &v
		}
		out = append(out, m)
	}
	return out
}

// withinWindow keeps readings measured at or after cutoff.
func withinWindow(rows []airquality.Reading, cutoff time.Time) []airquality.Reading {
	var out []airquality.Reading
	for _, r := range rows {
		if !r.MeasuredAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
