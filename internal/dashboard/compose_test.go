package dashboard_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdash/airdash/internal/airquality"
	"github.com/airdash/airdash/internal/dashboard"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func reading(city string, age time.Duration, aqi int) airquality.Reading {
	return airquality.Reading{
		City:       city,
		MeasuredAt: now.Add(-age),
		AQI:        airquality.IntPtr(aqi),
		PM25:       10, PM10: 20, NO2: 30, O3: 40, CO: 0.5, SO2: 5,
	}
}

func table(readings ...airquality.Reading) *airquality.Table {
	return airquality.NewTable("test", now, readings)
}

func TestCompose_FullView(t *testing.T) {
	r := reading("São Paulo", time.Hour, 3)
	r.PM25 = 12.345

	plan := dashboard.Compose(table(r), "São Paulo", now, dashboard.DefaultOptions())

	assert.Equal(t, dashboard.StateFull, plan.State)
	assert.Empty(t, plan.Warning)

	require.NotNil(t, plan.Status)
	assert.Equal(t, "AQI: 3", plan.Status.Headline)
	assert.Equal(t, "Moderate", plan.Status.Label)
	assert.Equal(t, "#FFFF00", plan.Status.Color)

	require.Len(t, plan.Metrics, 6)
	assert.Equal(t, "PM2.5", plan.Metrics[0].Name)
	assert.Equal(t, "12.35", plan.Metrics[0].Display)

	require.NotNil(t, plan.Chart)
	assert.Equal(t, "AQI Evolution in São Paulo", plan.Chart.Title)
	require.Len(t, plan.Chart.Points, 1)
	assert.Equal(t, 3, *plan.Chart.Points[0].AQI)
}

func TestCompose_MetricOrderAndFormat(t *testing.T) {
	r := reading("Recife", time.Hour, 1)
	r.SO2 = math.NaN()

	plan := dashboard.Compose(table(r), "Recife", now, dashboard.DefaultOptions())

	var got []string
	for _, m := range plan.Metrics {
		got = append(got, m.Name+": "+m.Display)
	}
	assert.Equal(t, []string{
		"PM2.5: 10.00", "PM10: 20.00", "NO2: 30.00", "O3: 40.00", "CO: 0.50", "SO2: N/A",
	}, got)
	assert.Nil(t, plan.Metrics[5].Value)
	require.NotNil(t, plan.Metrics[0].Value)
	assert.InDelta(t, 10.0, *plan.Metrics[0].Value, 1e-9)
}

func TestCompose_NoData(t *testing.T) {
	plan := dashboard.Compose(table(reading("São Paulo", time.Hour, 2)), "Manaus", now, dashboard.DefaultOptions())

	assert.Equal(t, dashboard.StateNoData, plan.State)
	assert.Equal(t, "No data available for Manaus", plan.Warning)
	assert.Nil(t, plan.Status)
	assert.Empty(t, plan.Metrics)
	assert.Nil(t, plan.Chart)
}

func TestCompose_NilTable(t *testing.T) {
	plan := dashboard.Compose(nil, "Natal", now, dashboard.DefaultOptions())
	assert.Equal(t, dashboard.StateNoData, plan.State)
}

func TestCompose_CityMatchIsCaseSensitive(t *testing.T) {
	tbl := table(reading("São Paulo", time.Hour, 2))

	assert.Equal(t, dashboard.StateNoData, dashboard.Compose(tbl, "são paulo", now, dashboard.DefaultOptions()).State)
	assert.Equal(t, dashboard.StateNoData, dashboard.Compose(tbl, "Sao Paulo", now, dashboard.DefaultOptions()).State)
	assert.Equal(t, dashboard.StateFull, dashboard.Compose(tbl, "São Paulo", now, dashboard.DefaultOptions()).State)
}

func TestWarnings(t *testing.T) {
	assert.Equal(t, "No data available for Palmas", dashboard.NoDataWarning("Palmas"))
	assert.Equal(t, "Insufficient data for historical analysis", dashboard.NoRecentHistoryWarning())
}

func TestCompose_NoRecentHistory(t *testing.T) {
	plan := dashboard.Compose(table(reading("Belém", 10*24*time.Hour, 4)), "Belém", now, dashboard.DefaultOptions())

	assert.Equal(t, dashboard.StateNoRecentHistory, plan.State)
	assert.Equal(t, "Insufficient data for historical analysis", plan.Warning)
	require.NotNil(t, plan.Status)
	assert.Equal(t, "Poor", plan.Status.Label)
	assert.Len(t, plan.Metrics, 6)
	assert.Nil(t, plan.Chart)
}

func TestCompose_WindowBoundary(t *testing.T) {
	week := 7 * 24 * time.Hour
	tests := []struct {
		name     string
		age      time.Duration
		included bool
	}{
		{"six days", 6 * 24 * time.Hour, true},
		{"exactly seven days", week, true},
		{"seven days and a second", week + time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := dashboard.Compose(table(reading("Natal", tt.age, 2)), "Natal", now, dashboard.DefaultOptions())
			if tt.included {
				assert.Equal(t, dashboard.StateFull, plan.State)
				require.NotNil(t, plan.Chart)
				assert.Len(t, plan.Chart.Points, 1)
			} else {
				assert.Equal(t, dashboard.StateNoRecentHistory, plan.State)
			}
		})
	}
}

func TestCompose_LatestIsLastRowInTableOrder(t *testing.T) {
	// The older reading sits later in the table.
	tbl := table(
		reading("Fortaleza", 2*24*time.Hour, 2),
		reading("Fortaleza", 10*24*time.Hour, 5),
	)

	plan := dashboard.Compose(tbl, "Fortaleza", now, dashboard.DefaultOptions())

	require.NotNil(t, plan.Status)
	assert.Equal(t, "AQI: 5", plan.Status.Headline)
	assert.Equal(t, "Very Poor", plan.Status.Label)

	require.NotNil(t, plan.Chart)
	require.Len(t, plan.Chart.Points, 1)
	assert.Equal(t, 2, *plan.Chart.Points[0].AQI)
}

func TestCompose_LatestByTimestamp(t *testing.T) {
	tbl := table(
		reading("Fortaleza", 2*24*time.Hour, 2),
		reading("Fortaleza", 10*24*time.Hour, 5),
	)
	opts := dashboard.DefaultOptions()
	opts.Latest = dashboard.LatestByTimestamp

	plan := dashboard.Compose(tbl, "Fortaleza", now, opts)

	require.NotNil(t, plan.Status)
	assert.Equal(t, "AQI: 2", plan.Status.Headline)
}

func TestCompose_LatestByTimestampTieGoesToLaterRow(t *testing.T) {
	tbl := table(
		reading("Natal", time.Hour, 1),
		reading("Natal", time.Hour, 4),
	)
	opts := dashboard.Options{Latest: dashboard.LatestByTimestamp}

	plan := dashboard.Compose(tbl, "Natal", now, opts)
	assert.Equal(t, "AQI: 4", plan.Status.Headline)
}

func TestCompose_ChartKeepsTableOrder(t *testing.T) {
	tbl := table(
		reading("Curitiba", 1*24*time.Hour, 1),
		reading("Natal", 2*24*time.Hour, 5),
		reading("Curitiba", 3*24*time.Hour, 3),
		reading("Curitiba", 2*24*time.Hour, 2),
	)

	plan := dashboard.Compose(tbl, "Curitiba", now, dashboard.DefaultOptions())

	require.NotNil(t, plan.Chart)
	var aqis []int
	for _, p := range plan.Chart.Points {
		aqis = append(aqis, *p.AQI)
	}
	assert.Equal(t, []int{1, 3, 2}, aqis)
}

func TestCompose_UnknownAQI(t *testing.T) {
	r := reading("Palmas", time.Hour, 0)
	r.AQI = nil

	plan := dashboard.Compose(table(r), "Palmas", now, dashboard.DefaultOptions())

	require.NotNil(t, plan.Status)
	assert.Equal(t, "AQI: N/A", plan.Status.Headline)
	assert.Equal(t, "N/A", plan.Status.Label)
	assert.Equal(t, "#808080", plan.Status.Color)
}

func TestCompose_OutOfRangeAQI(t *testing.T) {
	plan := dashboard.Compose(table(reading("Palmas", time.Hour, 7)), "Palmas", now, dashboard.DefaultOptions())

	assert.Equal(t, "AQI: 7", plan.Status.Headline)
	assert.Equal(t, "N/A", plan.Status.Label)
}

func TestCompose_CustomWindow(t *testing.T) {
	opts := dashboard.Options{Latest: dashboard.LatestByPosition, HistoryWindow: 24 * time.Hour}

	plan := dashboard.Compose(table(reading("Natal", 2*24*time.Hour, 2)), "Natal", now, opts)
	assert.Equal(t, dashboard.StateNoRecentHistory, plan.State)
}

func TestPlan_JSON(t *testing.T) {
	r := reading("Natal", time.Hour, 2)
	r.CO = math.NaN()

	plan := dashboard.Compose(table(r), "Natal", now, dashboard.DefaultOptions())

	body, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"state":"full"`)
	assert.Contains(t, string(body), `"headline":"AQI: 2"`)
}

func TestLatestPolicy_Valid(t *testing.T) {
	assert.True(t, dashboard.LatestByPosition.Valid())
	assert.True(t, dashboard.LatestByTimestamp.Valid())
	assert.False(t, dashboard.LatestPolicy("newest").Valid())
}
