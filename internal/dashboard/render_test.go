package dashboard

import (
	"bytes"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdash/airdash/internal/airquality"
)

var renderNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func renderTable(readings ...airquality.Reading) *airquality.Table {
	return airquality.NewTable("test", renderNow, readings)
}

func mustRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := LoadTemplates()
	require.NoError(t, err)
	return r
}

func TestLoadTemplates_FailureSub(t *testing.T) {
	_, err := loadTemplatesFromFS(fstest.MapFS{}, "templates")
	assert.Error(t, err)
}

func TestLoadTemplates_FailureParse(t *testing.T) {
	badFS := fstest.MapFS{
		"templates/page.html":            {Data: []byte("{{ .")},
		"templates/partials/styles.html": {Data: []byte("")},
	}
	_, err := loadTemplatesFromFS(badFS, "templates")
	assert.Error(t, err)
}

func TestRenderPage_NotLoaded(t *testing.T) {
	var r *Renderer
	err := r.RenderPage(&bytes.Buffer{}, &PageData{})
	assert.ErrorIs(t, err, ErrTemplatesNotLoaded)
}

func TestRenderPage_Full(t *testing.T) {
	tbl := renderTable(airquality.Reading{
		City:       "São Paulo",
		MeasuredAt: renderNow.Add(-time.Hour),
		AQI:        airquality.IntPtr(3),
		PM25:       12.345, PM10: 20, NO2: 30, O3: 40, CO: 0.5, SO2: 5,
	})
	plan := Compose(tbl, "São Paulo", renderNow, DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, mustRenderer(t).RenderPage(&buf, NewPageData(plan)))
	html := buf.String()

	assert.Contains(t, html, "Air Quality Dashboard")
	assert.Contains(t, html, "AQI: 3")
	assert.Contains(t, html, "Moderate")
	assert.Contains(t, html, "#FFFF00")
	assert.Contains(t, html, "PM2.5")
	assert.Contains(t, html, "12.35")
	assert.Contains(t, html, "Pollutants Concentration (µg/m³)")
	assert.Contains(t, html, "Daily AQI Variation")
	assert.Contains(t, html, `<iframe class="chart"`)
	assert.Contains(t, html, "/chart?city=S%C3%A3o%20Paulo")
	assert.Contains(t, html, `<option value="São Paulo" selected>`)
	assert.Contains(t, html, `<option value="Palmas">`)
	assert.NotContains(t, html, `role="alert"`)
}

func TestRenderPage_NoData(t *testing.T) {
	plan := Compose(renderTable(), "Manaus", renderNow, DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, mustRenderer(t).RenderPage(&buf, NewPageData(plan)))
	html := buf.String()

	assert.Contains(t, html, "No data available for Manaus")
	assert.NotContains(t, html, "status-card\"")
	assert.NotContains(t, html, "Daily AQI Variation")
	assert.NotContains(t, html, "<iframe")
}

func TestRenderPage_NoRecentHistory(t *testing.T) {
	tbl := renderTable(airquality.Reading{
		City:       "Belém",
		MeasuredAt: renderNow.Add(-10 * 24 * time.Hour),
		AQI:        airquality.IntPtr(4),
	})
	plan := Compose(tbl, "Belém", renderNow, DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, mustRenderer(t).RenderPage(&buf, NewPageData(plan)))
	html := buf.String()

	assert.Contains(t, html, "AQI: 4")
	assert.Contains(t, html, "Poor")
	assert.Contains(t, html, "Insufficient data for historical analysis")
	assert.NotContains(t, html, "<iframe")
}

func TestRenderPage_EscapesCity(t *testing.T) {
	plan := Compose(renderTable(), "<script>x</script>", renderNow, DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, mustRenderer(t).RenderPage(&buf, NewPageData(plan)))
	assert.NotContains(t, buf.String(), "<script>x</script>")
}

func TestRenderError(t *testing.T) {
	var buf bytes.Buffer
	err := mustRenderer(t).RenderError(&buf, &ErrorData{Message: "Database unavailable", RequestID: "req_123"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Air Quality Dashboard")
	assert.Contains(t, buf.String(), "Database unavailable")
	assert.Contains(t, buf.String(), "req_123")
}

func TestRenderChart(t *testing.T) {
	tbl := renderTable(
		airquality.Reading{City: "Natal", MeasuredAt: renderNow.Add(-48 * time.Hour), AQI: airquality.IntPtr(2)},
		airquality.Reading{City: "Natal", MeasuredAt: renderNow.Add(-24 * time.Hour)},
	)
	plan := Compose(tbl, "Natal", renderNow, DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, plan))

	assert.Contains(t, buf.String(), "AQI Evolution in Natal")
	assert.Contains(t, buf.String(), "2024-06-08 12:00")
	assert.Contains(t, buf.String(), "2024-06-09 12:00")
}

func TestRenderChart_NoChart(t *testing.T) {
	plan := Compose(renderTable(), "Natal", renderNow, DefaultOptions())
	assert.ErrorIs(t, RenderChart(&bytes.Buffer{}, plan), ErrNoChart)
}

func TestChartURL(t *testing.T) {
	assert.Equal(t, "/chart?city=Jo%C3%A3o%20Pessoa", ChartURL("João Pessoa"))
}
