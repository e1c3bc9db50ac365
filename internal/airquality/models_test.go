package airquality_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdash/airdash/internal/airquality"
)

func TestTable_ForCity(t *testing.T) {
	table := airquality.NewTable("test", time.Now(), []airquality.Reading{
		{City: "Recife", AQI: airquality.IntPtr(1)},
		{City: "Natal", AQI: airquality.IntPtr(2)},
		{City: "Recife", AQI: airquality.IntPtr(3)},
		{City: "recife", AQI: airquality.IntPtr(4)},
	})

	got := table.ForCity("Recife")
	require.Len(t, got, 2)
	assert.Equal(t, 1, *got[0].AQI)
	assert.Equal(t, 3, *got[1].AQI)

	assert.Empty(t, table.ForCity("RECIFE"))
	assert.Empty(t, table.ForCity("Manaus"))
}

func TestTable_NilSafe(t *testing.T) {
	var table *airquality.Table
	assert.Zero(t, table.Len())
	assert.Nil(t, table.ForCity("Recife"))
}

func TestReading_Concentration(t *testing.T) {
	r := airquality.Reading{PM25: 1, PM10: 2, NO2: 3, O3: 4, CO: 5, SO2: 6}

	var got []float64
	for _, p := range airquality.Pollutants {
		got = append(got, r.Concentration(p))
	}
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got)
	assert.True(t, math.IsNaN(r.Concentration("XYZ")))
}

func TestPollutant_DisplayName(t *testing.T) {
	var names []string
	for _, p := range airquality.Pollutants {
		names = append(names, p.DisplayName())
	}
	assert.Equal(t, []string{"PM2.5", "PM10", "NO2", "O3", "CO", "SO2"}, names)
}

func TestFormatConcentration(t *testing.T) {
	assert.Equal(t, "12.35", airquality.FormatConcentration(12.345))
	assert.Equal(t, "0.00", airquality.FormatConcentration(0))
	assert.Equal(t, "7.10", airquality.FormatConcentration(7.1))
	assert.Equal(t, "N/A", airquality.FormatConcentration(math.NaN()))
}

func TestCities(t *testing.T) {
	cities := airquality.Cities()
	require.Len(t, cities, 29)
	assert.Equal(t, "São Paulo", cities[0].Name)
	assert.Equal(t, "Palmas", cities[28].Name)

	seen := make(map[string]bool)
	for _, c := range cities {
		assert.False(t, seen[c.Name], "duplicate city %s", c.Name)
		seen[c.Name] = true
	}

	// Mutating the copy must not change the registry.
	cities[0].Name = "changed"
	assert.Equal(t, "São Paulo", airquality.DefaultCity().Name)
}

func TestLookupCity(t *testing.T) {
	c, ok := airquality.LookupCity("Boa Vista")
	require.True(t, ok)
	assert.InDelta(t, 2.8235, c.Lat, 1e-9)
	assert.InDelta(t, -60.6758, c.Lon, 1e-9)

	_, ok = airquality.LookupCity("boa vista")
	assert.False(t, ok)
}
