package airquality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airdash/airdash/internal/airquality"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		aqi   int
		label string
		color string
	}{
		{1, "Good", "#00FF00"},
		{2, "Fair", "#87CEEB"},
		{3, "Moderate", "#FFFF00"},
		{4, "Poor", "#FFA500"},
		{5, "Very Poor", "#FF0000"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := airquality.Classify(airquality.IntPtr(tt.aqi))
			assert.Equal(t, tt.label, got.Label)
			assert.Equal(t, tt.color, got.Color)
		})
	}
}

func TestClassify_OutOfRange(t *testing.T) {
	for _, aqi := range []int{0, -1, 6, 100} {
		assert.Equal(t, airquality.StatusUnknown, airquality.ClassifyValue(aqi), "aqi=%d", aqi)
	}

	got := airquality.Classify(nil)
	assert.Equal(t, "N/A", got.Label)
	assert.Equal(t, "#808080", got.Color)
}
