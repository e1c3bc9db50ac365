package airquality

// Status is the qualitative label and display color for an AQI level.
type Status struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// StatusUnknown is returned for any AQI outside 1..5, including a missing one.
var StatusUnknown = Status{Label: "N/A", Color: "#808080"}

var aqiStatuses = map[int]Status{
	1: {Label: "Good", Color: "#00FF00"},
	2: {Label: "Fair", Color: "#87CEEB"},
	3: {Label: "Moderate", Color: "#FFFF00"},
	4: {Label: "Poor", Color: "#FFA500"},
	5: {Label: "Very Poor", Color: "#FF0000"},
}

// Classify maps an AQI level to its status. A nil AQI is unknown.
func Classify(aqi *int) Status {
	if aqi == nil {
		return StatusUnknown
	}
	return ClassifyValue(*aqi)
}

// ClassifyValue maps an AQI level to its status.
func ClassifyValue(aqi int) Status {
	if s, ok := aqiStatuses[aqi]; ok {
		return s
	}
	return StatusUnknown
}
