package models

import (
	"github.com/airdash/airdash/internal/airquality"
	"github.com/airdash/airdash/internal/dashboard"
)

// CityList is the response for GET /api/v1/cities.
type CityList struct {
	Items       []airquality.City `json:"items"`
	DefaultCity string            `json:"defaultCity"`
}

// DashboardView is the response for GET /api/v1/dashboard.
// Location is omitted for cities outside the registry.
type DashboardView struct {
	dashboard.Plan
	Location    *airquality.City `json:"location,omitempty"`
	GeneratedAt Timestamp        `json:"generatedAt"`
	DataAsOf    Timestamp        `json:"dataAsOf"`
}
