// Package handler provides HTTP handlers for the air quality dashboard.
package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/airdash/airdash/internal/airquality"
	"github.com/airdash/airdash/internal/api/middleware"
	"github.com/airdash/airdash/internal/api/models"
	"github.com/airdash/airdash/internal/api/response"
	"github.com/airdash/airdash/internal/dashboard"
)

// Snapshotter provides the current readings table.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*airquality.Table, error)
}

// DashboardConfig holds dependencies for DashboardHandler.
type DashboardConfig struct {
	Service  Snapshotter
	Renderer *dashboard.Renderer
	Options  dashboard.Options
	Logger   zerolog.Logger
	// Now is used as the reference time for the history window. Defaults to time.Now.
	Now func() time.Time
}

// DashboardHandler serves the dashboard page, its chart and the JSON view.
type DashboardHandler struct {
	service  Snapshotter
	renderer *dashboard.Renderer
	options  dashboard.Options
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(cfg DashboardConfig) *DashboardHandler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	opts := cfg.Options
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = dashboard.DefaultHistoryWindow
	}
	if !opts.Latest.Valid() {
		opts.Latest = dashboard.LatestByPosition
	}
	return &DashboardHandler{
		service:  cfg.Service,
		renderer: cfg.Renderer,
		options:  opts,
		logger:   cfg.Logger,
		now:      now,
	}
}

// MaxCityLength is the longest accepted city query parameter, in bytes.
const MaxCityLength = 100

// selectedCity returns the city query parameter, falling back to the default city.
// Names that are not valid UTF-8 or exceed MaxCityLength are rejected.
func selectedCity(r *http.Request) (string, *models.FieldError) {
	city := r.URL.Query().Get("city")
	switch {
	case city == "":
		return airquality.DefaultCity().Name, nil
	case !utf8.ValidString(city):
		return "", &models.FieldError{Field: "city", Message: "must be valid UTF-8", Code: "INVALID_ENCODING"}
	case len(city) > MaxCityLength:
		return "", &models.FieldError{Field: "city", Message: "is too long", Code: "TOO_LONG"}
	}
	return city, nil
}

// plan loads the snapshot and composes the view for city.
func (h *DashboardHandler) plan(r *http.Request, city string) (dashboard.Plan, *airquality.Table, error) {
	table, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("city", city).
			Msg("failed to load air quality data")
		return dashboard.Plan{City: city}, nil, err
	}
	return dashboard.Compose(table, city, h.now(), h.options), table, nil
}

func badCity(w http.ResponseWriter, r *http.Request, fieldErr *models.FieldError) {
	response.BadRequest(w, r, "invalid city parameter", []models.FieldError{*fieldErr})
}

// Page handles GET / - the dashboard page.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	city, fieldErr := selectedCity(r)
	if fieldErr != nil {
		h.errorPage(w, r, http.StatusBadRequest, "The requested city name is not valid.")
		return
	}

	plan, _, err := h.plan(r, city)
	if err != nil {
		h.errorPage(w, r, http.StatusServiceUnavailable, unavailableMessage(err))
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderPage(&buf, dashboard.NewPageData(plan)); err != nil {
		h.logger.Error().Err(err).Str("city", plan.City).Msg("failed to render dashboard page")
		h.errorPage(w, r, http.StatusInternalServerError, "The dashboard could not be rendered.")
		return
	}
	response.HTML(w, r, http.StatusOK, buf.Bytes())
}

// Chart handles GET /chart - the AQI trend chart document embedded by the page.
func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	city, fieldErr := selectedCity(r)
	if fieldErr != nil {
		badCity(w, r, fieldErr)
		return
	}

	plan, _, err := h.plan(r, city)
	if err != nil {
		response.ServiceUnavailable(w, r, unavailableMessage(err))
		return
	}

	var buf bytes.Buffer
	err = dashboard.RenderChart(&buf, plan)
	switch {
	case errors.Is(err, dashboard.ErrNoChart):
		detail := plan.Warning
		if detail == "" {
			detail = "no chart available for " + plan.City
		}
		response.NotFound(w, r, detail)
		return
	case err != nil:
		h.logger.Error().Err(err).Str("city", plan.City).Msg("failed to render chart")
		response.InternalError(w, r, "failed to render chart")
		return
	}
	response.HTML(w, r, http.StatusOK, buf.Bytes())
}

// View handles GET /api/v1/dashboard - the composed view as JSON.
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	city, fieldErr := selectedCity(r)
	if fieldErr != nil {
		badCity(w, r, fieldErr)
		return
	}

	plan, table, err := h.plan(r, city)
	if err != nil {
		response.ServiceUnavailable(w, r, unavailableMessage(err))
		return
	}
	view := models.DashboardView{
		Plan:        plan,
		GeneratedAt: models.Timestamp(h.now()),
		DataAsOf:    models.Timestamp(table.FetchedAt),
	}
	if loc, ok := airquality.LookupCity(plan.City); ok {
		view.Location = &loc
	}
	response.JSON(w, r, http.StatusOK, view)
}

// Cities handles GET /api/v1/cities - the city registry.
func (h *DashboardHandler) Cities(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.CityList{
		Items:       airquality.Cities(),
		DefaultCity: airquality.DefaultCity().Name,
	})
}

func (h *DashboardHandler) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	var buf bytes.Buffer
	err := h.renderer.RenderError(&buf, &dashboard.ErrorData{
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to render error page")
		http.Error(w, message, status)
		return
	}
	response.HTML(w, r, status, buf.Bytes())
}

func unavailableMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "The air quality database did not respond in time. Please try again later."
	}
	return "The air quality database is currently unavailable. Please try again later."
}
