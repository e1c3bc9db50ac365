package dashboard

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"github.com/airdash/airdash/internal/airquality"
)

//go:embed templates
var templatesFS embed.FS

// PageTitle is the heading of the dashboard page.
const PageTitle = "Air Quality Dashboard"

// ErrTemplatesNotLoaded is returned when rendering without loaded templates.
var ErrTemplatesNotLoaded = errors.New("dashboard templates not loaded")

var templateFuncs = template.FuncMap{
	// Colors come from the fixed classification table.
	"safeCSS": func(s string) template.CSS { return template.CSS(s) },
}

// Renderer renders dashboard pages from parsed templates.
type Renderer struct {
	tmpl *template.Template
}

// loadTemplatesFromFS parses page templates from dir in fsys.
func loadTemplatesFromFS(fsys fs.FS, dir string) (*template.Template, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	return template.New("dashboard").Funcs(templateFuncs).ParseFS(sub, "*.html", "partials/*.html")
}

// LoadTemplates parses the embedded templates. Call during startup; if it
// returns an error, do not start the server.
func LoadTemplates() (*Renderer, error) {
	tmpl, err := loadTemplatesFromFS(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// PageData is the view model for the dashboard page.
type PageData struct {
	Title    string
	Cities   []airquality.City
	Plan     Plan
	ChartURL string
}

// NewPageData builds the page view model for a composed plan.
func NewPageData(plan Plan) *PageData {
	return &PageData{
		Title:    PageTitle,
		Cities:   airquality.Cities(),
		Plan:     plan,
		ChartURL: ChartURL(plan.City),
	}
}

// ChartURL returns the path of the chart page for a city. Spaces are encoded
// as %20 so the URL survives attribute escaping unchanged.
func ChartURL(city string) string {
	return "/chart?city=" + strings.ReplaceAll(url.QueryEscape(city), "+", "%20")
}

// ErrorData is the view model for the error page.
type ErrorData struct {
	Title     string
	Message   string
	RequestID string
}

// RenderPage writes the dashboard page.
func (r *Renderer) RenderPage(w io.Writer, data *PageData) error {
	if r == nil || r.tmpl == nil {
		return ErrTemplatesNotLoaded
	}
	return r.tmpl.ExecuteTemplate(w, "page.html", data)
}

// RenderError writes the error page.
func (r *Renderer) RenderError(w io.Writer, data *ErrorData) error {
	if r == nil || r.tmpl == nil {
		return ErrTemplatesNotLoaded
	}
	if data.Title == "" {
		data.Title = PageTitle
	}
	return r.tmpl.ExecuteTemplate(w, "error.html", data)
}
