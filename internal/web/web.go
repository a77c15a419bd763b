package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/irfndi/polymarket-insight/internal/models"
	"github.com/irfndi/polymarket-insight/internal/utils"
)

// DashboardTemplate is the name of the page template
const DashboardTemplate = "dashboard.html"

// EmptyPrompt is shown when the page is opened without a market ID
const EmptyPrompt = "Please enter a Market ID to fetch data."

//go:embed templates/*.html
var templateFS embed.FS

// PlotlyLine carries the line styling of a scatter trace
type PlotlyLine struct {
	Color string  `json:"color"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// PlotlyMarker carries the fill colour of a bar trace
type PlotlyMarker struct {
	Color string `json:"color"`
}

// PlotlyTrace is the client-side shape of models.ChartTrace
type PlotlyTrace struct {
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Mode   string        `json:"mode,omitempty"`
	X      []string      `json:"x"`
	Y      []*float64    `json:"y"`
	Line   *PlotlyLine   `json:"line,omitempty"`
	Marker *PlotlyMarker `json:"marker,omitempty"`
}

// PageData is the input of the dashboard template
type PageData struct {
	Title        string
	Markets      []models.MarketSummary
	MarketID     string
	Message      string
	Dashboard    *models.Dashboard
	PriceTraces  []PlotlyTrace
	VolumeTraces []PlotlyTrace
}

// NewPageData prepares the template input. A nil dashboard renders the prompt.
func NewPageData(markets []models.MarketSummary, marketID string, dashboard *models.Dashboard) PageData {
	data := PageData{
		Title:    "Polymarket Insight Engine",
		Markets:  markets,
		MarketID: marketID,
	}
	if dashboard == nil {
		data.Message = EmptyPrompt
		return data
	}

	data.Dashboard = dashboard
	if dashboard.Details != nil && !dashboard.Details.IsPlaceholder() {
		data.Title = dashboard.Details.Name + " | Polymarket Insight Engine"
	}
	if dashboard.HasChartData() {
		data.PriceTraces = PlotlyTraces(dashboard.PriceTraces)
		if dashboard.VolumeTrace != nil {
			data.VolumeTraces = PlotlyTraces([]models.ChartTrace{*dashboard.VolumeTrace})
		}
	}
	return data
}

// PlotlyTraces maps chart traces to the structure plotly.js expects
func PlotlyTraces(traces []models.ChartTrace) []PlotlyTrace {
	out := make([]PlotlyTrace, 0, len(traces))
	for _, t := range traces {
		pt := PlotlyTrace{
			Name: t.Name,
			Type: t.Type,
			Mode: t.Mode,
			X:    t.X,
			Y:    t.Y,
		}
		if t.Type == "bar" {
			pt.Marker = &PlotlyMarker{Color: t.Color}
		} else {
			pt.Line = &PlotlyLine{Color: t.Color, Width: t.Width, Dash: t.Dash}
		}
		out = append(out, pt)
	}
	return out
}

// Renderer executes the embedded page templates
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Template exposes the parsed set, e.g. for gin's SetHTMLTemplate
func (r *Renderer) Template() *template.Template {
	return r.tmpl
}

// SetSecurityHeaders applies the headers served with every HTML page
func SetSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"currency": func(v interface{}) string {
			return utils.FormatCurrency(v, true)
		},
		"price": func(d decimal.Decimal) string {
			return "$" + d.StringFixed(2)
		},
		"yesno": func(b bool) string {
			if b {
				return "Yes"
			}
			return "No"
		},
		"percent": utils.FormatRatioAsPercentage,
		"decimal": utils.FormatDecimal,
	}
}
