package models

import "time"

// ChartTrace is one Plotly trace. Nil Y entries render as gaps.
type ChartTrace struct {
	Name  string     `json:"name"`
	Type  string     `json:"type"`
	Mode  string     `json:"mode,omitempty"`
	X     []string   `json:"x"`
	Y     []*float64 `json:"y"`
	Color string     `json:"color"`
	Width float64    `json:"width,omitempty"`
	Dash  string     `json:"dash,omitempty"`
}

// RecentRow is a display-ready row of the recent insights table
type RecentRow struct {
	Date       string `json:"date"`
	YesPrice   string `json:"yes_price"`
	MAShort    string `json:"ma_short"`
	Change     string `json:"change"`
	Volatility string `json:"volatility"`
	Volume     string `json:"volume"`
	HighVolume bool   `json:"high_volume"`
}

// Dashboard is the view model behind both the HTML page and the dashboard API
type Dashboard struct {
	MarketID    string         `json:"market_id"`
	Details     *MarketDetails `json:"details"`
	Series      *DerivedSeries `json:"series"`
	PriceTraces []ChartTrace   `json:"price_traces"`
	VolumeTrace *ChartTrace    `json:"volume_trace,omitempty"`
	Recent      []RecentRow    `json:"recent"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// HasChartData reports whether there is any history to plot
func (d *Dashboard) HasChartData() bool {
	return d.Series != nil && !d.Series.IsEmpty()
}

// Warning surfaces the placeholder warning of the details, if any
func (d *Dashboard) Warning() string {
	if d.Details == nil {
		return ""
	}
	return d.Details.Warning
}
