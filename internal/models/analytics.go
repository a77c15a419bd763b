package models

import (
	"github.com/shopspring/decimal"
)

// DerivedPoint is an observation augmented with computed statistics.
// Statistics that are undefined at a position are invalid NullDecimals and
// serialize as JSON null.
type DerivedPoint struct {
	Observation
	MAShort     decimal.NullDecimal `json:"ma_short"`
	MALong      decimal.NullDecimal `json:"ma_long"`
	ChangeRatio decimal.NullDecimal `json:"change_ratio"`
	Volatility  decimal.NullDecimal `json:"volatility"`
	HighVolume  bool                `json:"high_volume"`
}

// AnalyticsWindows records the window sizes used to derive a series
type AnalyticsWindows struct {
	ShortMA     int     `json:"short_ma"`
	LongMA      int     `json:"long_ma"`
	Volatility  int     `json:"volatility"`
	HighVolumeK float64 `json:"high_volume_k"`
}

// SeriesSummary holds whole-series statistics shown next to the charts
type SeriesSummary struct {
	Points            int                 `json:"points"`
	HighVolumeDays    int                 `json:"high_volume_days"`
	FirstYesPrice     decimal.NullDecimal `json:"first_yes_price"`
	LastYesPrice      decimal.NullDecimal `json:"last_yes_price"`
	PeriodChangeRatio decimal.NullDecimal `json:"period_change_ratio"`
	MinYesPrice       decimal.NullDecimal `json:"min_yes_price"`
	MaxYesPrice       decimal.NullDecimal `json:"max_yes_price"`
	MeanVolume        decimal.NullDecimal `json:"mean_volume"`
}

// DerivedSeries represents the processed history of a market
type DerivedSeries struct {
	MarketID            string              `json:"market_id"`
	Points              []DerivedPoint      `json:"points"`
	Windows             AnalyticsWindows    `json:"windows"`
	HighVolumeThreshold decimal.NullDecimal `json:"high_volume_threshold"`
	Summary             SeriesSummary       `json:"summary"`
}

// IsEmpty reports whether the series carries no points
func (s *DerivedSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// Recent returns up to n trailing points, newest first
func (s *DerivedSeries) Recent(n int) []DerivedPoint {
	if n <= 0 || len(s.Points) == 0 {
		return []DerivedPoint{}
	}
	if n > len(s.Points) {
		n = len(s.Points)
	}
	recent := make([]DerivedPoint, 0, n)
	for i := len(s.Points) - 1; i >= len(s.Points)-n; i-- {
		recent = append(recent, s.Points[i])
	}
	return recent
}
