package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketDetails represents the summary card of a prediction market
type MarketDetails struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	CurrentYesPrice decimal.Decimal `json:"current_yes_price"`
	CurrentNoPrice  decimal.Decimal `json:"current_no_price"`
	LiquidityUSD    int64           `json:"liquidity_usd"`
	Volume24hUSD    int64           `json:"volume_24h_usd"`
	ResolutionDate  string          `json:"resolution_date"` // YYYY-MM-DD
	Description     string          `json:"description"`
	Warning         string          `json:"warning,omitempty"`
}

// IsPlaceholder reports whether the details were synthesized for an unknown market
func (d *MarketDetails) IsPlaceholder() bool {
	return d.Warning != ""
}

// MarketSummary represents a catalog entry used by the market picker
type MarketSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Observation represents one daily data point of a binary market
type Observation struct {
	Timestamp time.Time       `json:"timestamp"`
	YesPrice  decimal.Decimal `json:"yes_price"`
	NoPrice   decimal.Decimal `json:"no_price"`
	Volume    decimal.Decimal `json:"volume"`
}

// MarketRecord represents the generated history of a market, ordered by timestamp
type MarketRecord struct {
	MarketID     string        `json:"market_id"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations
func (r *MarketRecord) Len() int {
	return len(r.Observations)
}

// IsEmpty reports whether the record carries no observations
func (r *MarketRecord) IsEmpty() bool {
	return len(r.Observations) == 0
}

// YesPrices extracts the yes price column as float64 values
func (r *MarketRecord) YesPrices() []float64 {
	values := make([]float64, len(r.Observations))
	for i, obs := range r.Observations {
		values[i] = obs.YesPrice.InexactFloat64()
	}
	return values
}

// Volumes extracts the volume column as float64 values
func (r *MarketRecord) Volumes() []float64 {
	values := make([]float64, len(r.Observations))
	for i, obs := range r.Observations {
		values[i] = obs.Volume.InexactFloat64()
	}
	return values
}
