package services

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/irfndi/polymarket-insight/internal/config"
	"github.com/irfndi/polymarket-insight/internal/models"
)

// AnalyticsProcessor derives descriptive statistics from a market history.
// Every method is a pure function of its inputs.
type AnalyticsProcessor struct {
	windows models.AnalyticsWindows
	logger  *logrus.Logger
}

// NewAnalyticsProcessor creates a processor using the configured windows
func NewAnalyticsProcessor(cfg config.AnalyticsConfig, logger *logrus.Logger) *AnalyticsProcessor {
	return &AnalyticsProcessor{
		windows: models.AnalyticsWindows{
			ShortMA:     cfg.ShortWindow,
			LongMA:      cfg.LongWindow,
			Volatility:  cfg.VolatilityWindow,
			HighVolumeK: cfg.HighVolumeK,
		},
		logger: logger,
	}
}

// Windows returns the configured window sizes
func (p *AnalyticsProcessor) Windows() models.AnalyticsWindows {
	return p.windows
}

// WithHighVolumeK returns a copy of the processor using a different k
func (p *AnalyticsProcessor) WithHighVolumeK(k float64) *AnalyticsProcessor {
	clone := *p
	clone.windows.HighVolumeK = k
	return &clone
}

// RollingMean returns the simple moving average of values. The result has the
// same length as values and the first window-1 entries are invalid.
func (p *AnalyticsProcessor) RollingMean(values []float64, window int) []decimal.NullDecimal {
	result := make([]decimal.NullDecimal, len(values))
	if window < 1 || len(values) < window {
		return result
	}

	sma := trend.NewSmaWithPeriod[float64](window)
	averages := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))

	// The indicator emits one value per full window, aligned to the window's last point
	offset := len(values) - len(averages)
	for i, avg := range averages {
		result[offset+i] = validStat(avg)
	}
	return result
}

// PercentChange returns the change of each value relative to its predecessor
// as a ratio. The first entry, and any entry whose predecessor is zero, is invalid.
func (p *AnalyticsProcessor) PercentChange(values []float64) []decimal.NullDecimal {
	result := make([]decimal.NullDecimal, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		result[i] = validStat((values[i] - prev) / prev)
	}
	return result
}

// RollingVolatility returns the sample standard deviation of log returns over
// window returns, scaled by sqrt(window). Entries are invalid until a full
// window of returns exists.
func (p *AnalyticsProcessor) RollingVolatility(values []float64, window int) []decimal.NullDecimal {
	result := make([]decimal.NullDecimal, len(values))
	if window < 2 || len(values) <= window {
		return result
	}

	returns := make([]float64, len(values))
	valid := make([]bool, len(values))
	for i := 1; i < len(values); i++ {
		if values[i] > 0 && values[i-1] > 0 {
			returns[i] = math.Log(values[i] / values[i-1])
			valid[i] = true
		}
	}

	scale := math.Sqrt(float64(window))
	for i := window; i < len(values); i++ {
		complete := true
		for j := i - window + 1; j <= i; j++ {
			if !valid[j] {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		result[i] = validStat(sampleStdDev(returns[i-window+1:i+1]) * scale)
	}
	return result
}

// HighVolumeThreshold returns mean + k*stddev (population) of volumes. It is
// invalid when the series has fewer than two distinct values.
func (p *AnalyticsProcessor) HighVolumeThreshold(volumes []float64, k float64) decimal.NullDecimal {
	threshold, ok := highVolumeThreshold(volumes, k)
	if !ok {
		return decimal.NullDecimal{}
	}
	return validStat(threshold)
}

// HighVolumeFlags marks each volume strictly above the threshold. A smaller k
// never flags fewer days.
func (p *AnalyticsProcessor) HighVolumeFlags(volumes []float64, k float64) []bool {
	flags := make([]bool, len(volumes))
	threshold, ok := highVolumeThreshold(volumes, k)
	if !ok {
		return flags
	}
	for i, v := range volumes {
		flags[i] = v > threshold
	}
	return flags
}

// Process derives the full statistics series for record. A nil or empty
// record yields an empty series.
func (p *AnalyticsProcessor) Process(record *models.MarketRecord) *models.DerivedSeries {
	series := &models.DerivedSeries{
		Points:  []models.DerivedPoint{},
		Windows: p.windows,
	}
	if record == nil {
		return series
	}
	series.MarketID = record.MarketID
	if record.IsEmpty() {
		return series
	}

	prices := record.YesPrices()
	volumes := record.Volumes()

	maShort := p.RollingMean(prices, p.windows.ShortMA)
	maLong := p.RollingMean(prices, p.windows.LongMA)
	changes := p.PercentChange(prices)
	volatility := p.RollingVolatility(prices, p.windows.Volatility)
	flags := p.HighVolumeFlags(volumes, p.windows.HighVolumeK)

	series.Points = make([]models.DerivedPoint, len(record.Observations))
	for i, obs := range record.Observations {
		series.Points[i] = models.DerivedPoint{
			Observation: obs,
			MAShort:     maShort[i],
			MALong:      maLong[i],
			ChangeRatio: changes[i],
			Volatility:  volatility[i],
			HighVolume:  flags[i],
		}
	}
	series.HighVolumeThreshold = p.HighVolumeThreshold(volumes, p.windows.HighVolumeK)
	series.Summary = summarize(series.Points)

	p.logger.WithFields(logrus.Fields{
		"market_id":        record.MarketID,
		"points":           series.Summary.Points,
		"high_volume_days": series.Summary.HighVolumeDays,
	}).Debug("Processed market series")

	return series
}

func summarize(points []models.DerivedPoint) models.SeriesSummary {
	summary := models.SeriesSummary{Points: len(points)}
	if len(points) == 0 {
		return summary
	}

	first := points[0].YesPrice
	last := points[len(points)-1].YesPrice
	lowest, highest := first, first
	totalVolume := decimal.Zero

	for _, pt := range points {
		if pt.HighVolume {
			summary.HighVolumeDays++
		}
		if pt.YesPrice.LessThan(lowest) {
			lowest = pt.YesPrice
		}
		if pt.YesPrice.GreaterThan(highest) {
			highest = pt.YesPrice
		}
		totalVolume = totalVolume.Add(pt.Volume)
	}

	summary.FirstYesPrice = decimal.NewNullDecimal(first)
	summary.LastYesPrice = decimal.NewNullDecimal(last)
	summary.MinYesPrice = decimal.NewNullDecimal(lowest)
	summary.MaxYesPrice = decimal.NewNullDecimal(highest)
	summary.MeanVolume = decimal.NewNullDecimal(totalVolume.Div(decimal.NewFromInt(int64(len(points)))).Round(2))
	if !first.IsZero() {
		summary.PeriodChangeRatio = decimal.NewNullDecimal(last.Sub(first).Div(first))
	}
	return summary
}

func highVolumeThreshold(volumes []float64, k float64) (float64, bool) {
	if len(volumes) < 2 {
		return 0, false
	}
	distinct := false
	for _, v := range volumes[1:] {
		if v != volumes[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return 0, false
	}

	mean := 0.0
	for _, v := range volumes {
		mean += v
	}
	mean /= float64(len(volumes))

	variance := 0.0
	for _, v := range volumes {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(volumes))

	return mean + k*math.Sqrt(variance), true
}

// sampleStdDev uses the n-1 denominator
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func validStat(v float64) decimal.NullDecimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}
