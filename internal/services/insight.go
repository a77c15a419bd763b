package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/irfndi/polymarket-insight/internal/models"
	"github.com/irfndi/polymarket-insight/internal/telemetry"
	"github.com/irfndi/polymarket-insight/internal/utils"
)

const (
	yesColor     = "#4ade80"
	noColor      = "#f87171"
	shortMAColor = "#c084fc"
	longMAColor  = "#60a5fa"
	volumeColor  = "#60a5fa"
)

// DashboardRecorder receives one observation per dashboard build
type DashboardRecorder interface {
	RecordDashboardRequest(marketID string, known bool, duration time.Duration, highVolumeDays int)
}

// AnalyticsOptions overrides the configured defaults for one request
type AnalyticsOptions struct {
	Days        int
	HighVolumeK *float64
}

// InsightService runs the generate, process and present pipeline for one market
type InsightService struct {
	mockData    *MockDataService
	processor   *AnalyticsProcessor
	recorder    DashboardRecorder
	tracer      *telemetry.BusinessTracer
	logger      *logrus.Logger
	historyDays int
	recentRows  int
	now         func() time.Time
}

// NewInsightService wires the pipeline. recorder may be nil.
func NewInsightService(
	mockData *MockDataService,
	processor *AnalyticsProcessor,
	recorder DashboardRecorder,
	logger *logrus.Logger,
	historyDays int,
	recentRows int,
) *InsightService {
	return &InsightService{
		mockData:    mockData,
		processor:   processor,
		recorder:    recorder,
		tracer:      telemetry.NewBusinessTracer(),
		logger:      logger,
		historyDays: historyDays,
		recentRows:  recentRows,
		now:         time.Now,
	}
}

// Markets returns the catalog for the market picker
func (s *InsightService) Markets() []models.MarketSummary {
	return s.mockData.ListMarkets()
}

// Details returns the market card
func (s *InsightService) Details(ctx context.Context, marketID string) (*models.MarketDetails, error) {
	_, span := telemetry.StartSpan(ctx, telemetry.GetServiceTracer(), "mockdata.market_details")
	defer span.End()

	details, err := s.mockData.GetMarketDetails(marketID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		telemetry.StringAttribute("market.id", details.ID),
		telemetry.BoolAttribute("market.placeholder", details.IsPlaceholder()),
	)
	return details, nil
}

// History returns the raw generated series. Empty or unknown IDs give an
// empty record.
func (s *InsightService) History(ctx context.Context, marketID string, days int) (*models.MarketRecord, error) {
	return s.generate(ctx, strings.TrimSpace(marketID), days), nil
}

// Analytics returns the derived series, honouring per-request overrides.
// Empty or unknown IDs give an empty series.
func (s *InsightService) Analytics(ctx context.Context, marketID string, opts AnalyticsOptions) (*models.DerivedSeries, error) {
	marketID = strings.TrimSpace(marketID)

	processor := s.processor
	if opts.HighVolumeK != nil {
		if *opts.HighVolumeK < 0 {
			return nil, utils.NewFieldError("k", "must be a non-negative number")
		}
		processor = processor.WithHighVolumeK(*opts.HighVolumeK)
	}

	record := s.generate(ctx, marketID, opts.Days)
	return s.process(ctx, processor, record), nil
}

// BuildDashboard assembles everything the dashboard page shows for one market.
// IDs outside the catalog return placeholder details and no chart data.
func (s *InsightService) BuildDashboard(ctx context.Context, marketID string) (*models.Dashboard, error) {
	start := time.Now()
	marketID = strings.TrimSpace(marketID)

	ctx, span := s.tracer.TraceDashboardBuild(ctx, marketID)
	defer span.End()

	details, err := s.Details(ctx, marketID)
	if err != nil {
		s.tracer.RecordFailure(span, err)
		return nil, err
	}

	record := s.generate(ctx, marketID, s.historyDays)
	series := s.process(ctx, s.processor, record)

	dashboard := &models.Dashboard{
		MarketID:    marketID,
		Details:     details,
		Series:      series,
		PriceTraces: []models.ChartTrace{},
		Recent:      []models.RecentRow{},
		GeneratedAt: s.now().UTC(),
	}
	if !series.IsEmpty() {
		dashboard.PriceTraces = s.priceTraces(series)
		dashboard.VolumeTrace = volumeTrace(series)
		dashboard.Recent = recentRows(series.Recent(s.recentRows))
	}

	known := !details.IsPlaceholder()
	metrics := telemetry.SeriesMetrics{
		Points:         series.Summary.Points,
		HighVolumeDays: series.Summary.HighVolumeDays,
		KnownMarket:    known,
	}
	if series.HighVolumeThreshold.Valid {
		threshold := series.HighVolumeThreshold.Decimal.InexactFloat64()
		metrics.HighVolumeThreshold = &threshold
	}
	s.tracer.RecordSeriesMetrics(span, metrics)

	elapsed := time.Since(start)
	if s.recorder != nil {
		s.recorder.RecordDashboardRequest(marketID, known, elapsed, series.Summary.HighVolumeDays)
	}

	s.logger.WithFields(logrus.Fields{
		"market_id":        marketID,
		"known":            known,
		"points":           series.Summary.Points,
		"high_volume_days": series.Summary.HighVolumeDays,
		"duration_ms":      elapsed.Milliseconds(),
	}).Info("Dashboard built")

	return dashboard, nil
}

func (s *InsightService) generate(ctx context.Context, marketID string, days int) *models.MarketRecord {
	_, span := s.tracer.TraceHistoryGeneration(ctx, marketID, days)
	defer span.End()

	record := s.mockData.GenerateHistory(marketID, days)
	span.SetAttributes(telemetry.Int64Attribute("series.points", int64(record.Len())))
	return record
}

func (s *InsightService) process(ctx context.Context, processor *AnalyticsProcessor, record *models.MarketRecord) *models.DerivedSeries {
	_, span := s.tracer.TraceAnalytics(ctx, record.MarketID, record.Len())
	defer span.End()

	series := processor.Process(record)
	span.SetAttributes(telemetry.Int64Attribute("series.high_volume_days", int64(series.Summary.HighVolumeDays)))
	return series
}

func (s *InsightService) priceTraces(series *models.DerivedSeries) []models.ChartTrace {
	dates := make([]string, len(series.Points))
	yes := make([]*float64, len(series.Points))
	no := make([]*float64, len(series.Points))
	short := make([]decimal.NullDecimal, len(series.Points))
	long := make([]decimal.NullDecimal, len(series.Points))
	for i, pt := range series.Points {
		dates[i] = pt.Timestamp.Format(time.DateOnly)
		yes[i] = floatPtr(pt.YesPrice)
		no[i] = floatPtr(pt.NoPrice)
		short[i] = pt.MAShort
		long[i] = pt.MALong
	}

	traces := []models.ChartTrace{
		{Name: "YES Price", Type: "scatter", Mode: "lines", X: dates, Y: yes, Color: yesColor, Width: 2.5},
		{Name: "NO Price", Type: "scatter", Mode: "lines", X: dates, Y: no, Color: noColor, Width: 2.5},
	}

	// Averages with no defined point at all are left off the chart
	if ys, ok := nullableFloats(short); ok {
		traces = append(traces, models.ChartTrace{
			Name: fmt.Sprintf("YES %dD MA", series.Windows.ShortMA), Type: "scatter", Mode: "lines",
			X: dates, Y: ys, Color: shortMAColor, Width: 1.5, Dash: "dash",
		})
	}
	if ys, ok := nullableFloats(long); ok {
		traces = append(traces, models.ChartTrace{
			Name: fmt.Sprintf("YES %dD MA", series.Windows.LongMA), Type: "scatter", Mode: "lines",
			X: dates, Y: ys, Color: longMAColor, Width: 1.5, Dash: "dot",
		})
	}
	return traces
}

func volumeTrace(series *models.DerivedSeries) *models.ChartTrace {
	trace := &models.ChartTrace{
		Name:  "Volume",
		Type:  "bar",
		X:     make([]string, len(series.Points)),
		Y:     make([]*float64, len(series.Points)),
		Color: volumeColor,
	}
	for i, pt := range series.Points {
		trace.X[i] = pt.Timestamp.Format(time.DateOnly)
		trace.Y[i] = floatPtr(pt.Volume)
	}
	return trace
}

func recentRows(points []models.DerivedPoint) []models.RecentRow {
	rows := make([]models.RecentRow, len(points))
	for i, pt := range points {
		rows[i] = models.RecentRow{
			Date:       pt.Timestamp.Format(time.DateOnly),
			YesPrice:   pt.YesPrice.StringFixed(2),
			MAShort:    utils.FormatDecimal(pt.MAShort, 2),
			Change:     utils.FormatRatioAsPercentage(pt.ChangeRatio),
			Volatility: utils.FormatDecimal(pt.Volatility, 4),
			Volume:     utils.FormatCount(pt.Volume.IntPart()),
			HighVolume: pt.HighVolume,
		}
	}
	return rows
}

func floatPtr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}

// nullableFloats converts a column for plotting; ok is false when no entry is valid
func nullableFloats(values []decimal.NullDecimal) ([]*float64, bool) {
	out := make([]*float64, len(values))
	defined := false
	for i, v := range values {
		if v.Valid {
			out[i] = floatPtr(v.Decimal)
			defined = true
		}
	}
	return out, defined
}
