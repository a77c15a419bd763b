package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessTracer wraps the spans of the insight pipeline: data generation,
// statistics and dashboard assembly.
type BusinessTracer struct {
	tracer trace.Tracer
}

// NewBusinessTracer creates a tracer bound to the global provider
func NewBusinessTracer() *BusinessTracer {
	return &BusinessTracer{tracer: GetBusinessTracer()}
}

// TraceDashboardBuild starts the root span of a dashboard build
func (bt *BusinessTracer) TraceDashboardBuild(ctx context.Context, marketID string) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "insight.build_dashboard",
		trace.WithAttributes(attribute.String("market.id", marketID)),
	)
}

// TraceHistoryGeneration starts a span around mock history generation
func (bt *BusinessTracer) TraceHistoryGeneration(ctx context.Context, marketID string, days int) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "mockdata.generate_history",
		trace.WithAttributes(
			attribute.String("market.id", marketID),
			attribute.Int("history.days", days),
		),
	)
}

// TraceAnalytics starts a span around the statistics pipeline
func (bt *BusinessTracer) TraceAnalytics(ctx context.Context, marketID string, points int) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "analytics.process",
		trace.WithAttributes(
			attribute.String("market.id", marketID),
			attribute.Int("series.points", points),
		),
	)
}

// RecordSeriesMetrics annotates a span with the outcome of processing and
// marks it successful
func (bt *BusinessTracer) RecordSeriesMetrics(span trace.Span, metrics SeriesMetrics) {
	SetSpanAttributes(span,
		Int64Attribute("series.points", int64(metrics.Points)),
		Int64Attribute("series.high_volume_days", int64(metrics.HighVolumeDays)),
		BoolAttribute("market.known", metrics.KnownMarket),
	)
	if metrics.HighVolumeThreshold != nil {
		SetSpanAttributes(span, Float64Attribute("series.high_volume_threshold", *metrics.HighVolumeThreshold))
	}
	SetSpanStatus(span, codes.Ok, "")
}

// RecordFailure marks the span as failed
func (bt *BusinessTracer) RecordFailure(span trace.Span, err error) {
	RecordError(span, err)
}

// SeriesMetrics summarizes one processed series
type SeriesMetrics struct {
	Points              int
	HighVolumeDays      int
	HighVolumeThreshold *float64
	KnownMarket         bool
}
