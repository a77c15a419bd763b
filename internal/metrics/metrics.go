package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/irfndi/polymarket-insight/internal/logging"
)

// Package metrics records application metrics twice: as structured debug log
// lines and as Prometheus collectors exposed on /metrics.

// MetricType represents the type of metric being recorded.
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
	MetricTypeTiming  MetricType = "timing"
)

const namespace = "insight"

// Metric represents a standardized metric structure.
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Unit      string            `json:"unit"`
	Timestamp time.Time         `json:"timestamp"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// MetricsCollector provides standardized metrics collection.
type MetricsCollector struct {
	logger      *logging.StandardLogger
	serviceName string
	registry    *prometheus.Registry

	dashboardRequests *prometheus.CounterVec
	pipelineDuration  prometheus.Histogram
	highVolumeDays    *prometheus.GaugeVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewMetricsCollector creates a collector backed by a private registry.
func NewMetricsCollector(logger *logging.StandardLogger, serviceName string) *MetricsCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mc := &MetricsCollector{
		logger:      logger,
		serviceName: serviceName,
		registry:    registry,
		dashboardRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_requests_total",
			Help:      "Dashboard builds, partitioned by whether the market is in the catalog.",
		}, []string{"known"}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent generating and processing one market history.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		}),
		highVolumeDays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "high_volume_days",
			Help:      "High-volume days flagged in the last processed series of a catalog market.",
		}, []string{"market_id"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		mc.dashboardRequests,
		mc.pipelineDuration,
		mc.highVolumeDays,
		mc.httpRequests,
		mc.httpDuration,
	)
	return mc
}

// Handler serves the registry in the Prometheus exposition format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{Registry: mc.registry})
}

// Registry exposes the underlying registry
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// RecordCounter records a counter metric.
func (mc *MetricsCollector) RecordCounter(name string, value float64, tags map[string]string) {
	mc.logMetric(Metric{
		Name:      name,
		Type:      MetricTypeCounter,
		Value:     value,
		Unit:      "count",
		Timestamp: time.Now(),
		Tags:      mc.addServiceTag(tags),
	})
}

// RecordGauge records a gauge metric.
func (mc *MetricsCollector) RecordGauge(name string, value float64, unit string, tags map[string]string) {
	mc.logMetric(Metric{
		Name:      name,
		Type:      MetricTypeGauge,
		Value:     value,
		Unit:      unit,
		Timestamp: time.Now(),
		Tags:      mc.addServiceTag(tags),
	})
}

// RecordTiming records a timing metric.
func (mc *MetricsCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) {
	mc.logMetric(Metric{
		Name:      name,
		Type:      MetricTypeTiming,
		Value:     float64(duration.Microseconds()) / 1000,
		Unit:      "ms",
		Timestamp: time.Now(),
		Tags:      mc.addServiceTag(tags),
	})
}

// RecordDashboardRequest records one pipeline run. Only catalog markets get a
// per-market gauge so arbitrary IDs cannot inflate label cardinality.
func (mc *MetricsCollector) RecordDashboardRequest(marketID string, known bool, duration time.Duration, highVolumeDays int) {
	knownLabel := strconv.FormatBool(known)
	tags := map[string]string{"known": knownLabel}

	mc.dashboardRequests.WithLabelValues(knownLabel).Inc()
	mc.pipelineDuration.Observe(duration.Seconds())
	mc.RecordCounter("dashboard_requests_total", 1, tags)
	mc.RecordTiming("pipeline_duration", duration, tags)

	if known {
		mc.highVolumeDays.WithLabelValues(marketID).Set(float64(highVolumeDays))
		mc.RecordGauge("high_volume_days", float64(highVolumeDays), "days", map[string]string{"market_id": marketID})
	}
}

// RecordAPIRequestMetrics records standardized API request metrics.
func (mc *MetricsCollector) RecordAPIRequestMetrics(method, route string, statusCode int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	mc.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	mc.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request counts and latency keyed by the gin route template
func (mc *MetricsCollector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		mc.RecordAPIRequestMetrics(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// addServiceTag adds the service name to tags
func (mc *MetricsCollector) addServiceTag(tags map[string]string) map[string]string {
	result := make(map[string]string, len(tags)+1)
	for k, v := range tags {
		result[k] = v
	}
	result["service"] = mc.serviceName
	return result
}

// logMetric logs the metric using the standardized logger
func (mc *MetricsCollector) logMetric(metric Metric) {
	mc.logger.WithComponent("metrics").Debug("Metric recorded",
		"event", "metric",
		"name", metric.Name,
		"type", string(metric.Type),
		"value", metric.Value,
		"unit", metric.Unit,
		"tags", metric.Tags,
	)
}
