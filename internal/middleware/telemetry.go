package middleware

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/irfndi/polymarket-insight/internal/telemetry"
)

// Package middleware provides HTTP middleware components for request IDs,
// request logging and span enrichment.

// untracedPaths are probed constantly and carry no business signal.
var untracedPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/live":    true,
	"/metrics": true,
}

// ShouldTrace reports whether otelgin should open a span for the request
func ShouldTrace(path string) bool {
	return !untracedPaths[path]
}

// TelemetryMiddleware enriches the server span opened by otelgin with the
// request ID, the market being viewed and the response outcome.
func TelemetryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if requestID := GetRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("http.request_id", requestID))
		}

		c.Next()

		if marketID := c.Param("id"); marketID != "" {
			span.SetAttributes(attribute.String("market.id", marketID))
		} else if marketID := c.Query("market_id"); marketID != "" {
			span.SetAttributes(attribute.String("market.id", marketID))
		}

		statusCode := c.Writer.Status()
		span.SetAttributes(attribute.Int64("http.response.size_bytes", int64(c.Writer.Size())))

		if statusCode >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
		}
		if contentType := c.Writer.Header().Get("Content-Type"); contentType != "" {
			span.SetAttributes(attribute.String("http.response.header.content_type", contentType))
		}
	}
}

// RecordError records an error on the current span
func RecordError(c *gin.Context, err error, description string) {
	span := trace.SpanFromContext(c.Request.Context())
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, description)
	}
}

// AddSpanAttribute adds an attribute to the current span
func AddSpanAttribute(c *gin.Context, key string, value interface{}) {
	span := trace.SpanFromContext(c.Request.Context())
	if span.IsRecording() {
		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(key, v))
		case int:
			span.SetAttributes(attribute.Int(key, v))
		case int64:
			span.SetAttributes(attribute.Int64(key, v))
		case float64:
			span.SetAttributes(attribute.Float64(key, v))
		case bool:
			span.SetAttributes(attribute.Bool(key, v))
		default:
			span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", value)))
		}
	}
}

// StartSpan starts a child span of the request and installs it on the request context
func StartSpan(c *gin.Context, name string) (context.Context, trace.Span) {
	ctx, span := telemetry.GetHTTPTracer().Start(c.Request.Context(), name)
	c.Request = c.Request.WithContext(ctx)
	return ctx, span
}
