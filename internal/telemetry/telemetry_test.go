package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestNormalizeOTLPEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		hostport string
		urlPath  string
		insecure bool
		wantErr  bool
	}{
		{"default localhost", "http://localhost:4318", "localhost:4318", "/v1/traces", true, false},
		{"trailing slash base", "http://collector:4318/", "collector:4318", "/v1/traces", true, false},
		{"already traces path", "http://collector:4318/v1/traces", "collector:4318", "/v1/traces", true, false},
		{"custom base path", "https://otlp.example.com:4318/otlp", "otlp.example.com:4318", "/otlp/v1/traces", false, false},
		{"invalid no scheme", "collector:4318", "", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hp, path, insecure, err := normalizeOTLPEndpoint(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hostport, hp)
			assert.Equal(t, tt.urlPath, path)
			assert.Equal(t, tt.insecure, insecure)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.NotNil(t, config)
	assert.True(t, config.Enabled)
	assert.Equal(t, "stdout", config.Exporter)
	assert.Equal(t, "http://localhost:4318", config.OTLPEndpoint)
	assert.Equal(t, ServiceName, config.ServiceName)
	assert.Equal(t, ServiceVersion, config.ServiceVersion)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 1.0, config.SampleRate)
	assert.Equal(t, 5*time.Second, config.BatchTimeout)
	assert.Equal(t, 512, config.MaxExportBatch)
	assert.Equal(t, 2048, config.MaxQueueSize)
}

func TestTracerGetters(t *testing.T) {
	assert.NotNil(t, GetTracer("test-tracer"))
	assert.NotNil(t, GetHTTPTracer())
	assert.NotNil(t, GetServiceTracer())
	assert.NotNil(t, GetBusinessTracer())
}

func TestSpanHelpers(t *testing.T) {
	ctx := context.Background()
	tracer := GetTracer("test")

	newCtx, span := StartSpan(ctx, tracer, "test-span")
	assert.NotNil(t, newCtx)
	assert.NotNil(t, span)

	SetSpanAttributes(span,
		attribute.String("test-key", "test-value"),
		attribute.Int64("test-int", 42),
	)
	RecordError(span, assert.AnError)
	RecordError(span, nil)
	SetSpanStatus(span, codes.Ok, "success")

	span.End()
}

func TestAttributeHelpers(t *testing.T) {
	strAttr := StringAttribute("key", "value")
	assert.Equal(t, attribute.Key("key"), strAttr.Key)
	assert.Equal(t, attribute.STRING, strAttr.Value.Type())
	assert.Equal(t, "value", strAttr.Value.AsString())

	intAttr := Int64Attribute("key", 42)
	assert.Equal(t, attribute.INT64, intAttr.Value.Type())
	assert.Equal(t, int64(42), intAttr.Value.AsInt64())

	floatAttr := Float64Attribute("key", 3.14)
	assert.Equal(t, attribute.FLOAT64, floatAttr.Value.Type())
	assert.Equal(t, 3.14, floatAttr.Value.AsFloat64())

	boolAttr := BoolAttribute("key", true)
	assert.Equal(t, attribute.BOOL, boolAttr.Value.Type())
	assert.True(t, boolAttr.Value.AsBool())
}

func TestInitTelemetry_Disabled(t *testing.T) {
	assert.NoError(t, InitTelemetry(TelemetryConfig{Enabled: false}))
	assert.NoError(t, InitTelemetry(TelemetryConfig{Enabled: true, Exporter: "none"}))
	assert.NoError(t, Shutdown(context.Background()))
}

func TestInitTelemetry_UnsupportedExporter(t *testing.T) {
	err := InitTelemetry(TelemetryConfig{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestInitTelemetry_InvalidOTLPEndpoint(t *testing.T) {
	err := InitTelemetry(TelemetryConfig{
		Enabled:      true,
		Exporter:     "otlp",
		OTLPEndpoint: "collector:4318",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create OTLP exporter")
}

func TestInitTelemetry_OTLPAndShutdown(t *testing.T) {
	err := InitTelemetry(TelemetryConfig{
		Enabled:      true,
		Exporter:     "otlp",
		OTLPEndpoint: "http://127.0.0.1:4318",
		Environment:  "test",
		SampleRate:   1.0,
	})
	require.NoError(t, err)
	mu.Lock()
	assert.NotNil(t, globalProvider)
	mu.Unlock()

	// Nothing was recorded, so shutdown never reaches the collector
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, Shutdown(ctx))
	assert.NoError(t, Shutdown(ctx))
}
