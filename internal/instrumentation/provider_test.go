package instrumentation

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
	})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics(), "metrics are a no-op recorder when disabled")
	assert.False(t, provider.PrometheusEnabled())
	assert.Nil(t, provider.Gatherer())
	assert.Equal(t, "test-service", provider.Config().ServiceName)
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Exporters(t *testing.T) {
	tests := []struct {
		name       string
		metrics    string
		tracing    string
		prometheus bool
	}{
		{name: "prometheus without tracing", metrics: ExporterPrometheus, tracing: ExporterNone, prometheus: true},
		{name: "prometheus with stdout tracing", metrics: ExporterPrometheus, tracing: ExporterStdout, prometheus: true},
		{name: "stdout only", metrics: ExporterStdout, tracing: ExporterStdout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			provider, err := NewProvider(ctx, Config{
				ServiceName:     "test-service",
				ServiceVersion:  "1.0.0",
				Enabled:         true,
				MetricsExporter: tt.metrics,
				TracingExporter: tt.tracing,
			})
			require.NoError(t, err)
			defer func() { _ = provider.Shutdown(ctx) }()

			assert.True(t, provider.Enabled())
			assert.NotNil(t, provider.Metrics())
			assert.Equal(t, tt.prometheus, provider.PrometheusEnabled())
			if tt.prometheus {
				assert.NotNil(t, provider.Gatherer())
			} else {
				assert.Nil(t, provider.Gatherer())
			}
		})
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		metrics string
		tracing string
	}{
		{name: "unknown metrics exporter", metrics: "invalid", tracing: ExporterNone},
		{name: "unknown tracing exporter", metrics: ExporterPrometheus, tracing: "invalid"},
		{name: "otlp tracing without endpoint", metrics: ExporterPrometheus, tracing: ExporterOTLP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), Config{
				ServiceName:     "test-service",
				Enabled:         true,
				MetricsExporter: tt.metrics,
				TracingExporter: tt.tracing,
			})
			assert.Error(t, err)
		})
	}
}

func TestNewProvider_SeparateRegistries(t *testing.T) {
	ctx := context.Background()
	config := Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	}

	first, err := NewProvider(ctx, config)
	require.NoError(t, err)
	defer func() { _ = first.Shutdown(ctx) }()

	// A second provider registers the same collectors without conflicts
	second, err := NewProvider(ctx, config)
	require.NoError(t, err)
	defer func() { _ = second.Shutdown(ctx) }()

	second.Metrics().SetFreeRooms(ctx, 3)

	assert.Nil(t, gatheredFamily(t, first, "freerooms_free_rooms"))
	assert.NotNil(t, gatheredFamily(t, second, "freerooms_free_rooms"))
}

func TestNewProvider_StdoutExportersKeepStdoutForReport(t *testing.T) {
	var buf bytes.Buffer
	previous := debugExportWriter
	debugExportWriter = &buf
	t.Cleanup(func() { debugExportWriter = previous })

	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:       "test-service",
		Enabled:           true,
		MetricsExporter:   ExporterStdout,
		TracingExporter:   ExporterStdout,
		TraceSamplingRate: 1.0,
	})
	require.NoError(t, err)

	_, span := StartSpan(ctx, "freerooms.check")
	span.End()
	provider.Metrics().SetFreeRooms(ctx, 2)

	require.NoError(t, provider.Shutdown(ctx))
	assert.Contains(t, buf.String(), "freerooms.check")
	assert.Contains(t, buf.String(), "freerooms_free_rooms")
}
