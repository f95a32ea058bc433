// Package instrumentation provides OpenTelemetry metrics and tracing for freerooms.
//
// Instrumentation is off by default. When enabled it offers:
//   - Metrics for Google API calls, OAuth activity and room checks
//   - Distributed tracing of a check and the calendar calls it makes
//   - Prometheus export, scraped from /metrics in watch mode or pushed to a
//     Pushgateway after a one-shot check
//   - OTLP export for collectors that speak it
//
// # Metrics
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of interactive authorizations by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// Room Metrics:
//   - freerooms_check_runs_total: Counter of checks by status
//   - freerooms_check_duration_seconds: Histogram of check durations
//   - freerooms_room_statuses_total: Counter of room verdicts by availability
//   - freerooms_free_rooms: Gauge of rooms found free by the last check
//
// Room names and calendar IDs are kept out of metric labels; they appear on
// spans only.
//
// # Configuration
//
// Configuration is read from the environment by DefaultConfig:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP collector endpoint
//   - OTEL_TRACES_SAMPLER_ARG: Trace sampling rate (0.0 to 1.0)
//   - PROMETHEUS_PUSHGATEWAY_URL: Pushgateway for one-shot runs
//   - PROMETHEUS_PUSH_JOB: Job label used when pushing (default: freerooms)
//
// # Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	metrics := provider.Metrics()
//	metrics.RecordRoomStatus(ctx, "free")
//
//	if err := provider.Push(ctx); err != nil {
//		slog.Warn("failed to push metrics", "error", err)
//	}
package instrumentation
