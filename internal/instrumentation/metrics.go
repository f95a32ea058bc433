package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrStatus       = "status"
	attrOperation    = "operation"
	attrService      = "service"
	attrResult       = "result"
	attrAvailability = "availability"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a no-op recorder.
type Metrics struct {
	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	// OAuth metrics
	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	// Room availability metrics
	checkRunsTotal    metric.Int64Counter
	checkDuration     metric.Float64Histogram
	roomStatusesTotal metric.Int64Counter
	freeRooms         metric.Int64Gauge
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	// Google API Metrics
	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	// OAuth Metrics
	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of interactive OAuth authorizations"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	// Room availability metrics
	m.checkRunsTotal, err = meter.Int64Counter(
		"freerooms_check_runs_total",
		metric.WithDescription("Total number of room availability checks"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create freerooms_check_runs_total counter: %w", err)
	}

	m.checkDuration, err = meter.Float64Histogram(
		"freerooms_check_duration_seconds",
		metric.WithDescription("Room availability check duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create freerooms_check_duration_seconds histogram: %w", err)
	}

	m.roomStatusesTotal, err = meter.Int64Counter(
		"freerooms_room_statuses_total",
		metric.WithDescription("Total number of room verdicts by availability"),
		metric.WithUnit("{room}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create freerooms_room_statuses_total counter: %w", err)
	}

	m.freeRooms, err = meter.Int64Gauge(
		"freerooms_free_rooms",
		metric.WithDescription("Number of rooms found free by the last check"),
		metric.WithUnit("{room}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create freerooms_free_rooms gauge: %w", err)
	}

	return m, nil
}

// RecordGoogleAPIOperation records a Google API operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: Google service name (calendar)
//   - operation: Operation type (list, get)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOAuthAuth records an interactive OAuth authorization with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m == nil || m.oauthAuthTotal == nil {
		return // Instrumentation not initialized
	}

	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordOAuthTokenRefresh records an OAuth token refresh attempt with result.
// Result should be one of: "success", "failure", "expired"
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.oauthTokenRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordCheckRun records a complete availability check with its status and duration.
func (m *Metrics) RecordCheckRun(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.checkRunsTotal == nil || m.checkDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.checkRunsTotal.Add(ctx, 1, attrs)
	m.checkDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRoomStatus records a single room verdict ("free", "busy", "unknown", "error").
// Room names are deliberately not used as labels.
func (m *Metrics) RecordRoomStatus(ctx context.Context, availability string) {
	if m == nil || m.roomStatusesTotal == nil {
		return // Instrumentation not initialized
	}

	m.roomStatusesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrAvailability, availability)))
}

// SetFreeRooms records the number of free rooms found by the last check.
func (m *Metrics) SetFreeRooms(ctx context.Context, n int) {
	if m == nil || m.freeRooms == nil {
		return // Instrumentation not initialized
	}

	m.freeRooms.Record(ctx, int64(n))
}
