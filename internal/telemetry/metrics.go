package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/WailSalutem-Health-Care/care-record-service"

// Metrics holds the custom instruments of the service. With no meter
// provider installed every instrument is a no-op.
type Metrics struct {
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	RecordOperationsTotal metric.Int64Counter
	BulkTargetsTotal      metric.Int64Counter
	BulkFailuresTotal     metric.Int64Counter
	BulkSize              metric.Int64Histogram

	AuthFailuresTotal       metric.Int64Counter
	PermissionCheckDuration metric.Float64Histogram
}

func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.HTTPDurationMs, err = meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.RecordOperationsTotal, err = meter.Int64Counter(
		"daily_record_operations_total",
		metric.WithDescription("Daily record commands by kind, action and outcome"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, err
	}
	if m.BulkTargetsTotal, err = meter.Int64Counter(
		"bulk_dispatch_targets_total",
		metric.WithDescription("Targets submitted to bulk record saves"),
		metric.WithUnit("{target}"),
	); err != nil {
		return nil, err
	}
	if m.BulkFailuresTotal, err = meter.Int64Counter(
		"bulk_dispatch_failures_total",
		metric.WithDescription("Targets of bulk record saves that failed"),
		metric.WithUnit("{target}"),
	); err != nil {
		return nil, err
	}
	if m.BulkSize, err = meter.Int64Histogram(
		"bulk_dispatch_size",
		metric.WithDescription("Targets per bulk record save"),
		metric.WithUnit("{target}"),
	); err != nil {
		return nil, err
	}
	if m.AuthFailuresTotal, err = meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Total number of authentication failures"),
		metric.WithUnit("{failure}"),
	); err != nil {
		return nil, err
	}
	if m.PermissionCheckDuration, err = meter.Float64Histogram(
		"permission_check_duration_ms",
		metric.WithDescription("Permission check duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPDurationMs.Record(ctx, durationMs, attrs)
}

func (m *Metrics) RecordRecordOperation(ctx context.Context, kind, action string, success bool) {
	m.RecordOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("action", action),
		attribute.Bool("success", success),
	))
}

func (m *Metrics) RecordBulkDispatch(ctx context.Context, targets, failed int) {
	m.BulkTargetsTotal.Add(ctx, int64(targets))
	m.BulkSize.Record(ctx, int64(targets))
	if failed > 0 {
		m.BulkFailuresTotal.Add(ctx, int64(failed))
	}
}

func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (m *Metrics) RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool) {
	m.PermissionCheckDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("permission", permission),
		attribute.Bool("allowed", allowed),
	))
}
