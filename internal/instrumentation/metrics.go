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
	// Common attributes (reused across metrics)
	attrAction    = "action"
	attrStatus    = "status"
	attrMethod    = "method"
	attrRoute     = "route"
	attrDirection = "direction"
	attrExtension = "extension"
	attrDomain    = "user_domain"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Protocol metrics
	protocolRequestsTotal   metric.Int64Counter
	protocolRequestDuration metric.Float64Histogram

	// Mail store metrics
	storeCallsTotal   metric.Int64Counter
	storeCallDuration metric.Float64Histogram

	// Editor metrics
	editorSessionsActive metric.Int64UpDownCounter
	attachmentBytes      metric.Int64Histogram

	// Page metrics
	pageNavigationsTotal metric.Int64Counter

	// Configuration
	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// Protocol Metrics
	m.protocolRequestsTotal, err = meter.Int64Counter(
		"protocol_requests_total",
		metric.WithDescription("Total number of protocol requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create protocol_requests_total counter: %w", err)
	}

	m.protocolRequestDuration, err = meter.Float64Histogram(
		"protocol_request_duration_seconds",
		metric.WithDescription("Protocol request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create protocol_request_duration_seconds histogram: %w", err)
	}

	// Mail Store Metrics
	m.storeCallsTotal, err = meter.Int64Counter(
		"mail_store_calls_total",
		metric.WithDescription("Total number of mail store calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_store_calls_total counter: %w", err)
	}

	m.storeCallDuration, err = meter.Float64Histogram(
		"mail_store_call_duration_seconds",
		metric.WithDescription("Mail store call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_store_call_duration_seconds histogram: %w", err)
	}

	// Editor Metrics
	m.editorSessionsActive, err = meter.Int64UpDownCounter(
		"editor_sessions_active",
		metric.WithDescription("Number of active editor sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create editor_sessions_active gauge: %w", err)
	}

	m.attachmentBytes, err = meter.Int64Histogram(
		"attachment_size_bytes",
		metric.WithDescription("Size of attachments transferred through the editor"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(1024, 10240, 102400, 1048576, 5242880, 10485760, 26214400),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment_size_bytes histogram: %w", err)
	}

	// Page Metrics
	m.pageNavigationsTotal, err = meter.Int64Counter(
		"page_navigations_total",
		metric.WithDescription("Total number of page navigations by route and outcome"),
		metric.WithUnit("{navigation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create page_navigations_total counter: %w", err)
	}

	return m, nil
}

// RecordProtocolRequest records a protocol request with action, status, and duration.
//
// Parameters:
//   - action: Protocol action name (e.g., "getMessageData", "saveComposeAttachment")
//   - status: Result status ("success" or "error")
//   - duration: Time taken to handle the request
func (m *Metrics) RecordProtocolRequest(ctx context.Context, action, status string, duration time.Duration) {
	if m.protocolRequestsTotal == nil || m.protocolRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrAction, action),
		attribute.String(attrStatus, status),
	}

	m.protocolRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.protocolRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordProtocolRequestWithUser records a protocol request including the user's
// mail domain. The domain label is only added when detailedLabels is enabled;
// pass the output of ExtractUserDomain, never a full address.
func (m *Metrics) RecordProtocolRequestWithUser(ctx context.Context, action, status, userDomain string, duration time.Duration) {
	if m.protocolRequestsTotal == nil || m.protocolRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrAction, action),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && userDomain != "" {
		attrs = append(attrs, attribute.String(attrDomain, userDomain))
	}

	m.protocolRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.protocolRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordStoreCall records a call to the mail store with method, status, and duration.
//
// Parameters:
//   - method: Store method name (e.g., "messages.getFull", "compose.addAttachment")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the round trip
func (m *Metrics) RecordStoreCall(ctx context.Context, method, status string, duration time.Duration) {
	if m.storeCallsTotal == nil || m.storeCallDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrStatus, status),
	}

	m.storeCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.storeCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordNavigation records a page navigation with its route and outcome.
// Status should be one of: "ok", "error", "dropped".
//
// The context-free signature matches the page router's recorder hook;
// navigations are UI-driven and carry no request context of their own.
func (m *Metrics) RecordNavigation(route, status string) {
	if m.pageNavigationsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrRoute, route),
		attribute.String(attrStatus, status),
	}

	m.pageNavigationsTotal.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordAttachmentTransfer records the size of an attachment moving through
// the editor, either opened from a message or saved back to a draft.
//
// Parameters:
//   - direction: "open" or "save"
//   - extension: cardinality-controlled file extension (use ExtractFileExtension)
//   - size: attachment size in bytes
func (m *Metrics) RecordAttachmentTransfer(ctx context.Context, direction, extension string, size int64) {
	if m.attachmentBytes == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrDirection, direction),
		attribute.String(attrExtension, extension),
	}

	m.attachmentBytes.Record(ctx, size, metric.WithAttributes(attrs...))
}

// IncrementEditorSessions increments the active editor sessions counter.
func (m *Metrics) IncrementEditorSessions(ctx context.Context) {
	if m.editorSessionsActive == nil {
		return // Instrumentation not initialized
	}

	m.editorSessionsActive.Add(ctx, 1)
}

// DecrementEditorSessions decrements the active editor sessions counter.
func (m *Metrics) DecrementEditorSessions(ctx context.Context) {
	if m.editorSessionsActive == nil {
		return // Instrumentation not initialized
	}

	m.editorSessionsActive.Add(ctx, -1)
}
