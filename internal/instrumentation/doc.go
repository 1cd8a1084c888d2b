// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the mailbridge native messaging host.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for protocol requests, mail store calls, and editor sessions
//   - Distributed tracing for action handling and store round trips
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Protocol Metrics:
//   - protocol_requests_total: Counter of protocol requests by action and status
//   - protocol_request_duration_seconds: Histogram of protocol request durations
//
// Mail Store Metrics:
//   - mail_store_calls_total: Counter of mail store calls by method and status
//   - mail_store_call_duration_seconds: Histogram of store round trip durations
//
// Editor Metrics:
//   - editor_sessions_active: Gauge of active editor sessions
//   - attachment_size_bytes: Histogram of attachment sizes by transfer direction
//
// Page Metrics:
//   - page_navigations_total: Counter of page navigations by route and outcome
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - Protocol action handling (action.<name>)
//   - Mail store round trips (store.<method>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mailbridge)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "mailbridge",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record a protocol request
//	recorder.RecordProtocolRequest(ctx, "getMessageData", "success", time.Since(start))
//
//	// Record a mail store call
//	recorder.RecordStoreCall(ctx, "messages.getFull", "success", time.Since(start))
package instrumentation
