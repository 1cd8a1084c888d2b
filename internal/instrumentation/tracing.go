package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the mailbridge package.
const TracerName = "github.com/officedocs/mailbridge"

// Span attribute keys for operations.
const (
	// SpanAttrAction is the protocol action name attribute.
	SpanAttrAction = "protocol.action"

	// SpanAttrStatus is the protocol status attribute.
	SpanAttrStatus = "protocol.status"

	// SpanAttrMethod is the mail store method attribute.
	SpanAttrMethod = "mail.method"

	// SpanAttrMessageID is the source message identifier.
	SpanAttrMessageID = "mail.message_id"

	// SpanAttrComposeTab is the compose window tab identifier.
	SpanAttrComposeTab = "mail.compose_tab"

	// SpanAttrAttachmentID is the attachment identifier.
	SpanAttrAttachmentID = "attachment.id"

	// SpanAttrExtension is the attachment file extension.
	SpanAttrExtension = "attachment.extension"

	// SpanAttrRoute is the page route attribute.
	SpanAttrRoute = "page.route"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithAction adds the protocol action name attribute.
func (b *SpanAttributeBuilder) WithAction(action string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrAction, action))
	return b
}

// WithMethod adds the mail store method attribute.
func (b *SpanAttributeBuilder) WithMethod(method string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrMethod, method))
	return b
}

// WithMessage adds the source message attribute.
func (b *SpanAttributeBuilder) WithMessage(messageID int) *SpanAttributeBuilder {
	if messageID != 0 {
		b.attrs = append(b.attrs, attribute.Int(SpanAttrMessageID, messageID))
	}
	return b
}

// WithComposeTab adds the compose tab attribute.
func (b *SpanAttributeBuilder) WithComposeTab(tabID int) *SpanAttributeBuilder {
	if tabID != 0 {
		b.attrs = append(b.attrs, attribute.Int(SpanAttrComposeTab, tabID))
	}
	return b
}

// WithAttachment adds attachment attributes. The extension is recorded
// rather than the name; attachment names are user data.
func (b *SpanAttributeBuilder) WithAttachment(id int, name string) *SpanAttributeBuilder {
	if id != 0 {
		b.attrs = append(b.attrs, attribute.Int(SpanAttrAttachmentID, id))
	}
	if name != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrExtension, ExtractFileExtension(name)))
	}
	return b
}

// WithRoute adds the page route attribute.
func (b *SpanAttributeBuilder) WithRoute(route string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrRoute, route))
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// Returns the context with the span and the span itself.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartActionSpan starts a span for a protocol action.
// Automatically adds the action name and sets appropriate span kind.
func StartActionSpan(ctx context.Context, action string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrAction, action))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "action."+action,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartStoreSpan starts a span for a mail store round trip.
// Includes the store method attribute.
func StartStoreSpan(ctx context.Context, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrMethod, method))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "store."+method,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

// SpanContextString returns a human-readable trace context string.
// Format: "trace_id=X span_id=Y" or empty string if no valid context.
func SpanContextString(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return "trace_id=" + span.SpanContext().TraceID().String() +
		" span_id=" + span.SpanContext().SpanID().String()
}
