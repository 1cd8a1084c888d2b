package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ActionInvocation captures all information about a protocol action for audit
// logging. This provides an audit trail for document access through the bridge:
// who opened which attachment, from which message or draft, and whether the
// operation succeeded.
//
// # Privacy Considerations
//
// The UserEmail and AttachmentName fields contain PII. When logging, consider:
//   - Using UserDomain() to get only the domain for metrics/general logs
//   - Only logging full email and attachment names in audit-specific log streams
//   - Ensuring audit logs have appropriate access controls
type ActionInvocation struct {
	// Protocol action name
	Action string

	// User identity (from the active mail account)
	UserEmail string

	// Target information
	MessageID      int    // Source message, 0 when not message-scoped
	ComposeTabID   int    // Compose window tab, 0 when not compose-scoped
	AttachmentName string // Attachment file name, empty when not attachment-scoped

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// UserDomain returns the domain portion of the user's email for lower-cardinality logging.
func (ai *ActionInvocation) UserDomain() string {
	return ExtractUserDomain(ai.UserEmail)
}

// Status returns "success" or "error" based on the Success field.
func (ai *ActionInvocation) Status() string {
	if ai.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// This provides a consistent set of fields for all action invocation logs.
//
// # Cardinality
//
// This function uses cardinality-controlled values (user_domain, file
// extension instead of the attachment name) for metrics-compatible logging.
// For full audit logging, use LogAuditAttrs.
func (ai *ActionInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("action", ai.Action),
		slog.String("user_domain", ai.UserDomain()),
		slog.Duration("duration", ai.Duration),
		slog.Bool("success", ai.Success),
	}

	// Add optional fields only if present
	if ai.MessageID != 0 {
		attrs = append(attrs, slog.Int("message_id", ai.MessageID))
	}
	if ai.ComposeTabID != 0 {
		attrs = append(attrs, slog.Int("compose_tab_id", ai.ComposeTabID))
	}
	if ai.AttachmentName != "" {
		attrs = append(attrs, slog.String("extension", ExtractFileExtension(ai.AttachmentName)))
	}
	if ai.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ai.TraceID))
	}
	if ai.Error != "" {
		attrs = append(attrs, slog.String("error", ai.Error))
	}

	return attrs
}

// LogAuditAttrs returns slog attributes for full audit logging.
// This includes the full user email and attachment name for compliance purposes.
//
// # Security Warning
//
// This method includes PII (full email, attachment names). Ensure audit logs are:
//   - Stored securely with appropriate access controls
//   - Not exposed to general monitoring dashboards
//   - Retained according to compliance requirements
func (ai *ActionInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("action", ai.Action),
		slog.String("user", ai.UserEmail),
		slog.Duration("duration", ai.Duration),
		slog.Bool("success", ai.Success),
	}

	// Add all optional fields
	if ai.MessageID != 0 {
		attrs = append(attrs, slog.Int("message_id", ai.MessageID))
	}
	if ai.ComposeTabID != 0 {
		attrs = append(attrs, slog.Int("compose_tab_id", ai.ComposeTabID))
	}
	if ai.AttachmentName != "" {
		attrs = append(attrs, slog.String("attachment", ai.AttachmentName))
	}
	if ai.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ai.TraceID))
	}
	if ai.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ai.SpanID))
	}
	if ai.Error != "" {
		attrs = append(attrs, slog.String("error", ai.Error))
	}

	return attrs
}

// NewActionInvocation creates a new ActionInvocation with timing started.
// Call Complete() when the action finishes.
func NewActionInvocation(action string) *ActionInvocation {
	return &ActionInvocation{
		Action:    action,
		StartTime: time.Now(),
	}
}

// WithUser sets the user identity information.
func (ai *ActionInvocation) WithUser(email string) *ActionInvocation {
	ai.UserEmail = email
	return ai
}

// WithMessage sets the source message ID.
func (ai *ActionInvocation) WithMessage(messageID int) *ActionInvocation {
	ai.MessageID = messageID
	return ai
}

// WithComposeTab sets the compose window tab ID.
func (ai *ActionInvocation) WithComposeTab(tabID int) *ActionInvocation {
	ai.ComposeTabID = tabID
	return ai
}

// WithAttachment sets the attachment name.
func (ai *ActionInvocation) WithAttachment(name string) *ActionInvocation {
	ai.AttachmentName = name
	return ai
}

// WithSpanContext extracts trace context from the current span.
func (ai *ActionInvocation) WithSpanContext(ctx context.Context) *ActionInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ai.TraceID = span.SpanContext().TraceID().String()
		ai.SpanID = span.SpanContext().SpanID().String()
	}
	return ai
}

// Complete marks the invocation as completed and calculates duration.
// Returns the same ActionInvocation for method chaining.
func (ai *ActionInvocation) Complete(success bool, err error) *ActionInvocation {
	ai.Duration = time.Since(ai.StartTime)
	ai.Success = success
	if err != nil {
		ai.Error = err.Error()
	}
	return ai
}

// CompleteWithError marks the invocation as failed with the given error.
func (ai *ActionInvocation) CompleteWithError(err error) *ActionInvocation {
	return ai.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ai *ActionInvocation) CompleteSuccess() *ActionInvocation {
	return ai.Complete(true, nil)
}

// AuditLogger provides structured audit logging for protocol actions.
// It wraps slog.Logger with convenience methods for logging document access.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, PII is not included in logs (anonymized identifiers are used instead).
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: false,
		enabled:    true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// SetIncludePII sets whether to include full email addresses in audit logs.
func (al *AuditLogger) SetIncludePII(include bool) {
	al.includePII = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogActionInvocation logs a protocol action using the standard log attributes.
// This is suitable for general operational logging with cardinality controls.
// If the logger is configured with IncludePII, full user emails are logged;
// otherwise, only domain-based anonymized identifiers are used.
func (al *AuditLogger) LogActionInvocation(ai *ActionInvocation) {
	if !al.enabled {
		return
	}

	// Choose between PII and anonymized logging based on configuration
	var attrs []slog.Attr
	if al.includePII {
		attrs = ai.LogAuditAttrs()
	} else {
		attrs = ai.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ai.Success {
		al.logger.Info("action_executed", args...)
	} else {
		al.logger.Warn("action_failed", args...)
	}
}

// LogActionAudit logs a protocol action with full audit details.
// This includes PII (full email addresses, attachment names) for
// compliance/audit purposes.
// SECURITY: Ensure audit logs are routed to secure storage with appropriate
// access controls.
//
// Note: This method respects the enabled flag but always includes PII when
// called, regardless of the IncludePII configuration. Use LogActionInvocation
// for configuration-aware logging.
func (al *AuditLogger) LogActionAudit(ai *ActionInvocation) {
	if !al.enabled {
		return
	}

	attrs := ai.LogAuditAttrs()
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	al.logger.Info("action_audit", args...)
}
