package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyAction     = "action"
	KeyRoute      = "route"
	KeyAttachment = "attachment"
	KeyTab        = "compose_tab"
	KeyMessage    = "message_id"
	KeyOperation  = "operation"
	KeyStatus     = "status"
	KeyError      = "error"
	KeyUserHash   = "user_hash"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithAction returns a logger with the protocol action attribute set.
func WithAction(logger *slog.Logger, action string) *slog.Logger {
	return logger.With(slog.String(KeyAction, action))
}

// WithRoute returns a logger with the route attribute set.
func WithRoute(logger *slog.Logger, route string) *slog.Logger {
	return logger.With(slog.String(KeyRoute, route))
}

// Action returns a slog attribute for a protocol action name.
func Action(action string) slog.Attr {
	return slog.String(KeyAction, action)
}

// Route returns a slog attribute for a router page name.
func Route(route string) slog.Attr {
	return slog.String(KeyRoute, route)
}

// Attachment returns a slog attribute for an attachment name.
func Attachment(name string) slog.Attr {
	return slog.String(KeyAttachment, name)
}

// Tab returns a slog attribute for a compose tab id.
func Tab(id int) slog.Attr {
	return slog.Int(KeyTab, id)
}

// Message returns a slog attribute for a message id.
func Message(id int) slog.Attr {
	return slog.Int(KeyMessage, id)
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error. A nil error yields an
// empty Group attribute that slog omits from output, so
// logger.Info("done", logging.Err(maybeNil)) is always safe.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a hashed representation of an email for
// logging. Log entries stay correlatable without exposing PII.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized user email.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// SanitizeToken returns a masked version of a signed token for logging.
// Only a length indicator is exposed; even partial token prefixes can
// aid attacks.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
