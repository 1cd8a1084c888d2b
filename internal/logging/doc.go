// Package logging provides slog attribute helpers shared across the
// application.
//
// The helpers keep attribute names consistent between the background
// handlers, the router and the editor session, and centralize the
// PII-scrubbing rules: user emails are logged as salted-free sha256
// prefixes and signed tokens only as a length indicator.
package logging
