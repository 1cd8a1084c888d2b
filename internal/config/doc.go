// Package config loads the application configuration and the
// supported-formats table.
//
// Both are loaded exactly once at startup and are read-only for the
// rest of the session. Configuration failures (bad server URL, missing
// or malformed formats manifest) are fatal; there is no retry or
// partial configuration.
//
// The formats manifest is an array of per-extension records shipped by
// the document server vendor. It drives every "is this file supported"
// and "what may the editor do with this format" decision in the
// application, so the table is passed to consumers explicitly rather
// than exposed as a package-level singleton.
package config
