// Package server provides the shared host context, health checks, and
// the metrics HTTP server for the mailbridge native messaging host.
//
// # Key Components
//
// HostContext ties together the pieces the host needs at runtime: the
// configuration, the document format table, the token signer, the mail
// store client, and the window manager. Components that depend on a live
// store connection are attached after the connection is established.
//
// HealthChecker exposes liveness and readiness probes. Readiness reflects
// whether the store connection is up and the host is not shutting down.
//
// MetricsServer serves Prometheus metrics on a dedicated port. The host
// communicates over stdio, so observability endpoints cannot share the
// primary transport and get their own listener instead.
package server
