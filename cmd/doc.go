// Package cmd implements the command-line interface for mailbridge.
//
// This package provides the following commands:
//   - serve: Run the native messaging host on stdin/stdout
//   - version: Display version information
//
// The serve command is the default command when no subcommand is
// specified, because the mail client launches the host binary without
// arguments.
package cmd
