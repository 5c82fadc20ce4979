// Package logger provides structured logging for fitplan-cli.
//
// This package wraps log/slog:
//
//   - logger.go: Logger interface, configuration and the process default
//   - context.go: context propagation for loggers and request IDs
//   - redact.go: masking of credentials before they reach the output
//
// The CLI logs diagnostics to stderr so that stdout stays reserved for
// command output.
package logger
