// Package repl provides the interactive shell of fitplan-cli.
//
//   - repl.go: read-eval-print loop and line splitting
//   - completer.go: command-name completion
//   - history.go: command history persistence
//
// A line ending in "?" lists the commands that complete it instead of
// running anything, e.g. "pro?" or "plan ?".
package repl
