// Package metric provides Prometheus metrics for fitplan-cli.
//
// Metrics cover the client session and its calls to the fitplan service:
//
//   - session state transitions and the authenticated gauge
//   - gateway request counts by operation and outcome
//   - gateway request latency histograms
//
// The registry is private to the process. The interactive shell can expose it
// over HTTP in Prometheus text format.
package metric
