// Package observability groups the logging, metrics and tracing helpers.
//
// Subpackages:
//   - logging: slog constructors and context propagation
//   - metrics: Prometheus registry and portal recorders
//   - tracing: OpenTelemetry provider setup and HTTP middleware
package observability
