// Package observability builds the process logger, the OpenTelemetry tracer
// provider and the Prometheus metrics.
//
// NewLogger returns a slog.Logger whose handler redacts sensitive attributes
// (password, token, secret, credential, api_key) and adds trace_id and
// span_id when the record's context carries a span. InitTracing exports spans
// over OTLP/gRPC, or records nothing when tracing is disabled. Metrics
// implements both catalog.Recorder and graph.SessionObserver so one value
// observes operations and session lifetimes.
package observability
