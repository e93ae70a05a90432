package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordEventCreated does nothing.
func (NoopMetrics) RecordEventCreated(_ context.Context, _, _ string) {}

// RecordSubjectEncoded does nothing.
func (NoopMetrics) RecordSubjectEncoded(_ context.Context, _ int) {}

// RecordSubjectDecodeFailure does nothing.
func (NoopMetrics) RecordSubjectDecodeFailure(_ context.Context) {}

// RecordContractResolution does nothing.
func (NoopMetrics) RecordContractResolution(_ context.Context, _, _ string, _ error) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartFactorySpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartFactorySpan(ctx context.Context, _, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartContractSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartContractSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartSubjectSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartSubjectSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
