package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the arvo tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("arvo")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartFactorySpan starts a span for one factory operation, e.g.
	// "arvo.factory.accepts". The contract URI and resolved version are
	// recorded as attributes.
	StartFactorySpan(ctx context.Context, operation, contractURI, version string) (context.Context, trace.Span)

	// StartContractSpan starts a span for a contract-level operation such
	// as registration or resolution.
	StartContractSpan(ctx context.Context, operation, contractURI string) (context.Context, trace.Span)

	// StartSubjectSpan starts a span for a subject codec operation, e.g.
	// "arvo.subject.mint". The orchestrator name is recorded as an
	// attribute.
	StartSubjectSpan(ctx context.Context, operation, orchestrator string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartFactorySpan starts a span for one factory operation.
func (m *otelSpanManager) StartFactorySpan(ctx context.Context, operation, contractURI, version string) (context.Context, trace.Span) {
	return tracer.Start(ctx, operation,
		trace.WithAttributes(
			attribute.String("arvo.contract.uri", contractURI),
			attribute.String("arvo.contract.version", version),
		),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
}

// StartContractSpan starts a span for a contract-level operation.
func (m *otelSpanManager) StartContractSpan(ctx context.Context, operation, contractURI string) (context.Context, trace.Span) {
	return tracer.Start(ctx, operation,
		trace.WithAttributes(
			attribute.String("arvo.contract.uri", contractURI),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartSubjectSpan starts a span for a subject codec operation.
func (m *otelSpanManager) StartSubjectSpan(ctx context.Context, operation, orchestrator string) (context.Context, trace.Span) {
	return tracer.Start(ctx, operation,
		trace.WithAttributes(
			attribute.String("arvo.subject.orchestrator", orchestrator),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// CurrentHeaders returns the W3C trace context of the active span for
// stamping onto an event envelope. Both values are empty when the context
// carries no valid span.
func CurrentHeaders(ctx context.Context) (traceParent, traceState string) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", ""
	}
	traceParent = fmt.Sprintf("00-%s-%s-%s",
		sc.TraceID().String(), sc.SpanID().String(), sc.TraceFlags().String())
	return traceParent, sc.TraceState().String()
}
