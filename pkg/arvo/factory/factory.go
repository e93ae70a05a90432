// Package factory builds events bound to a resolved contract version.
//
// A factory validates every payload against the contract's schema before the
// event exists, stamps the event type and dataschema the contract dictates,
// and propagates the active trace context onto the envelope. Handlers using
// factories cannot emit an event their contract does not declare.
package factory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/arvo/pkg/arvo"
	"github.com/randalmurphal/arvo/pkg/arvo/contract"
	"github.com/randalmurphal/arvo/pkg/arvo/observability"
)

// config holds the observability collaborators shared by all factories.
type config struct {
	spans   observability.SpanManager
	metrics observability.MetricsRecorder
	logger  *slog.Logger
}

func defaultFactoryConfig() config {
	return config{
		spans:   observability.NewSpanManager(),
		metrics: observability.NewMetricsRecorder(),
	}
}

// Option configures a factory.
type Option func(*config)

// WithSpanManager sets the span manager. Default: OTel via the global
// tracer provider; use observability.NoopSpanManager{} to disable.
func WithSpanManager(spans observability.SpanManager) Option {
	return func(cfg *config) {
		cfg.spans = spans
	}
}

// WithMetrics sets the metrics recorder. Default: OTel via the global meter
// provider; use observability.NoopMetrics{} to disable.
func WithMetrics(metrics observability.MetricsRecorder) Option {
	return func(cfg *config) {
		cfg.metrics = metrics
	}
}

// WithLogger sets the logger. Default: nil (no logging).
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// EventParams carries the caller-controlled attributes of a factory-built
// event. The event type and dataschema always come from the contract, never
// from the caller.
type EventParams struct {
	// Source identifies the producer; must be a valid URI-reference.
	Source string
	// Subject is the workflow identity token the event belongs to.
	Subject string
	// Data is the payload validated against the contract schema.
	Data map[string]any
	// To optionally names the intended consumer.
	To string
	// AccessControl optionally carries an access-control descriptor.
	AccessControl string
	// RedirectTo optionally names an alternative response consumer.
	RedirectTo string
	// ExecutionUnits optionally declares the processing cost.
	ExecutionUnits float64
	// Domain optionally assigns the event to a processing domain.
	Domain string
}

// EventFactory builds events for one resolved contract version.
// Factories are stateless besides their collaborators and safe for
// concurrent use.
type EventFactory struct {
	versioned *contract.Versioned
	cfg       config
}

// New creates a factory bound to a resolved contract version.
func New(v *contract.Versioned, opts ...Option) *EventFactory {
	cfg := defaultFactoryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &EventFactory{versioned: v, cfg: cfg}
}

// Versioned returns the contract version the factory is bound to.
func (f *EventFactory) Versioned() *contract.Versioned {
	return f.versioned
}

// Accepts builds an event of the contract's own type: the payload is
// validated against the version's accepts schema and the event is stamped
// with the version's dataschema. Schema violations fail with
// *DataValidationError.
func (f *EventFactory) Accepts(ctx context.Context, p EventParams, opts ...arvo.EventOption) (*arvo.Event, error) {
	ctx, span := f.cfg.spans.StartFactorySpan(ctx, "arvo.factory.accepts", f.versioned.URI(), f.versioned.Version())
	record := f.versioned.Accepts()
	evt, err := f.build(ctx, record, f.versioned.Dataschema(), p, opts)
	f.cfg.spans.EndSpanWithError(span, err)
	return evt, err
}

// Emits builds an event of one of the contract's declared emitted types.
// An undeclared type fails with *UnknownEmitError before the payload is
// looked at.
func (f *EventFactory) Emits(ctx context.Context, eventType string, p EventParams, opts ...arvo.EventOption) (*arvo.Event, error) {
	ctx, span := f.cfg.spans.StartFactorySpan(ctx, "arvo.factory.emits", f.versioned.URI(), f.versioned.Version())
	schema, ok := f.versioned.Emit(eventType)
	if !ok {
		err := &UnknownEmitError{EventType: eventType, URI: f.versioned.URI(), Version: f.versioned.Version()}
		f.cfg.spans.EndSpanWithError(span, err)
		return nil, err
	}
	evt, err := f.build(ctx, contract.Record{Type: eventType, Schema: schema}, f.versioned.Dataschema(), p, opts)
	f.cfg.spans.EndSpanWithError(span, err)
	return evt, err
}

// SystemError builds the contract's standardized error event for cause.
// The payload is derived from the error (name, message, and a stack when
// the error formats one); the dataschema carries the wildcard version since
// the error schema is fixed across versions.
func (f *EventFactory) SystemError(ctx context.Context, cause error, p EventParams, opts ...arvo.EventOption) (*arvo.Event, error) {
	ctx, span := f.cfg.spans.StartFactorySpan(ctx, "arvo.factory.system_error", f.versioned.URI(), f.versioned.Version())
	p.Data = map[string]any{
		"errorName":    fmt.Sprintf("%T", cause),
		"errorMessage": cause.Error(),
		"errorStack":   errorStack(cause),
	}
	evt, err := f.build(ctx, f.versioned.SystemError(), contract.WildcardDataschema(f.versioned.URI()), p, opts)
	f.cfg.spans.EndSpanWithError(span, err)
	return evt, err
}

// build validates the payload and assembles the envelope. The active trace
// context is stamped first so explicit caller options can still override it.
func (f *EventFactory) build(ctx context.Context, record contract.Record, dataschema string, p EventParams, opts []arvo.EventOption) (*arvo.Event, error) {
	data := p.Data
	if data == nil {
		data = map[string]any{}
	}
	if err := record.Schema.Validate(data); err != nil {
		verr := &DataValidationError{
			URI:       f.versioned.URI(),
			Version:   f.versioned.Version(),
			EventType: record.Type,
			Err:       err,
		}
		observability.LogEventValidationFailure(f.cfg.logger, record.Type, verr)
		return nil, verr
	}

	traceParent, traceState := observability.CurrentHeaders(ctx)
	allOpts := make([]arvo.EventOption, 0, len(opts)+1)
	if traceParent != "" {
		allOpts = append(allOpts, arvo.WithTraceContext(traceParent, traceState))
	}
	allOpts = append(allOpts, opts...)

	evt, err := arvo.NewEvent(arvo.EventParams{
		Source:         p.Source,
		Type:           record.Type,
		Subject:        p.Subject,
		Data:           data,
		DataSchema:     dataschema,
		To:             p.To,
		AccessControl:  p.AccessControl,
		RedirectTo:     p.RedirectTo,
		ExecutionUnits: p.ExecutionUnits,
		Domain:         p.Domain,
	}, allOpts...)
	if err != nil {
		return nil, err
	}

	f.cfg.metrics.RecordEventCreated(ctx, evt.Type, evt.Domain)
	f.cfg.spans.AddSpanEvent(ctx, "arvo.event.created", evt.OtelAttributes()...)
	observability.LogEventCreated(f.cfg.logger, evt.ID, evt.Type, evt.DataSchema)
	return evt, nil
}

// errorStack extracts a stack-like rendering from errors whose verbose form
// differs from their message. Plain errors yield nil, matching the nullable
// errorStack field.
func errorStack(err error) any {
	if formatted := fmt.Sprintf("%+v", err); formatted != err.Error() {
		return formatted
	}
	return nil
}
