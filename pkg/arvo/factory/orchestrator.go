package factory

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/arvo/pkg/arvo"
	"github.com/randalmurphal/arvo/pkg/arvo/contract"
	"github.com/randalmurphal/arvo/pkg/arvo/observability"
	"github.com/randalmurphal/arvo/pkg/arvo/subject"
)

// OrchestratorFactory builds the lifecycle events of a workflow
// orchestrator: the init event that starts an execution and the completion
// event that ends it. It extends EventFactory, so the generic Emits and
// SystemError operations remain available.
type OrchestratorFactory struct {
	*EventFactory
	completeType string
}

// NewOrchestrator creates a factory for an orchestrator contract version.
// Contracts not built by contract.NewOrchestrator fail with
// ErrNotOrchestrator.
func NewOrchestrator(v *contract.Versioned, opts ...Option) (*OrchestratorFactory, error) {
	if !contract.IsOrchestrator(v.Contract()) {
		return nil, ErrNotOrchestrator
	}
	return &OrchestratorFactory{
		EventFactory: New(v, opts...),
		completeType: v.Accepts().Type + contract.OrchestratorCompleteSuffix,
	}, nil
}

// InitParams carries the attributes of an execution-starting event.
type InitParams struct {
	// Source identifies the producer. For root executions it doubles as the
	// subject's initiator, so it must be a lowercase dotted identifier.
	Source string
	// Data is the init payload. It must carry the parent linkage field
	// ("parentSubject$$"): nil for a root execution, or the parent
	// execution's subject token for a nested one.
	Data map[string]any
	// Subject optionally pins an explicit pre-built subject token. When
	// empty, the factory mints one: a fresh root token, or a child of the
	// parent token found in Data.
	Subject string
	// Meta attaches subject meta annotations to a minted token.
	Meta map[string]string
	// To optionally names the intended consumer.
	To string
	// AccessControl optionally carries an access-control descriptor.
	AccessControl string
	// RedirectTo optionally names an alternative response consumer.
	RedirectTo string
	// ExecutionUnits optionally declares the processing cost.
	ExecutionUnits float64
	// Domain optionally assigns the event and the minted subject to a
	// processing domain.
	Domain string
}

// Init builds the event that starts an orchestrator execution.
//
// The payload is validated against the version's accepted schema, which
// includes the required nullable parent linkage field. Unless an explicit
// subject is supplied, the workflow identity token is minted here: a root
// token initiated by Source when the linkage field is null, or a child of
// the referenced parent token otherwise, so nested executions inherit the
// parent's meta and domain per the subject derivation rules.
func (f *OrchestratorFactory) Init(ctx context.Context, p InitParams, opts ...arvo.EventOption) (*arvo.Event, error) {
	ctx, span := f.cfg.spans.StartFactorySpan(ctx, "arvo.factory.init", f.versioned.URI(), f.versioned.Version())
	evt, err := f.init(ctx, p, opts)
	f.cfg.spans.EndSpanWithError(span, err)
	return evt, err
}

func (f *OrchestratorFactory) init(ctx context.Context, p InitParams, opts []arvo.EventOption) (*arvo.Event, error) {
	data := p.Data
	if data == nil {
		data = map[string]any{}
	}
	record := f.versioned.Accepts()
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

	token := p.Subject
	if token == "" {
		minted, err := f.mintSubject(ctx, p, data)
		if err != nil {
			return nil, err
		}
		token = minted
		f.cfg.metrics.RecordSubjectEncoded(ctx, len(token))
	}

	p2 := EventParams{
		Source:         p.Source,
		Subject:        token,
		Data:           data,
		To:             p.To,
		AccessControl:  p.AccessControl,
		RedirectTo:     p.RedirectTo,
		ExecutionUnits: p.ExecutionUnits,
		Domain:         p.Domain,
	}
	return f.build(ctx, record, f.versioned.Dataschema(), p2, opts)
}

// mintSubject builds the workflow identity token for an init event, deriving
// from the parent token referenced in the payload when one is present.
func (f *OrchestratorFactory) mintSubject(ctx context.Context, p InitParams, data map[string]any) (token string, err error) {
	orchestrator := f.versioned.Accepts().Type
	ctx, span := f.cfg.spans.StartSubjectSpan(ctx, "arvo.subject.mint", orchestrator)
	defer func() { f.cfg.spans.EndSpanWithError(span, err) }()

	var sopts []subject.Option
	if p.Domain != "" {
		sopts = append(sopts, subject.WithDomain(p.Domain))
	}
	if p.Meta != nil {
		sopts = append(sopts, subject.WithMeta(p.Meta))
	}

	version := f.versioned.Version()

	if parent, ok := data[contract.ParentSubjectField].(string); ok && parent != "" {
		token, err = subject.From(parent, orchestrator, version, sopts...)
		if err != nil {
			var derr *subject.DecodingError
			if errors.As(err, &derr) {
				f.cfg.metrics.RecordSubjectDecodeFailure(ctx)
				observability.LogDecodeFailure(f.cfg.logger, err)
			}
			return "", fmt.Errorf("derive init subject: %w", err)
		}
		observability.LogSubjectMinted(f.cfg.logger, orchestrator, len(token))
		return token, nil
	}

	token, err = subject.New(orchestrator, version, p.Source, sopts...)
	if err != nil {
		return "", fmt.Errorf("mint init subject: %w", err)
	}
	observability.LogSubjectMinted(f.cfg.logger, orchestrator, len(token))
	return token, nil
}

// CompleteParams carries the attributes of an execution-ending event.
type CompleteParams struct {
	// Source identifies the producer, usually the orchestrator itself.
	Source string
	// Subject is the execution's own subject token.
	Subject string
	// Data is the completion payload.
	Data map[string]any
	// To optionally names the consumer of the completion, usually the
	// initiator.
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

// Complete builds the event that ends an orchestrator execution, validated
// against the version's completion schema.
func (f *OrchestratorFactory) Complete(ctx context.Context, p CompleteParams, opts ...arvo.EventOption) (*arvo.Event, error) {
	return f.Emits(ctx, f.completeType, EventParams{
		Source:         p.Source,
		Subject:        p.Subject,
		Data:           p.Data,
		To:             p.To,
		AccessControl:  p.AccessControl,
		RedirectTo:     p.RedirectTo,
		ExecutionUnits: p.ExecutionUnits,
		Domain:         p.Domain,
	}, opts...)
}

// CompleteType returns the completion event type.
func (f *OrchestratorFactory) CompleteType() string {
	return f.completeType
}
