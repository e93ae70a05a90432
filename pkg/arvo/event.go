package arvo

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// CloudEvents constants fixed across every Arvo event.
const (
	// SpecVersion is the CloudEvents specification version Arvo events carry.
	SpecVersion = "1.0"

	// ContentType is the default datacontenttype: CloudEvents structured JSON
	// with the Arvo profile marker.
	ContentType = "application/cloudevents+json;charset=UTF-8;profile=arvo"
)

// Event is a CloudEvents 1.0 envelope extended with the Arvo routing and
// telemetry attributes. The JSON attribute names are the CloudEvents wire
// names; events serialized here are readable by Arvo runtimes on other
// platforms and vice versa.
//
// Events are immutable by convention: handlers derive new events rather than
// mutating received ones.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`
	// Source identifies the producer, a URI-reference.
	Source string `json:"source"`
	// SpecVersion is always "1.0".
	SpecVersion string `json:"specversion"`
	// Type is the event type, a lowercase dotted identifier.
	Type string `json:"type"`
	// Subject is the workflow identity token the event belongs to.
	Subject string `json:"subject"`
	// Time is when the event occurred.
	Time time.Time `json:"time"`
	// DataContentType describes the data encoding; defaults to ContentType.
	DataContentType string `json:"datacontenttype"`
	// DataSchema binds the event to one contract version: "{uri}/{version}".
	DataSchema string `json:"dataschema,omitempty"`
	// Data is the event payload.
	Data map[string]any `json:"data"`

	// To names the intended consumer. Empty means broadcast semantics are up
	// to the broker.
	To string `json:"to,omitempty"`
	// AccessControl carries an opaque access-control descriptor.
	AccessControl string `json:"accesscontrol,omitempty"`
	// RedirectTo names an alternative consumer for responses.
	RedirectTo string `json:"redirectto,omitempty"`
	// ExecutionUnits is the declared processing cost of the event.
	ExecutionUnits float64 `json:"executionunits,omitempty"`
	// TraceParent and TraceState carry the W3C trace context.
	TraceParent string `json:"traceparent,omitempty"`
	TraceState  string `json:"tracestate,omitempty"`
	// Domain assigns the event to a processing domain. Empty means the
	// default domain.
	Domain string `json:"domain,omitempty"`
}

// EventParams carries the caller-supplied attributes for NewEvent.
// ID and Time are generated when not overridden through options.
type EventParams struct {
	// Source identifies the producer; must be a valid URI-reference.
	Source string
	// Type is the event type; must be a lowercase dotted identifier.
	Type string
	// Subject is the workflow identity token.
	Subject string
	// Data is the event payload; nil defaults to an empty object.
	Data map[string]any
	// DataSchema optionally binds the event to a contract version.
	DataSchema string
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

// EventOption configures event creation.
type EventOption func(*eventConfig)

type eventConfig struct {
	id          string
	time        time.Time
	contentType string
	traceParent string
	traceState  string
}

// WithEventID sets a specific event ID (default: auto-generated UUID).
func WithEventID(id string) EventOption {
	return func(cfg *eventConfig) {
		cfg.id = id
	}
}

// WithEventTime sets a specific event time (default: time.Now).
func WithEventTime(t time.Time) EventOption {
	return func(cfg *eventConfig) {
		cfg.time = t
	}
}

// WithContentType overrides the default datacontenttype.
func WithContentType(ct string) EventOption {
	return func(cfg *eventConfig) {
		cfg.contentType = ct
	}
}

// WithTraceContext stamps the W3C trace context onto the event.
func WithTraceContext(traceParent, traceState string) EventOption {
	return func(cfg *eventConfig) {
		cfg.traceParent = traceParent
		cfg.traceState = traceState
	}
}

// NewEvent builds and validates an event envelope. Generated defaults: a
// UUID id, the current time, and the Arvo content type. Validation failures
// return a *FieldError naming the offending attribute.
func NewEvent(p EventParams, opts ...EventOption) (*Event, error) {
	cfg := &eventConfig{
		id:          uuid.New().String(),
		time:        time.Now(),
		contentType: ContentType,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	data := p.Data
	if data == nil {
		data = map[string]any{}
	}

	e := &Event{
		ID:              cfg.id,
		Source:          p.Source,
		SpecVersion:     SpecVersion,
		Type:            p.Type,
		Subject:         p.Subject,
		Time:            cfg.time,
		DataContentType: cfg.contentType,
		DataSchema:      p.DataSchema,
		Data:            data,
		To:              p.To,
		AccessControl:   p.AccessControl,
		RedirectTo:      p.RedirectTo,
		ExecutionUnits:  p.ExecutionUnits,
		TraceParent:     cfg.traceParent,
		TraceState:      cfg.traceState,
		Domain:          p.Domain,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the envelope's attribute rules: type is a lowercase dotted
// identifier; source and subject are non-empty valid URI-references; the
// optional URI-bearing attributes are valid when present; the execution cost
// is non-negative.
func (e *Event) Validate() error {
	if e.ID == "" {
		return &FieldError{Field: "id", Value: e.ID, Reason: "must not be empty"}
	}
	if !ValidateEventType(e.Type) {
		return &FieldError{Field: "type", Value: e.Type, Reason: "must be a lowercase dotted identifier"}
	}
	if e.Source == "" || !ValidateURI(e.Source) {
		return &FieldError{Field: "source", Value: e.Source, Reason: "must be a non-empty properly encoded URI"}
	}
	if e.Subject == "" || !ValidateURI(e.Subject) {
		return &FieldError{Field: "subject", Value: e.Subject, Reason: "must be a non-empty properly encoded URI"}
	}
	if e.DataSchema != "" && !ValidateURI(e.DataSchema) {
		return &FieldError{Field: "dataschema", Value: e.DataSchema, Reason: "must be a properly encoded URI"}
	}
	if e.To != "" && !ValidateURI(e.To) {
		return &FieldError{Field: "to", Value: e.To, Reason: "must be a properly encoded URI"}
	}
	if e.RedirectTo != "" && !ValidateURI(e.RedirectTo) {
		return &FieldError{Field: "redirectto", Value: e.RedirectTo, Reason: "must be a properly encoded URI"}
	}
	if e.ExecutionUnits < 0 {
		return &FieldError{
			Field:  "executionunits",
			Value:  strconv.FormatFloat(e.ExecutionUnits, 'g', -1, 64),
			Reason: "must not be negative",
		}
	}
	return nil
}

// ToJSON serializes the envelope in its CloudEvents structured form.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON deserializes a CloudEvents structured envelope and validates it.
func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// String returns the compact JSON form, best effort.
func (e *Event) String() string {
	raw, err := e.ToJSON()
	if err != nil {
		return "event " + e.ID
	}
	return string(raw)
}

// OtelAttributes returns the event's OpenTelemetry span attributes using the
// CloudEvents semantic convention names; the Arvo extension attributes go
// under the cloudevents.arvo namespace. Unset optional attributes are
// omitted.
func (e *Event) OtelAttributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("cloudevents.event_id", e.ID),
		attribute.String("cloudevents.event_source", e.Source),
		attribute.String("cloudevents.event_spec_version", e.SpecVersion),
		attribute.String("cloudevents.event_type", e.Type),
		attribute.String("cloudevents.event_subject", e.Subject),
	}
	if !e.Time.IsZero() {
		attrs = append(attrs, attribute.String("cloudevents.event_time", e.Time.Format(time.RFC3339Nano)))
	}
	if e.DataSchema != "" {
		attrs = append(attrs, attribute.String("cloudevents.event_dataschema", e.DataSchema))
	}
	if e.To != "" {
		attrs = append(attrs, attribute.String("cloudevents.arvo.event_to", e.To))
	}
	if e.AccessControl != "" {
		attrs = append(attrs, attribute.String("cloudevents.arvo.event_accesscontrol", e.AccessControl))
	}
	if e.RedirectTo != "" {
		attrs = append(attrs, attribute.String("cloudevents.arvo.event_redirectto", e.RedirectTo))
	}
	if e.ExecutionUnits != 0 {
		attrs = append(attrs, attribute.Float64("cloudevents.arvo.event_executionunits", e.ExecutionUnits))
	}
	if e.Domain != "" {
		attrs = append(attrs, attribute.String("cloudevents.arvo.event_domain", e.Domain))
	}
	return attrs
}
