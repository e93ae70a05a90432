package arvo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// headerContentType is the HTTP content type header name.
const headerContentType = "Content-Type"

// ToBinaryHTTP maps an event to the CloudEvents HTTP binary mode: every
// envelope attribute becomes a "ce-"-prefixed header and the body carries
// the data payload as plain JSON.
func ToBinaryHTTP(e *Event) (headers map[string]string, body []byte, err error) {
	if err := e.Validate(); err != nil {
		return nil, nil, err
	}
	body, err = json.Marshal(e.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("serialize event data: %w", err)
	}

	headers = map[string]string{
		headerContentType: "application/json",
		"ce-id":           e.ID,
		"ce-source":       e.Source,
		"ce-specversion":  e.SpecVersion,
		"ce-type":         e.Type,
		"ce-subject":      e.Subject,
		"ce-time":         e.Time.Format(time.RFC3339Nano),
	}
	if e.DataContentType != "" {
		headers["ce-datacontenttype"] = e.DataContentType
	}
	if e.DataSchema != "" {
		headers["ce-dataschema"] = e.DataSchema
	}
	if e.To != "" {
		headers["ce-to"] = e.To
	}
	if e.AccessControl != "" {
		headers["ce-accesscontrol"] = e.AccessControl
	}
	if e.RedirectTo != "" {
		headers["ce-redirectto"] = e.RedirectTo
	}
	if e.ExecutionUnits != 0 {
		headers["ce-executionunits"] = strconv.FormatFloat(e.ExecutionUnits, 'g', -1, 64)
	}
	if e.TraceParent != "" {
		headers["ce-traceparent"] = e.TraceParent
	}
	if e.TraceState != "" {
		headers["ce-tracestate"] = e.TraceState
	}
	if e.Domain != "" {
		headers["ce-domain"] = e.Domain
	}
	return headers, body, nil
}

// FromBinaryHTTP rebuilds an event from CloudEvents HTTP binary mode.
// Header names are matched case-insensitively; the body, when non-empty,
// must be a JSON object. The rebuilt envelope passes the same validation
// as NewEvent.
func FromBinaryHTTP(headers map[string]string, body []byte) (*Event, error) {
	get := func(name string) string {
		if v, ok := headers[name]; ok {
			return v
		}
		for k, v := range headers {
			if strings.EqualFold(k, name) {
				return v
			}
		}
		return ""
	}

	e := &Event{
		ID:              get("ce-id"),
		Source:          get("ce-source"),
		SpecVersion:     get("ce-specversion"),
		Type:            get("ce-type"),
		Subject:         get("ce-subject"),
		DataContentType: get("ce-datacontenttype"),
		DataSchema:      get("ce-dataschema"),
		To:              get("ce-to"),
		AccessControl:   get("ce-accesscontrol"),
		RedirectTo:      get("ce-redirectto"),
		TraceParent:     get("ce-traceparent"),
		TraceState:      get("ce-tracestate"),
		Domain:          get("ce-domain"),
		Data:            map[string]any{},
	}
	if e.DataContentType == "" {
		e.DataContentType = ContentType
	}

	if raw := get("ce-time"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, &FieldError{Field: "time", Value: raw, Reason: "must be RFC 3339"}
		}
		e.Time = t
	}
	if raw := get("ce-executionunits"); raw != "" {
		units, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &FieldError{Field: "executionunits", Value: raw, Reason: "must be a number"}
		}
		e.ExecutionUnits = units
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &e.Data); err != nil {
			return nil, fmt.Errorf("deserialize event data: %w", err)
		}
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// ToStructuredHTTP maps an event to the CloudEvents HTTP structured mode:
// the whole envelope travels as the body under the Arvo content type.
func ToStructuredHTTP(e *Event) (headers map[string]string, body []byte, err error) {
	if err := e.Validate(); err != nil {
		return nil, nil, err
	}
	body, err = e.ToJSON()
	if err != nil {
		return nil, nil, err
	}
	return map[string]string{headerContentType: ContentType}, body, nil
}

// FromStructuredHTTP rebuilds an event from CloudEvents HTTP structured
// mode. When a content type header is present it must carry a CloudEvents
// JSON media type.
func FromStructuredHTTP(headers map[string]string, body []byte) (*Event, error) {
	for k, v := range headers {
		if !strings.EqualFold(k, headerContentType) {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(v), "application/cloudevents+json") {
			return nil, fmt.Errorf("unexpected content type %q for structured event", v)
		}
		break
	}
	return FromJSON(body)
}
