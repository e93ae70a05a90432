// Package subject encodes and decodes the compact workflow identity token
// carried in the CloudEvents subject attribute of orchestrated events.
//
// A token is base64(zlib(JSON)) over a small identity record: which
// orchestrator the execution targets (name and contract version), who
// initiated it, an optional routing domain, and free-form meta annotations.
// Tokens are immutable strings; derivation with From builds a child token
// that records the parent's orchestrator as its initiator and inherits the
// parent's meta and domain.
//
// The wire shape is shared with non-Go runtimes: the zlib framing and the
// JSON field names are a compatibility surface and must not change.
package subject

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/randalmurphal/arvo/pkg/arvo"
	"github.com/randalmurphal/arvo/pkg/arvo/semver"
)

// Orchestrator identifies the workflow handler a token targets.
type Orchestrator struct {
	// Name is the orchestrator's dotted identifier, e.g. "order.flow".
	Name string `json:"name"`
	// Version is the contract version the initiator expects, or the
	// wildcard 0.0.0 when version-agnostic.
	Version string `json:"version"`
}

// Execution identifies one workflow execution.
type Execution struct {
	// ID uniquely identifies the execution. New and From mint fresh UUIDs;
	// on decode any non-empty string without ';' is accepted.
	ID string `json:"id"`
	// Initiator is the dotted identifier of whoever started the execution.
	// For derived tokens this is always the parent's orchestrator name.
	Initiator string `json:"initiator"`
	// Domain is an optional routing annotation. nil means unassigned and
	// serializes as JSON null.
	Domain *string `json:"domain"`
}

// Content is the decoded form of a subject token.
type Content struct {
	Orchestrator Orchestrator      `json:"orchestrator"`
	Execution    Execution         `json:"execution"`
	Meta         map[string]string `json:"meta"`
}

// Option configures New and From.
type Option func(*config)

type config struct {
	domain      *string
	clearDomain bool
	meta        map[string]string
}

// WithDomain assigns the execution domain, overriding any inherited value.
// The empty string is not a domain; passing it fails token creation.
func WithDomain(domain string) Option {
	return func(cfg *config) {
		cfg.domain = &domain
		cfg.clearDomain = false
	}
}

// WithoutDomain clears the execution domain, discarding any value the
// parent token would otherwise contribute.
func WithoutDomain() Option {
	return func(cfg *config) {
		cfg.domain = nil
		cfg.clearDomain = true
	}
}

// WithMeta attaches meta annotations to the token. When deriving from a
// parent, these keys win over inherited ones.
func WithMeta(meta map[string]string) Option {
	return func(cfg *config) {
		cfg.meta = meta
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// resolveDomain applies the domain precedence: an explicit clear wins, then
// an explicit value, then whatever was inherited.
func (cfg *config) resolveDomain(inherited *string) *string {
	switch {
	case cfg.clearDomain:
		return nil
	case cfg.domain != nil:
		return cfg.domain
	default:
		return inherited
	}
}

// New mints a token for a fresh workflow execution. An empty version
// defaults to the wildcard version; a fresh execution ID is generated on
// every call.
func New(orchestrator, version, initiator string, opts ...Option) (string, error) {
	cfg := newConfig(opts)
	if version == "" {
		version = semver.Wildcard
	}
	meta := cfg.meta
	if meta == nil {
		meta = map[string]string{}
	}
	return Create(Content{
		Orchestrator: Orchestrator{Name: orchestrator, Version: version},
		Execution: Execution{
			ID:        uuid.New().String(),
			Initiator: initiator,
			Domain:    cfg.resolveDomain(nil),
		},
		Meta: meta,
	})
}

// From derives a child token from an existing parent token.
//
// The child's initiator is always the parent's orchestrator name, so a walk
// of initiator fields from any descendant reconstructs the spawn chain one
// hop at a time. The parent's meta annotations carry over with caller keys
// winning on conflict, and its domain is inherited unless overridden with
// WithDomain or cleared with WithoutDomain. A fresh execution ID is minted:
// a child execution is a distinct execution, not a continuation of the
// parent's.
func From(parentSubject, orchestrator, version string, opts ...Option) (string, error) {
	parent, err := Parse(parentSubject)
	if err != nil {
		return "", err
	}
	cfg := newConfig(opts)

	meta := make(map[string]string, len(parent.Meta)+len(cfg.meta))
	for k, v := range parent.Meta {
		meta[k] = v
	}
	for k, v := range cfg.meta {
		meta[k] = v
	}

	if version == "" {
		version = semver.Wildcard
	}
	return Create(Content{
		Orchestrator: Orchestrator{Name: orchestrator, Version: version},
		Execution: Execution{
			ID:        uuid.New().String(),
			Initiator: parent.Orchestrator.Name,
			Domain:    cfg.resolveDomain(parent.Execution.Domain),
		},
		Meta: meta,
	})
}

// Create validates content and encodes it into a token: JSON serialization,
// zlib compression, base64. A nil Meta map encodes as an empty one. Most
// callers want New or From instead; Create is the low-level path for
// pre-built content.
func Create(content Content) (string, error) {
	if content.Meta == nil {
		content.Meta = map[string]string{}
	}
	if err := validateContent(content); err != nil {
		return "", &EncodingError{Content: content, Err: err}
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return "", &EncodingError{Content: content, Err: err}
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return "", &EncodingError{Content: content, Err: err}
	}
	if err := zw.Close(); err != nil {
		return "", &EncodingError{Content: content, Err: err}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Parse decodes and validates a token, the inverse of Create. Any failure
// along the way (malformed base64, corrupt compressed stream, invalid JSON,
// content violating the data model) yields a *DecodingError.
func Parse(token string) (Content, error) {
	compressed, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Content{}, &DecodingError{Subject: token, Err: err}
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return Content{}, &DecodingError{Subject: token, Err: err}
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return Content{}, &DecodingError{Subject: token, Err: err}
	}

	var content Content
	if err := json.Unmarshal(raw, &content); err != nil {
		return Content{}, &DecodingError{Subject: token, Err: err}
	}
	if content.Meta == nil {
		content.Meta = map[string]string{}
	}
	if err := validateContent(content); err != nil {
		return Content{}, &DecodingError{Subject: token, Err: err}
	}
	return content, nil
}

// IsValid reports whether token parses as a well-formed subject. It never
// returns an error: malformed input of any kind simply yields false.
func IsValid(token string) bool {
	_, err := Parse(token)
	return err == nil
}

// validateContent enforces the data model shared by Create and Parse.
// The ';' checks guard a reserved separator even though the current
// encoding never emits one.
func validateContent(c Content) error {
	if !arvo.ValidateEventType(c.Orchestrator.Name) {
		return fmt.Errorf("orchestrator name %q is not a lowercase dotted identifier", c.Orchestrator.Name)
	}
	if !semver.IsValid(c.Orchestrator.Version) {
		return fmt.Errorf("orchestrator version %q is not MAJOR.MINOR.PATCH", c.Orchestrator.Version)
	}
	if c.Execution.ID == "" {
		return errors.New("execution id is empty")
	}
	if strings.ContainsRune(c.Execution.ID, ';') {
		return fmt.Errorf("execution id %q contains reserved character ';'", c.Execution.ID)
	}
	if !arvo.ValidateEventType(c.Execution.Initiator) {
		return fmt.Errorf("initiator %q is not a lowercase dotted identifier", c.Execution.Initiator)
	}
	if c.Execution.Domain != nil && *c.Execution.Domain == "" {
		return errors.New("domain must be a non-empty string or null")
	}
	return nil
}
