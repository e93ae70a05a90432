// Package contract implements versioned event contracts: the binding of the
// event shapes a handler accepts and emits to semantic versions under one
// URI identity.
//
// A Contract is constructed once, validated eagerly, and immutable
// afterwards; version resolution produces read-only Versioned views that
// carry the concrete schemas for one version. The package also provides the
// orchestrator contract specialization, a concurrency-safe Registry, and
// JSON-Schema export for documentation and interchange.
package contract

import (
	"fmt"
	"sort"

	"github.com/randalmurphal/arvo/pkg/arvo"
	"github.com/randalmurphal/arvo/pkg/arvo/semver"
)

// Version selector aliases understood by Contract.Version.
const (
	// VersionLatest resolves the highest declared version.
	VersionLatest = "latest"
	// VersionAny is an alias of VersionLatest for callers expressing "no
	// preference".
	VersionAny = "any"
	// VersionOldest resolves the lowest declared version.
	VersionOldest = "oldest"
)

// Record pairs an event type with the schema its payload validates against.
type Record struct {
	Type   string  `json:"type"`
	Schema *Schema `json:"schema"`
}

// VersionSpec declares the shapes one contract version accepts and emits.
type VersionSpec struct {
	// Accepts validates the payload of events of the contract's own type.
	Accepts *Schema
	// Emits maps each emitted event type to its payload schema.
	Emits map[string]*Schema
	// Metadata carries optional per-version annotations, e.g. deprecation
	// notes. The contract never inspects it.
	Metadata map[string]any
}

// Params configures New.
type Params struct {
	// URI is the contract's globally unique identity.
	URI string
	// Type is the event type the contract's handler accepts.
	Type string
	// Description is optional human-readable text.
	Description string
	// Metadata is an opaque annotation bag carried through unmodified.
	Metadata map[string]any
	// Versions maps MAJOR.MINOR.PATCH keys to their version specs.
	Versions map[string]VersionSpec
}

// versionEntry is a version key with its parsed form, kept in ascending
// order for alias resolution.
type versionEntry struct {
	key string
	num *semver.Version
}

// Contract binds accepted and emitted event shapes to semantic versions
// under one URI identity.
//
// Once New returns, a Contract is immutable: accessors only read, resolution
// only allocates views, and concurrent use needs no locking.
type Contract struct {
	uri         string
	typ         string
	description string
	metadata    map[string]any
	versions    map[string]VersionSpec
	ordered     []versionEntry
}

// New validates params eagerly and constructs the contract. The structural
// rules, checked in order:
//
//  1. URI must be non-empty and pass percent-encoding round-trip validation.
//  2. Type must be a lowercase dotted identifier.
//  3. Every version key must parse as MAJOR.MINOR.PATCH, must not be the
//     reserved wildcard 0.0.0, must carry a non-nil accepts schema, and
//     every emitted event type must be a lowercase dotted identifier with a
//     non-nil schema.
//  4. At least one version must be declared.
//
// A contract that fails any check is never produced, so consumers of a
// *Contract can rely on its shape without re-validating.
func New(p Params) (*Contract, error) {
	if p.URI == "" || !arvo.ValidateURI(p.URI) {
		return nil, &InvalidURIError{URI: p.URI}
	}
	if !arvo.ValidateEventType(p.Type) {
		return nil, &InvalidEventTypeError{EventType: p.Type, URI: p.URI}
	}

	keys := make([]string, 0, len(p.Versions))
	for key := range p.Versions {
		keys = append(keys, key)
	}
	sort.Strings(keys) // deterministic validation order

	ordered := make([]versionEntry, 0, len(keys))
	for _, key := range keys {
		spec := p.Versions[key]

		num, err := semver.Parse(key)
		if err != nil {
			return nil, &InvalidVersionError{URI: p.URI, Version: key}
		}
		if semver.IsWildcard(key) {
			return nil, &ReservedVersionError{URI: p.URI}
		}
		if spec.Accepts == nil {
			return nil, &InvalidSchemaError{URI: p.URI, Version: key, EventType: p.Type, Err: errNilSchema}
		}

		emitTypes := make([]string, 0, len(spec.Emits))
		for emitType := range spec.Emits {
			emitTypes = append(emitTypes, emitType)
		}
		sort.Strings(emitTypes)
		for _, emitType := range emitTypes {
			if !arvo.ValidateEventType(emitType) {
				return nil, &InvalidEventTypeError{EventType: emitType, URI: p.URI, Version: key}
			}
			if spec.Emits[emitType] == nil {
				return nil, &InvalidSchemaError{URI: p.URI, Version: key, EventType: emitType, Err: errNilSchema}
			}
		}

		ordered = append(ordered, versionEntry{key: key, num: num})
	}
	if len(p.Versions) == 0 {
		return nil, fmt.Errorf("contract %q: %w", p.URI, ErrEmptyVersionSet)
	}

	sort.Slice(ordered, func(i, j int) bool {
		if cmp := semver.Compare(ordered[i].num, ordered[j].num); cmp != 0 {
			return cmp < 0
		}
		return ordered[i].key < ordered[j].key
	})

	// Copy the version map so later caller mutations cannot reach the
	// contract.
	versions := make(map[string]VersionSpec, len(p.Versions))
	for key, spec := range p.Versions {
		emits := make(map[string]*Schema, len(spec.Emits))
		for emitType, schema := range spec.Emits {
			emits[emitType] = schema
		}
		versions[key] = VersionSpec{
			Accepts:  spec.Accepts,
			Emits:    emits,
			Metadata: copyMetadata(spec.Metadata),
		}
	}

	return &Contract{
		uri:         p.URI,
		typ:         p.Type,
		description: p.Description,
		metadata:    copyMetadata(p.Metadata),
		versions:    versions,
		ordered:     ordered,
	}, nil
}

// MustNew is like New but panics on failure. Intended for package variables
// and tests with known-good params.
func MustNew(p Params) *Contract {
	c, err := New(p)
	if err != nil {
		panic(err)
	}
	return c
}

// URI returns the contract's identity.
func (c *Contract) URI() string {
	return c.uri
}

// Type returns the event type the contract's handler accepts.
func (c *Contract) Type() string {
	return c.typ
}

// Description returns the optional human-readable description.
func (c *Contract) Description() string {
	return c.description
}

// Metadata returns a copy of the contract's annotation bag.
func (c *Contract) Metadata() map[string]any {
	return copyMetadata(c.metadata)
}

// VersionNumbers returns the declared version keys ascending, oldest first.
func (c *Contract) VersionNumbers() []string {
	out := make([]string, len(c.ordered))
	for i, entry := range c.ordered {
		out[i] = entry.key
	}
	return out
}

// LatestVersion returns the highest declared version key.
func (c *Contract) LatestVersion() string {
	return c.ordered[len(c.ordered)-1].key
}

// OldestVersion returns the lowest declared version key.
func (c *Contract) OldestVersion() string {
	return c.ordered[0].key
}

// SystemError returns the standardized error record for this contract:
// type "sys.{type}.error" with the fixed error schema. It is computed on
// every call rather than stored, so it always derives from the current type.
func (c *Contract) SystemError() Record {
	return Record{
		Type:   "sys." + c.typ + ".error",
		Schema: systemErrorSchema,
	}
}

// Version resolves a selector into an immutable versioned view. The
// selector is either an exact declared version key, or one of the aliases
// "latest"/"any" (highest by semantic-version order) and "oldest" (lowest).
// Anything else fails with *UnknownVersionError.
func (c *Contract) Version(selector string) (*Versioned, error) {
	switch selector {
	case VersionLatest, VersionAny:
		return c.view(c.LatestVersion()), nil
	case VersionOldest:
		return c.view(c.OldestVersion()), nil
	}
	if _, ok := c.versions[selector]; !ok {
		return nil, &UnknownVersionError{URI: c.uri, Requested: selector}
	}
	return c.view(selector), nil
}

// view builds the versioned projection for a known-present key.
func (c *Contract) view(key string) *Versioned {
	return &Versioned{contract: c, version: key, spec: c.versions[key]}
}

func copyMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
