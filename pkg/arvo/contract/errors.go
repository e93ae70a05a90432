package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors for contract construction and registry lookups.
var (
	// ErrEmptyVersionSet indicates a contract declared zero versions.
	ErrEmptyVersionSet = errors.New("contract must declare at least one version")

	// ErrDuplicateURI indicates a registry already holds a contract with the URI.
	ErrDuplicateURI = errors.New("contract uri already registered")

	// ErrNotRegistered indicates a registry lookup for an unknown URI.
	ErrNotRegistered = errors.New("contract uri not registered")

	// errNilSchema marks a version spec carrying a nil schema.
	errNilSchema = errors.New("schema is nil")
)

// InvalidURIError indicates a contract URI that fails percent-encoding
// round-trip validation.
type InvalidURIError struct {
	// URI is the rejected identifier.
	URI string
}

// Error implements the error interface.
func (e *InvalidURIError) Error() string {
	return fmt.Sprintf("invalid contract uri %q: must be a properly percent-encoded URI", e.URI)
}

// InvalidEventTypeError indicates a contract type or emitted event type that
// is not a lowercase dotted identifier.
type InvalidEventTypeError struct {
	// EventType is the rejected type string.
	EventType string
	// URI is the contract under construction, when known.
	URI string
	// Version is the version key the type appeared under, when applicable.
	Version string
}

// Error implements the error interface.
func (e *InvalidEventTypeError) Error() string {
	msg := fmt.Sprintf("invalid event type %q: must be a lowercase dotted identifier", e.EventType)
	if e.URI != "" {
		msg = fmt.Sprintf("contract %q: %s", e.URI, msg)
	}
	if e.Version != "" {
		msg += fmt.Sprintf(" (version %s)", e.Version)
	}
	return msg
}

// InvalidVersionError indicates a version key that does not parse as
// MAJOR.MINOR.PATCH.
type InvalidVersionError struct {
	// URI is the contract under construction.
	URI string
	// Version is the rejected key.
	Version string
}

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("contract %q: invalid version key %q: expected MAJOR.MINOR.PATCH", e.URI, e.Version)
}

// ReservedVersionError indicates a contract declared the wildcard 0.0.0 as a
// real version.
type ReservedVersionError struct {
	// URI is the contract under construction.
	URI string
}

// Error implements the error interface.
func (e *ReservedVersionError) Error() string {
	return fmt.Sprintf("contract %q: version 0.0.0 is reserved as the wildcard and cannot be declared", e.URI)
}

// UnknownVersionError indicates a version selector that is neither a
// declared version nor a recognized alias.
type UnknownVersionError struct {
	// URI identifies the contract the resolution ran against.
	URI string
	// Requested is the selector that failed to resolve.
	Requested string
}

// Error implements the error interface.
func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("contract %q has no version %q (expected a declared version, %q, %q or %q)",
		e.URI, e.Requested, VersionLatest, VersionAny, VersionOldest)
}

// InvalidOrchestratorNameError indicates an orchestrator name containing
// characters outside lowercase alphanumerics and dots.
type InvalidOrchestratorNameError struct {
	// Name is the rejected orchestrator name.
	Name string
}

// Error implements the error interface.
func (e *InvalidOrchestratorNameError) Error() string {
	return fmt.Sprintf("invalid orchestrator name %q: only lowercase alphanumerics and dots are allowed", e.Name)
}

// InvalidSchemaError indicates a version spec whose schema is missing or
// failed to compile.
type InvalidSchemaError struct {
	// URI is the contract under construction.
	URI string
	// Version is the version key carrying the schema.
	Version string
	// EventType is the event the schema belongs to, when applicable.
	EventType string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *InvalidSchemaError) Error() string {
	msg := fmt.Sprintf("contract %q: invalid schema for version %s", e.URI, e.Version)
	if e.EventType != "" {
		msg += fmt.Sprintf(" (event type %q)", e.EventType)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *InvalidSchemaError) Unwrap() error {
	return e.Err
}

// ExportError indicates a contract could not be projected to its JSON-Schema
// interchange form.
type ExportError struct {
	// URI identifies the contract being exported.
	URI string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export contract %q: %v", e.URI, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExportError) Unwrap() error {
	return e.Err
}
