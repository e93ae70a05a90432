package factory

import (
	"errors"
	"fmt"
)

// ErrNotOrchestrator indicates NewOrchestrator was given a contract that was
// not built by contract.NewOrchestrator.
var ErrNotOrchestrator = errors.New("contract is not an orchestrator contract")

// DataValidationError indicates an event payload that failed its contract
// schema.
type DataValidationError struct {
	// URI identifies the contract the payload was validated against.
	URI string
	// Version is the resolved contract version.
	Version string
	// EventType is the event the payload was meant for.
	EventType string
	// Err is the schema violation.
	Err error
}

// Error implements the error interface.
func (e *DataValidationError) Error() string {
	return fmt.Sprintf("payload for %q rejected by contract %q version %s: %v",
		e.EventType, e.URI, e.Version, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DataValidationError) Unwrap() error {
	return e.Err
}

// UnknownEmitError indicates a request to emit an event type the contract
// version does not declare.
type UnknownEmitError struct {
	// EventType is the undeclared type.
	EventType string
	// URI identifies the contract.
	URI string
	// Version is the resolved contract version.
	Version string
}

// Error implements the error interface.
func (e *UnknownEmitError) Error() string {
	return fmt.Sprintf("contract %q version %s does not emit %q",
		e.URI, e.Version, e.EventType)
}
