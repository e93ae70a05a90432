package arvo

import "fmt"

// FieldError indicates an event attribute that failed envelope validation.
type FieldError struct {
	// Field is the JSON attribute name, e.g. "type" or "source".
	Field string
	// Value is the rejected value.
	Value string
	// Reason describes the rule that was violated.
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid event attribute %s=%q: %s", e.Field, e.Value, e.Reason)
}
