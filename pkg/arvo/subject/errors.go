package subject

import "fmt"

// EncodingError indicates token creation failed, either because the content
// violates the data model or because a serialization step failed.
type EncodingError struct {
	// Content is the content that failed to encode.
	Content Content
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode orchestration subject %+v: %v", e.Content, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EncodingError) Unwrap() error {
	return e.Err
}

// DecodingError indicates a token failed base64 decoding, decompression,
// JSON parsing, or content validation.
type DecodingError struct {
	// Subject is the offending token.
	Subject string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode orchestration subject %q: %v", e.Subject, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DecodingError) Unwrap() error {
	return e.Err
}
