package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaURL is the synthetic resource name schema documents compile under.
const schemaURL = "arvo://contract/schema.json"

// Schema pairs a JSON Schema document with its compiled validator.
// Construction through CompileSchema is eager: a document that does not
// compile never becomes a Schema, so contracts built from Schemas never
// need to re-validate shape. The zero value is unusable.
type Schema struct {
	raw      []byte
	compiled *jsonschema.Schema
}

// CompileSchema normalizes and compiles a JSON Schema document (draft
// 2020-12). The document may be any value that marshals to a JSON object,
// typically a map[string]any literal.
func CompileSchema(doc any) (*Schema, error) {
	normalized, err := normalizeDocument(doc)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("serialize schema document: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load schema document: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema document: %w", err)
	}
	return &Schema{raw: raw, compiled: compiled}, nil
}

// MustCompileSchema is like CompileSchema but panics on failure.
// Intended for package variables and tests with known-good documents.
func MustCompileSchema(doc any) *Schema {
	s, err := CompileSchema(doc)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks value against the schema. The value may be any
// JSON-serializable Go value; it is normalized through JSON first so struct
// and map payloads validate identically.
func (s *Schema) Validate(value any) error {
	norm, err := normalizeValue(value)
	if err != nil {
		return err
	}
	return s.compiled.Validate(norm)
}

// Document returns a fresh copy of the schema document. Mutating the result
// does not affect the schema.
func (s *Schema) Document() map[string]any {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(s.raw))
	dec.UseNumber()
	// The raw bytes were produced by Marshal at construction; decoding
	// them back cannot fail.
	_ = dec.Decode(&doc)
	return doc
}

// MarshalJSON implements json.Marshaler; a schema serializes as its document.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return append([]byte(nil), s.raw...), nil
}

// UnmarshalJSON implements json.Unmarshaler, compiling the incoming document.
func (s *Schema) UnmarshalJSON(data []byte) error {
	compiled, err := CompileSchema(json.RawMessage(data))
	if err != nil {
		return err
	}
	*s = *compiled
	return nil
}

// normalizeDocument reduces any JSON-marshalable value to the generic map
// form used for storage, export and merging.
func normalizeDocument(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema document is not JSON-serializable: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("schema document must be a JSON object: %w", err)
	}
	if out == nil {
		return nil, errors.New("schema document must be a JSON object, got null")
	}
	return out, nil
}

// normalizeValue reduces any JSON-marshalable value to the generic decoded
// form the compiled validator operates on.
func normalizeValue(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-serializable: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode normalized value: %w", err)
	}
	return out, nil
}

// systemErrorSchema is the fixed schema every contract's system error events
// validate against, independent of version.
var systemErrorSchema = MustCompileSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"errorName":    map[string]any{"type": "string"},
		"errorMessage": map[string]any{"type": "string"},
		"errorStack":   map[string]any{"type": []any{"string", "null"}},
	},
	"required": []any{"errorName", "errorMessage", "errorStack"},
})

// ErrorSchema returns the fixed system error schema shared by all contracts:
// an object of errorName, errorMessage and a nullable errorStack.
func ErrorSchema() *Schema {
	return systemErrorSchema
}
