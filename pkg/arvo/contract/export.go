package contract

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Export is the read-only interchange projection of a contract, a
// documentation format shared with non-Go runtimes. Versions appear in
// ascending order.
type Export struct {
	URI         string          `json:"uri"`
	Description string          `json:"description,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	Versions    []VersionExport `json:"versions"`
}

// VersionExport is the projection of one contract version.
type VersionExport struct {
	Version     string         `json:"version"`
	Accepts     RecordExport   `json:"accepts"`
	SystemError RecordExport   `json:"systemError"`
	Emits       []RecordExport `json:"emits"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// RecordExport pairs an event type with its schema document.
type RecordExport struct {
	Type   string         `json:"type"`
	Schema map[string]any `json:"schema"`
}

// Export builds the interchange projection of the contract. All schema
// documents are fresh copies; mutating the result never reaches the
// contract.
func (c *Contract) Export() *Export {
	systemError := c.SystemError()

	versions := make([]VersionExport, 0, len(c.ordered))
	for _, entry := range c.ordered {
		spec := c.versions[entry.key]
		view := c.view(entry.key)

		emits := make([]RecordExport, 0, len(spec.Emits))
		for _, record := range view.Emits() {
			emits = append(emits, RecordExport{
				Type:   record.Type,
				Schema: record.Schema.Document(),
			})
		}

		versions = append(versions, VersionExport{
			Version: entry.key,
			Accepts: RecordExport{
				Type:   c.typ,
				Schema: spec.Accepts.Document(),
			},
			SystemError: RecordExport{
				Type:   systemError.Type,
				Schema: systemError.Schema.Document(),
			},
			Emits:    emits,
			Metadata: copyMetadata(spec.Metadata),
		})
	}

	return &Export{
		URI:         c.uri,
		Description: c.description,
		Metadata:    copyMetadata(c.metadata),
		Versions:    versions,
	}
}

// ToJSONSchema serializes the contract's interchange projection. Conversion
// failures, such as metadata values with no JSON representation, surface as
// *ExportError.
func (c *Contract) ToJSONSchema() ([]byte, error) {
	raw, err := json.Marshal(c.Export())
	if err != nil {
		return nil, &ExportError{URI: c.uri, Err: err}
	}
	return raw, nil
}

// Fingerprint returns a stable identity hash of the contract: the SHA-256
// of the RFC 8785 canonical form of its JSON-Schema export, formatted
// "sha256:<hex>". Two contracts with identical declared shapes produce the
// same fingerprint regardless of map ordering.
func (c *Contract) Fingerprint() (string, error) {
	raw, err := c.ToJSONSchema()
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", &ExportError{URI: c.uri, Err: fmt.Errorf("canonicalize export: %w", err)}
	}
	sum := sha256.Sum256(canonical)
	return fmt.Sprintf("sha256:%x", sum), nil
}
