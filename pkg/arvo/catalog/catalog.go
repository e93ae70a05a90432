package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/randalmurphal/arvo/pkg/arvo/contract"
)

// VersionDocument is the stored projection of a single contract version:
// the version's slice of the contract export, stamped with the owning URI.
type VersionDocument struct {
	URI string `json:"uri"`
	contract.VersionExport
}

// EntryForVersion projects one version of a contract into a catalog entry.
// The selector accepts everything contract version resolution accepts,
// including the aliases; the entry is keyed by the concrete version the
// selector resolved to.
func EntryForVersion(c *contract.Contract, selector string) (*Entry, error) {
	v, err := c.Version(selector)
	if err != nil {
		return nil, err
	}
	fingerprint, err := c.Fingerprint()
	if err != nil {
		return nil, err
	}

	for _, ve := range c.Export().Versions {
		if ve.Version != v.Version() {
			continue
		}
		doc, err := json.Marshal(VersionDocument{URI: c.URI(), VersionExport: ve})
		if err != nil {
			return nil, fmt.Errorf("serialize version document: %w", err)
		}
		return &Entry{
			URI:         c.URI(),
			Version:     v.Version(),
			Fingerprint: fingerprint,
			Document:    doc,
			StoredAt:    time.Now().UTC(),
		}, nil
	}
	// The resolved version always appears in the export.
	return nil, fmt.Errorf("version %s missing from export of %q", v.Version(), c.URI())
}

// Decode parses the entry's document back into its structured form.
func (e *Entry) Decode() (*VersionDocument, error) {
	var doc VersionDocument
	if err := json.Unmarshal(e.Document, &doc); err != nil {
		return nil, fmt.Errorf("decode version document: %w", err)
	}
	return &doc, nil
}
