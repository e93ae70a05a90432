// Package catalog provides persistent storage for contract export documents.
package catalog

import (
	"context"
	"errors"
	"time"
)

// Store persists contract version documents for interchange and discovery.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores an entry.
	// Overwrites if an entry for (uri, version) already exists.
	Put(ctx context.Context, e *Entry) error

	// Get retrieves an entry.
	// Returns ErrNotFound if the entry doesn't exist.
	Get(ctx context.Context, uri, version string) (*Entry, error)

	// Versions returns all stored versions for a contract URI, ordered
	// ascending by semantic version.
	// Returns empty slice (not error) if the URI has no entries.
	Versions(ctx context.Context, uri string) ([]string, error)

	// URIs returns all contract URIs with at least one entry, sorted.
	URIs(ctx context.Context) ([]string, error)

	// Delete removes a specific entry.
	// Returns nil if the entry doesn't exist.
	Delete(ctx context.Context, uri, version string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Entry is one stored contract version document.
type Entry struct {
	// URI identifies the contract.
	URI string
	// Version is the concrete MAJOR.MINOR.PATCH the document describes.
	Version string
	// Fingerprint is the owning contract's stable identity hash.
	Fingerprint string
	// Document is the JSON projection of the version.
	Document []byte
	// StoredAt records when the entry was written.
	StoredAt time.Time
}

// Sentinel errors for catalog operations.
var (
	// ErrNotFound indicates an entry doesn't exist.
	ErrNotFound = errors.New("catalog entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("catalog store closed")

	// ErrInvalidEntry indicates an entry missing its URI or carrying a
	// version that is not MAJOR.MINOR.PATCH.
	ErrInvalidEntry = errors.New("catalog entry missing uri or valid version")
)
