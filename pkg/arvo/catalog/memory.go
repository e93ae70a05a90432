package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/randalmurphal/arvo/pkg/arvo/semver"
)

// MemoryStore is an in-memory catalog store for testing and single-process
// use. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]Entry // uri -> version -> entry
	closed bool
}

// NewMemoryStore creates a new in-memory catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]Entry),
	}
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, e *Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.data[e.URI] == nil {
		m.data[e.URI] = make(map[string]Entry)
	}

	stored := *e
	// Copy the document to avoid retaining the caller's slice
	stored.Document = append([]byte(nil), e.Document...)
	if stored.StoredAt.IsZero() {
		stored.StoredAt = time.Now().UTC()
	}

	m.data[e.URI][e.Version] = stored
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, uri, version string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	versions, ok := m.data[uri]
	if !ok {
		return nil, ErrNotFound
	}
	e, ok := versions[version]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy to prevent modification
	result := e
	result.Document = append([]byte(nil), e.Document...)
	return &result, nil
}

// Versions implements Store.
func (m *MemoryStore) Versions(_ context.Context, uri string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	versions, ok := m.data[uri]
	if !ok {
		return nil, nil
	}

	keys := make([]string, 0, len(versions))
	for key := range versions {
		keys = append(keys, key)
	}
	return sortVersions(keys), nil
}

// URIs implements Store.
func (m *MemoryStore) URIs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	uris := make([]string, 0, len(m.data))
	for uri := range m.data {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, uri, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if versions, ok := m.data[uri]; ok {
		delete(versions, version)
		if len(versions) == 0 {
			delete(m.data, uri)
		}
	}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the total number of entries across all contracts.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, versions := range m.data {
		count += len(versions)
	}
	return count
}

// validateEntry rejects entries that cannot be keyed.
func validateEntry(e *Entry) error {
	if e == nil || e.URI == "" || !semver.IsValid(e.Version) {
		return ErrInvalidEntry
	}
	return nil
}

// sortVersions orders version strings ascending by semantic version.
// Unparseable strings sort first; Put never admits them, but a SQLite file
// is editable outside the process.
func sortVersions(keys []string) []string {
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := semver.Parse(keys[i])
		b, errB := semver.Parse(keys[j])
		switch {
		case errA != nil && errB != nil:
			return keys[i] < keys[j]
		case errA != nil:
			return true
		case errB != nil:
			return false
		}
		return semver.Compare(a, b) < 0
	})
	return keys
}
