package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists catalog entries to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite catalog store.
// The path should be a file path (e.g., "./catalog.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_entries (
			uri TEXT NOT NULL,
			version TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			document BLOB NOT NULL,
			stored_at TEXT NOT NULL,
			PRIMARY KEY (uri, version)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_catalog_entries_uri
		ON catalog_entries(uri)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, e *Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	storedAt := e.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_entries (uri, version, fingerprint, document, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(uri, version) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			document = excluded.document,
			stored_at = excluded.stored_at
	`, e.URI, e.Version, e.Fingerprint, e.Document, storedAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("put catalog entry: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, uri, version string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	e := Entry{URI: uri, Version: version}
	var storedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, document, stored_at FROM catalog_entries
		WHERE uri = ? AND version = ?
	`, uri, version).Scan(&e.Fingerprint, &e.Document, &storedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}
	e.StoredAt, _ = time.Parse(time.RFC3339Nano, storedAt)
	return &e, nil
}

// Versions implements Store.
func (s *SQLiteStore) Versions(ctx context.Context, uri string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT version FROM catalog_entries WHERE uri = ?
	`, uri)
	if err != nil {
		return nil, fmt.Errorf("list catalog versions: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan catalog version: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog versions: %w", err)
	}

	// Semantic version order cannot be expressed in SQL
	return sortVersions(versions), nil
}

// URIs implements Store.
func (s *SQLiteStore) URIs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT uri FROM catalog_entries ORDER BY uri
	`)
	if err != nil {
		return nil, fmt.Errorf("list catalog uris: %w", err)
	}
	defer rows.Close()

	var uris []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("scan catalog uri: %w", err)
		}
		uris = append(uris, uri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog uris: %w", err)
	}

	return uris, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, uri, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM catalog_entries
		WHERE uri = ? AND version = ?
	`, uri, version)
	if err != nil {
		return fmt.Errorf("delete catalog entry: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
