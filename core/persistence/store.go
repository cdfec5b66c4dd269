// Package persistence stores pet snapshot blobs. The core only ever
// sees the SnapshotStore interface; the SQLite implementation is the
// default backing for the CLI.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports a missing snapshot.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore saves and loads opaque pet snapshot blobs.
type SnapshotStore interface {
	Save(petID string, blob []byte) error
	Load(petID string) ([]byte, error)
}

// SQLiteStore keeps snapshots in a single pet_snapshots table keyed
// by pet id.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initialises) a snapshot database at
// the given path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pet_snapshots (
			pet_id     TEXT PRIMARY KEY,
			blob       BLOB NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising snapshot store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts a snapshot blob for a pet.
func (s *SQLiteStore) Save(petID string, blob []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO pet_snapshots (pet_id, blob, updated_at)
		VALUES (?, ?, strftime('%s','now'))
		ON CONFLICT(pet_id) DO UPDATE SET
			blob = excluded.blob,
			updated_at = excluded.updated_at`,
		petID, blob)
	if err != nil {
		return fmt.Errorf("saving snapshot for %s: %w", petID, err)
	}
	return nil
}

// Load fetches the snapshot blob for a pet, or ErrNotFound.
func (s *SQLiteStore) Load(petID string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT blob FROM pet_snapshots WHERE pet_id = ?`, petID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot for %s: %w", petID, err)
	}
	return blob, nil
}

// List returns every stored pet id.
func (s *SQLiteStore) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT pet_id FROM pet_snapshots ORDER BY pet_id`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// MemoryStore is a map-backed SnapshotStore for tests.
type MemoryStore struct {
	blobs map[string][]byte
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Save implements SnapshotStore.
func (s *MemoryStore) Save(petID string, blob []byte) error {
	copied := make([]byte, len(blob))
	copy(copied, blob)
	s.blobs[petID] = copied
	return nil
}

// Load implements SnapshotStore.
func (s *MemoryStore) Load(petID string) ([]byte, error) {
	blob, ok := s.blobs[petID]
	if !ok {
		return nil, ErrNotFound
	}
	return blob, nil
}
