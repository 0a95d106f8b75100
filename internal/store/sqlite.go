package store

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// SchemaVersion is the current schema version.
const SchemaVersion = "2"

// migrations[i] upgrades a database from schema version i to i+1.
var migrations = []func(tx *sql.Tx) error{
	migrateToV1,
	migrateToV2,
}

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens (creating if needed) a SQLite store at the given path and
// brings its schema up to date.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate applies every migration newer than the stored schema version.
func (s *SQLite) migrate() error {
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		return err
	}
	current := 0
	if version != "" {
		if current, err = strconv.Atoi(version); err != nil {
			return fmt.Errorf("invalid schema version: %q", version)
		}
	}
	if current > len(migrations) {
		return fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	for v := current; v < len(migrations); v++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if err := migrations[v](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to schema %d: %w", v+1, err)
		}
		_, err = tx.Exec(`
			INSERT INTO metadata (key, value) VALUES ('schema_version', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, strconv.Itoa(v+1))
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.Infof("migrated store to schema %d", v+1)
	}
	return nil
}

// migrateToV1 creates the single-value snapshot table.
func migrateToV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);
	`)
	return err
}

// migrateToV2 moves snapshots into a versioned table; existing rows become
// version 1.
func migrateToV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE snapshot_versions (
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			value BLOB NOT NULL,
			ts TEXT NOT NULL,
			PRIMARY KEY (name, version)
		);
		INSERT INTO snapshot_versions (name, version, value, ts)
			SELECT name, 1, value, strftime('%Y-%m-%dT%H:%M:%fZ', 'now') FROM snapshots;
		DROP TABLE snapshots;
	`)
	return err
}

// Get retrieves the newest snapshot by name.
func (s *SQLite) Get(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value []byte
	err := s.db.QueryRow(`
		SELECT value FROM snapshot_versions WHERE name = ?
		ORDER BY version DESC LIMIT 1
	`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores a snapshot by name as a new version unless it is unchanged.
func (s *SQLite) Put(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var version int
	var latest []byte
	err = tx.QueryRow(`
		SELECT version, value FROM snapshot_versions WHERE name = ?
		ORDER BY version DESC LIMIT 1
	`, name).Scan(&version, &latest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case bytes.Equal(latest, data):
		return nil
	}

	if data == nil {
		data = []byte{}
	}
	_, err = tx.Exec(`
		INSERT INTO snapshot_versions (name, version, value, ts) VALUES (?, ?, ?, ?)
	`, name, version+1, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes all versions of a snapshot.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM snapshot_versions WHERE name = ?", name)
	return err
}

// Names lists the stored snapshot names in sorted order.
func (s *SQLite) Names() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT DISTINCT name FROM snapshot_versions ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetHistory returns up to limit versions of name, newest first.
func (s *SQLite) GetHistory(name string, limit int) ([]VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT version, value, ts FROM snapshot_versions WHERE name = ? ORDER BY version DESC`
	args := []any{name}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []VersionEntry
	for rows.Next() {
		var e VersionEntry
		if err := rows.Scan(&e.Version, &e.Value, &e.Ts); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
