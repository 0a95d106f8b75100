// Package store provides persistence for tinyjs value snapshots. Every Put of
// changed data adds a new version; Get returns the newest one.
package store

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("tinyjs.store")

// Store is the interface for snapshot persistence.
type Store interface {
	// Get retrieves the newest snapshot by name. Returns nil if not found.
	Get(name string) ([]byte, error)
	// Put stores a snapshot by name. Data equal to the newest version is
	// not stored again.
	Put(name string, data []byte) error
	// Delete removes all versions of a snapshot.
	Delete(name string) error
	// Names lists the stored snapshot names in sorted order.
	Names() ([]string, error)
	// Close releases resources.
	Close() error
}

// VersionEntry represents a single version of a persisted snapshot.
type VersionEntry struct {
	Version int
	Value   []byte
	Ts      string
}

// HistoryStore extends Store with version history queries.
type HistoryStore interface {
	Store
	// GetHistory returns up to limit versions, newest first. A limit of 0
	// returns every version.
	GetHistory(name string, limit int) ([]VersionEntry, error)
}
