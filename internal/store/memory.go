package store

import (
	"bytes"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory store for testing and for memory-only sessions.
type Memory struct {
	mu       sync.RWMutex
	data     map[string][]VersionEntry // Oldest first
	metadata map[string]string
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string][]VersionEntry),
		metadata: make(map[string]string),
	}
}

// Get retrieves the newest snapshot by name.
func (m *Memory) Get(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.data[name]
	if len(versions) == 0 {
		return nil, nil
	}
	return bytes.Clone(versions[len(versions)-1].Value), nil
}

// Put stores a snapshot by name as a new version unless it is unchanged.
func (m *Memory) Put(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.data[name]
	if n := len(versions); n > 0 && bytes.Equal(versions[n-1].Value, data) {
		return nil
	}
	m.data[name] = append(versions, VersionEntry{
		Version: len(versions) + 1,
		Value:   bytes.Clone(data),
		Ts:      time.Now().UTC().Format(time.RFC3339Nano),
	})
	return nil
}

// Delete removes all versions of a snapshot.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

// Names lists the stored snapshot names in sorted order.
func (m *Memory) Names() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetHistory returns up to limit versions of name, newest first.
func (m *Memory) GetHistory(name string, limit int) ([]VersionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.data[name]
	if len(versions) == 0 {
		return nil, nil
	}
	var out []VersionEntry
	for i := len(versions) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, versions[i])
	}
	return out, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

// GetMetadata retrieves a metadata value by key.
func (m *Memory) GetMetadata(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadata[key], nil
}

// SetMetadata stores a metadata value by key.
func (m *Memory) SetMetadata(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
	return nil
}
