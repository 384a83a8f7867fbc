package temporal

import (
	"sync"
	"time"
)

// TimestampStore records file modification times keyed by path.
// Implementations must tolerate concurrent readers; the Analyzer
// serializes writers.
type TimestampStore interface {
	// Get returns the recorded modification time for a path
	Get(path string) (time.Time, bool)

	// Set records the modification time for a path
	Set(path string, ts time.Time) error

	// All returns every recorded path and modification time
	All() map[string]time.Time

	// Len returns the number of recorded paths
	Len() int

	// Close releases any resources held by the store
	Close() error
}

// MemoryStore is an in-memory TimestampStore for tests and hosts that
// do not need persistence.
type MemoryStore struct {
	mu         sync.RWMutex
	timestamps map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{timestamps: make(map[string]time.Time)}
}

// Get returns the recorded modification time for a path.
func (m *MemoryStore) Get(path string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.timestamps[path]
	return ts, ok
}

// Set records the modification time for a path.
func (m *MemoryStore) Set(path string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timestamps[path] = ts
	return nil
}

// All returns a copy of every recorded path and modification time.
func (m *MemoryStore) All() map[string]time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]time.Time, len(m.timestamps))
	for k, v := range m.timestamps {
		out[k] = v
	}
	return out
}

// Len returns the number of recorded paths.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.timestamps)
}

// Close implements TimestampStore.
func (m *MemoryStore) Close() error {
	return nil
}
