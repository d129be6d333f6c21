// Package cache provides the result-cache backends behind the engine's
// ResultCache port: an in-process map for single-node deployments and Redis
// for deployments that share a cache across restarts.
package cache

import (
	"context"
	"sync"
	"time"

	"bazaar-flipper/internal/engine"
)

type memoryEntry struct {
	records   []engine.FlipRecord
	expiresAt time.Time
}

// Memory is a thread-safe in-memory result cache. Entries expire naturally;
// there is no eviction beyond expiry because key cardinality is a handful of
// tax values per process lifetime.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get returns the cached list if present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]engine.FlipRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.records, true
}

// Set stores a list with the given expiry, replacing any previous entry.
func (m *Memory) Set(_ context.Context, key string, recs []engine.FlipRecord, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{records: recs, expiresAt: time.Now().Add(ttl)}
}
