package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store with in-memory maps.
// Suitable for development and single-instance deployments; all recorded
// statuses are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	statuses map[string]string
	updated  map[string]time.Time
}

// NewMemoryStore creates a new in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		statuses: make(map[string]string),
		updated:  make(map[string]time.Time),
	}
}

func (m *MemoryStore) SetStatus(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[key] = value
	m.updated[key] = time.Now()
	return nil
}

func (m *MemoryStore) GetStatus(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.statuses[key]
	if !ok {
		return "", ErrStatusNotFound
	}
	return value, nil
}

func (m *MemoryStore) PurgeTerminal(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, value := range m.statuses {
		if !isTerminal(value) {
			continue
		}
		if m.updated[key].After(cutoff) {
			continue
		}
		delete(m.statuses, key)
		delete(m.updated, key)
		removed++
	}
	return removed, nil
}

func (m *MemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func isTerminal(status string) bool {
	return status == "completed" || strings.HasPrefix(status, "failed:")
}
