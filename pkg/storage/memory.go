package storage

import (
	"context"
	"sync"
)

// MemoryStore is a map-backed Store for tests and local development. A
// non-zero quota caps the total stored bytes so quota-recovery paths can be
// exercised without a real backend.
type MemoryStore struct {
	mu         sync.RWMutex
	data       map[string][]byte
	quotaBytes int
	usedBytes  int
}

func NewMemoryStore(quotaBytes int) *MemoryStore {
	return &MemoryStore{
		data:       map[string][]byte{},
		quotaBytes: quotaBytes,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.usedBytes - len(m.data[key]) + len(value)
	if m.quotaBytes > 0 && next > m.quotaBytes {
		return ErrQuotaExceeded
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	m.usedBytes = next
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usedBytes -= len(m.data[key])
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
