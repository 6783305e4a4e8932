package cutoff

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu    sync.RWMutex
	sizes map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sizes: make(map[string]int)}
}

func (m *MemoryStore) Get(_ context.Context, game string) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.sizes[game]
	return n, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, game string, size int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizes[game] = size
	return nil
}

func (m *MemoryStore) Close() error { return nil }
