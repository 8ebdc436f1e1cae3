package store

import (
	"context"
	"log"
	"sync"
)

// MemoryStore keeps tables in process memory. Rows are copied on the way in
// and out so callers never share slices with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: map[string][][]string{}}
}

func (m *MemoryStore) Load(_ context.Context, name string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.tables[name]
	if !ok {
		log.Printf("Error: table %s not found.", name)
		return [][]string{}, nil
	}
	return cloneRows(rows), nil
}

func (m *MemoryStore) Save(_ context.Context, name string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = cloneRows(rows)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
