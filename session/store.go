package session

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreUnavailable wraps backend failures of a persistent store.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is the contract the Manager persists through. Get reports ok=false
// for an absent field; Remove and Clear are idempotent.
type Store interface {
	Get(ctx context.Context, field Field) (string, bool, error)
	Set(ctx context.Context, field Field, value string) error
	Remove(ctx context.Context, field Field) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps fields in process memory. Its zero value is ready to use
// and it never returns an error.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Field]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Field]string, len(Fields))}
}

func (m *MemoryStore) Get(_ context.Context, field Field) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[field]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, field Field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[Field]string, len(Fields))
	}
	m.values[field] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, field Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, field)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.values)
	return nil
}

// Len returns the number of fields currently held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
