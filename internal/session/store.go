package session

import (
	"context"
	"sync"
)

// Store is the durable key-value boundary for sessions: two optional integers
// per session key.
type Store interface {
	Load(ctx context.Context, key string) (State, error)
	Save(ctx context.Context, key string, state State) error
	Clear(ctx context.Context, key string) error
}

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]State
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]State)}
}

func (m *MemoryStore) Load(ctx context.Context, key string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[key].clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, key string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = state.clone()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}
