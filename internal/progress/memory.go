package progress

import (
	"context"
	"maps"
	"sync"
)

// MemoryBackend keeps progress in process memory. Used for guest play and tests.
type MemoryBackend struct {
	mu    sync.Mutex
	users map[string]map[int]int
	saves int
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{users: make(map[string]map[int]int)}
}

func (m *MemoryBackend) Load(_ context.Context, user string) (map[int]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.users[user]), nil
}

func (m *MemoryBackend) Save(_ context.Context, user string, streaks map[int]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user] = maps.Clone(streaks)
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
