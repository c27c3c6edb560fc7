package store

import (
	"context"
	"sync"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu  sync.Mutex
	ids map[string]int64 // scope -> active order id
}

func NewMemory() *Memory {
	return &Memory{ids: map[string]int64{}}
}

func (m *Memory) LoadActiveOrderID(ctx context.Context, scope string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.ids[scope]
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

func (m *Memory) SaveActiveOrderID(ctx context.Context, scope string, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[scope] = orderID
	return nil
}

func (m *Memory) ClearActiveOrderID(ctx context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, scope)
	return nil
}
