package featcache

import (
	"context"
	"sync"
)

// Memory is a Store held in a map, used by tests and one-shot runs.
type Memory struct {
	mu   sync.RWMutex
	data map[Key][]byte
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[Key][]byte)}
}

func (m *Memory) Get(_ context.Context, key Key) ([][]float32, error) {
	m.mu.RLock()
	v, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(v)
}

func (m *Memory) Put(_ context.Context, key Key, features [][]float32) error {
	v, err := encode(features)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = v
	m.mu.Unlock()
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memory) Stats(context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := make(Stats)
	for k := range m.data {
		st[k.Fingerprint]++
	}
	return st, nil
}

func (m *Memory) Prune(_ context.Context, keep string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if keep == "" || k.Fingerprint != keep {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
