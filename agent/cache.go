package agent

import (
	"context"
	"sync"
)

// Cache is the key-value backend behind session and history storage.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type MemoryCache[S any] struct {
	mu    sync.RWMutex
	m     map[string]S
	clone func(S) S
}

// NewMemoryCache keeps values in process. clone, if set, copies values on
// the way in and out so callers cannot alias stored state.
func NewMemoryCache[S any](clone func(S) S) *MemoryCache[S] {
	return &MemoryCache[S]{m: map[string]S{}, clone: clone}
}

func (m *MemoryCache[S]) copy(val S) S {
	if m.clone == nil {
		return val
	}
	return m.clone(val)
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	val = m.copy(val)
	m.mu.Lock()
	m.m[key] = val
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.RLock()
	val, ok := m.m[key]
	m.mu.RUnlock()
	if !ok {
		return val, false, nil
	}
	return m.copy(val), true, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	_, ok := m.m[key]
	m.mu.RUnlock()
	return ok, nil
}
