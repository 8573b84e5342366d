package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps documents in a map. Used by tests and dry runs.
type MemoryBackend struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	saves int
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// Load returns a copy of the stored body.
func (b *MemoryBackend) Load(_ context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	body, ok := b.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), body...), nil
}

// Save stores a copy of body.
func (b *MemoryBackend) Save(_ context.Context, name string, body []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[name] = append([]byte(nil), body...)
	b.saves++
	return nil
}

// Saves reports how many Save calls succeeded.
func (b *MemoryBackend) Saves() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.saves
}

// Close is a no-op.
func (b *MemoryBackend) Close() error { return nil }
