package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Store implementation with lazy expiry.
type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[T]
}

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{entries: make(map[string]memoryEntry[T])}
}

// Get retrieves a value. Returns the zero value and false on miss or expiry.
func (m *Memory[T]) Get(_ context.Context, key string) (T, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	var zero T
	if !ok {
		return zero, false
	}

	if time.Now().After(entry.expiresAt) {
		// Expired, clean up lazily.
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return zero, false
	}

	return entry.value, true
}

// Set stores a value with the given TTL. TTL<=0 means don't cache.
func (m *Memory[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry[T]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	m.mu.Unlock()

	return nil
}

// Delete removes a value. Idempotent; no error on miss.
func (m *Memory[T]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// lazily removed.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var _ Store[string] = (*Memory[string])(nil)
