package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry holds one cached value and the moment it was built.
type Entry[T any] struct {
	// Value is the cached value.
	Value T

	// Built is the timestamp when this entry was built.
	Built time.Time

	// TTL is the time-to-live for this entry.
	TTL time.Duration
}

// IsExpired returns true if this entry has expired based on its TTL.
func (e *Entry[T]) IsExpired() bool {
	if e.TTL == 0 {
		return true // No caching
	}
	return time.Since(e.Built) > e.TTL
}

// Builder produces the value for a key on a cache miss.
type Builder[T any] func(ctx context.Context) (T, error)

// Store holds cached values keyed by string.
type Store[T any] struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]*Entry[T]
	sf      singleflight.Group
}

// New creates an empty store whose entries live for ttl. A zero ttl disables caching.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		entries: make(map[string]*Entry[T]),
	}
}

// GetOrBuild retrieves the value for key from the store,
// or builds a new one if it doesn't exist or has expired.
// Uses singleflight to prevent cache stampedes.
func (s *Store[T]) GetOrBuild(ctx context.Context, key string, build Builder[T]) (T, error) {
	// Fast path: check if entry exists and is fresh
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if exists && !entry.IsExpired() {
		return entry.Value, nil
	}

	// Slow path: build using singleflight to prevent stampedes
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		s.mu.RLock()
		entry, exists := s.entries[key]
		s.mu.RUnlock()

		if exists && !entry.IsExpired() {
			return entry, nil
		}

		value, err := build(ctx)
		if err != nil {
			return nil, err
		}
		fresh := &Entry[T]{Value: value, Built: time.Now(), TTL: s.ttl}

		s.mu.Lock()
		s.entries[key] = fresh
		s.mu.Unlock()

		return fresh, nil
	})

	if err != nil {
		var zero T
		return zero, err
	}

	return result.(*Entry[T]).Value, nil
}

// Invalidate removes the entry for key, forcing a rebuild on next access.
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Flush removes every entry.
func (s *Store[T]) Flush() {
	s.mu.Lock()
	s.entries = make(map[string]*Entry[T])
	s.mu.Unlock()
}
