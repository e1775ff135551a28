// Package cache provides the in-process TTL store each fetcher owns, keyed
// by canonical plate. Entries persist across requests but not restarts.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	negative  bool
	expiresAt time.Time
}

// Store is a keyed TTL cache. It holds both positive results and negative
// ("not found") markers so repeated failing lookups are not re-issued within
// the TTL window. Last write wins on concurrent inserts for the same key.
type Store[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[T]
}

// New constructs an empty store with the given time-to-live.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
	}
}

// Get returns the cached value for key. The second return reports a cached
// negative result; the third reports whether a live entry was present at all.
func (s *Store[T]) Get(key string) (T, bool, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		return zero, false, false
	}
	return e.value, e.negative, true
}

// Put stores a positive result for key.
func (s *Store[T]) Put(key string, value T) {
	s.put(key, value, false)
}

// PutNegative stores a "not found" marker for key.
func (s *Store[T]) PutNegative(key string) {
	var zero T
	s.put(key, zero, true)
}

func (s *Store[T]) put(key string, value T, negative bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[T]{
		value:     value,
		negative:  negative,
		expiresAt: time.Now().Add(s.ttl),
	}
	// Opportunistic sweep so long-running processes don't accumulate
	// expired keys between lookups of the same plate.
	if len(s.entries) > 1024 {
		now := time.Now()
		for k, e := range s.entries {
			if now.After(e.expiresAt) {
				delete(s.entries, k)
			}
		}
	}
}

// Len reports the number of entries, including any not yet swept.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
