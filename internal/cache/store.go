package cache

import (
	"sync"
	"time"
)

// Clock is the time source a store consults for expiry decisions.
// Tests substitute a fake to exercise TTL boundaries deterministically.
type Clock func() time.Time

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Store is a thread-safe in-memory cache with TTL expiry.
// Entries are replaced wholesale on Put and never mutated in place;
// an expired entry reads as absent but may linger until overwritten.
type Store[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]entry[V]
	ttl   time.Duration
	now   Clock
}

// NewStore creates a Store with the given TTL. A nil clock means time.Now.
func NewStore[K comparable, V any](ttl time.Duration, now Clock) *Store[K, V] {
	if now == nil {
		now = time.Now
	}
	return &Store[K, V]{
		items: make(map[K]entry[V]),
		ttl:   ttl,
		now:   now,
	}
}

// Get returns the cached value if it exists and has not expired.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok || !s.fresh(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores a value with the current timestamp, overwriting any prior entry.
func (s *Store[K, V]) Put(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = entry[V]{value: value, storedAt: s.now()}
}

// IsValid reports whether an unexpired entry exists for key.
func (s *Store[K, V]) IsValid(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	return ok && s.fresh(e)
}

// Len returns the number of physically resident entries, expired or not.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ValidLen returns the number of unexpired entries.
func (s *Store[K, V]) ValidLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.items {
		if s.fresh(e) {
			n++
		}
	}
	return n
}

// Keys returns the keys of all resident entries in no particular order.
func (s *Store[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]K, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys
}

// Clear drops every entry.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[K]entry[V])
}

func (s *Store[K, V]) fresh(e entry[V]) bool {
	return s.now().Sub(e.storedAt) < s.ttl
}
