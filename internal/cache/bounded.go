package cache

import "time"

// Bounded is a Store that additionally enforces a maximum entry count.
// When a Put would exceed capacity, the entry with the oldest storedAt is
// evicted first. Reads do not refresh an entry's eviction priority, so the
// policy is LRU by insertion time, not by access time.
type Bounded[K comparable, V any] struct {
	*Store[K, V]
	capacity int
}

// NewBounded creates a Bounded store with the given TTL and capacity.
func NewBounded[K comparable, V any](ttl time.Duration, capacity int, now Clock) *Bounded[K, V] {
	return &Bounded[K, V]{
		Store:    NewStore[K, V](ttl, now),
		capacity: capacity,
	}
}

// Put stores a value, evicting the oldest entry if the store is at capacity.
func (b *Bounded[K, V]) Put(key K, value V) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.items[key]; !exists && len(b.items) >= b.capacity {
		b.evictOldest()
	}
	b.items[key] = entry[V]{value: value, storedAt: b.now()}
}

// evictOldest removes the single entry with the smallest storedAt.
// Ties are broken arbitrarily. Caller must hold the lock.
func (b *Bounded[K, V]) evictOldest() {
	var (
		oldestKey K
		oldestAt  time.Time
		found     bool
	)
	for k, e := range b.items {
		if !found || e.storedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.storedAt
			found = true
		}
	}
	if found {
		delete(b.items, oldestKey)
	}
}
