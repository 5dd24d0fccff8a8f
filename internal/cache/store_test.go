package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source for deterministic expiry.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestStoreGetBeforeAndAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	store := NewStore[string, int](time.Minute, clock.Now)

	store.Put("AAPL", 42)

	clock.Advance(59 * time.Second)
	if v, ok := store.Get("AAPL"); !ok || v != 42 {
		t.Fatalf("Get() before expiry = %v, %v; want 42, true", v, ok)
	}

	clock.Advance(2 * time.Second)
	if _, ok := store.Get("AAPL"); ok {
		t.Fatalf("Get() after expiry should report absent")
	}
}

func TestStoreMissingKeyIsAbsent(t *testing.T) {
	store := NewStore[string, int](time.Minute, nil)

	if _, ok := store.Get("NOPE"); ok {
		t.Fatalf("Get() on missing key should report absent")
	}
	if store.IsValid("NOPE") {
		t.Fatalf("IsValid() on missing key should be false")
	}
}

func TestStorePutRefreshesTimestamp(t *testing.T) {
	clock := newFakeClock()
	store := NewStore[string, int](time.Minute, clock.Now)

	store.Put("AAPL", 1)
	clock.Advance(45 * time.Second)
	store.Put("AAPL", 2)
	clock.Advance(45 * time.Second)

	// 90s since the first Put but only 45s since the overwrite.
	if v, ok := store.Get("AAPL"); !ok || v != 2 {
		t.Fatalf("Get() after refresh = %v, %v; want 2, true", v, ok)
	}
}

func TestStoreIsValidMatchesGet(t *testing.T) {
	clock := newFakeClock()
	store := NewStore[string, string](10*time.Second, clock.Now)

	store.Put("k", "v")
	if !store.IsValid("k") {
		t.Fatalf("IsValid() on fresh entry should be true")
	}

	clock.Advance(11 * time.Second)
	if store.IsValid("k") {
		t.Fatalf("IsValid() on expired entry should be false")
	}
	// Expired entries stay physically resident until overwritten.
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (expired entry still resident)", store.Len())
	}
	if store.ValidLen() != 0 {
		t.Fatalf("ValidLen() = %d, want 0", store.ValidLen())
	}
}

func TestBoundedEvictsOldestAtCapacity(t *testing.T) {
	clock := newFakeClock()
	store := NewBounded[string, int](time.Hour, 100, clock.Now)

	for i := 0; i <= 100; i++ {
		store.Put(fmt.Sprintf("key-%d", i), i)
		clock.Advance(time.Second) // distinct storedAt per entry
	}

	if store.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", store.Len())
	}
	if _, ok := store.Get("key-0"); ok {
		t.Fatalf("oldest entry key-0 should have been evicted")
	}
	for i := 1; i <= 100; i++ {
		if _, ok := store.Get(fmt.Sprintf("key-%d", i)); !ok {
			t.Fatalf("key-%d should still be present", i)
		}
	}
}

func TestBoundedOverwriteDoesNotEvict(t *testing.T) {
	clock := newFakeClock()
	store := NewBounded[string, int](time.Hour, 2, clock.Now)

	store.Put("a", 1)
	clock.Advance(time.Second)
	store.Put("b", 2)
	clock.Advance(time.Second)
	store.Put("a", 3) // overwrite, not a new entry

	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}
	if v, ok := store.Get("a"); !ok || v != 3 {
		t.Fatalf("Get(a) = %v, %v; want 3, true", v, ok)
	}
	if _, ok := store.Get("b"); !ok {
		t.Fatalf("Get(b) should still hit")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore[int, int](time.Minute, nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				store.Put(i, g)
				store.Get(i)
				store.IsValid(i)
			}
		}(g)
	}
	wg.Wait()

	if store.Len() != 200 {
		t.Fatalf("Len() = %d, want 200", store.Len())
	}
}
