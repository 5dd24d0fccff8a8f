package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleCoalescesBursts(t *testing.T) {
	d := New[int](300 * time.Millisecond)

	var runs atomic.Int32
	action := func() int {
		return int(runs.Add(1))
	}

	start := time.Now()
	d.Schedule("AAPL", action)
	time.Sleep(50 * time.Millisecond)
	d.Schedule("AAPL", action)
	time.Sleep(50 * time.Millisecond)
	ch := d.Schedule("AAPL", action)

	v, ok := <-ch
	if !ok {
		t.Fatalf("surviving task's channel closed without a value")
	}
	if v != 1 {
		t.Fatalf("action result = %d, want 1 (exactly one execution)", v)
	}
	if elapsed := time.Since(start); elapsed < 390*time.Millisecond {
		t.Fatalf("action fired after %s, want >= ~400ms (delay counted from last schedule)", elapsed)
	}

	time.Sleep(350 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Fatalf("action ran %d times, want 1", n)
	}
}

func TestSupersededTaskYieldsEmptyResult(t *testing.T) {
	d := New[[]string](50 * time.Millisecond)

	first := d.Schedule("MSFT", func() []string { return []string{"MSFT"} })
	second := d.Schedule("MSFT", func() []string { return []string{"MSFT"} })

	if v, ok := <-first; ok || v != nil {
		t.Fatalf("superseded channel = %v, %v; want nil, false", v, ok)
	}
	if v, ok := <-second; !ok || len(v) != 1 {
		t.Fatalf("surviving channel = %v, %v; want [MSFT], true", v, ok)
	}
}

func TestDifferentKeysDoNotInterfere(t *testing.T) {
	d := New[string](30 * time.Millisecond)

	a := d.Schedule("AAPL", func() string { return "a" })
	b := d.Schedule("MSFT", func() string { return "b" })

	if v := <-a; v != "a" {
		t.Fatalf("AAPL result = %q, want %q", v, "a")
	}
	if v := <-b; v != "b" {
		t.Fatalf("MSFT result = %q, want %q", v, "b")
	}
}

func TestActiveCount(t *testing.T) {
	d := New[int](80 * time.Millisecond)

	if n := d.ActiveCount(); n != 0 {
		t.Fatalf("ActiveCount() = %d, want 0", n)
	}

	chA := d.Schedule("A", func() int { return 1 })
	chB := d.Schedule("B", func() int { return 2 })
	if n := d.ActiveCount(); n != 2 {
		t.Fatalf("ActiveCount() = %d, want 2", n)
	}

	// Superseding does not grow the active set.
	chA2 := d.Schedule("A", func() int { return 3 })
	if n := d.ActiveCount(); n != 2 {
		t.Fatalf("ActiveCount() after supersede = %d, want 2", n)
	}

	<-chA
	<-chA2
	<-chB
	if n := d.ActiveCount(); n != 0 {
		t.Fatalf("ActiveCount() after firing = %d, want 0", n)
	}
}

func TestScheduleAfterUsesExplicitDelay(t *testing.T) {
	d := New[int](time.Hour) // default delay deliberately unusable

	start := time.Now()
	ch := d.ScheduleAfter("A", 20*time.Millisecond, func() int { return 7 })

	if v := <-ch; v != 7 {
		t.Fatalf("result = %d, want 7", v)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("fired after %s, explicit delay ignored", elapsed)
	}
}
