// Package debounce coalesces bursts of identical-key requests into a
// single delayed execution, the way a search box should treat keystrokes.
package debounce

import (
	"sync"
	"time"
)

type task[T any] struct {
	timer       *time.Timer
	ch          chan T
	scheduledAt time.Time
	cancelled   bool
}

// Debouncer runs at most one pending action per key. Scheduling a key that
// already has a pending task supersedes it: the old task is cancelled and
// its waiters observe the zero value of T.
type Debouncer[T any] struct {
	mu    sync.Mutex
	delay time.Duration
	tasks map[string]*task[T]
}

// New creates a Debouncer with the given default delay.
func New[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		tasks: make(map[string]*task[T]),
	}
}

// Schedule arms action to run after the default delay, superseding any
// pending task for key. The returned channel delivers the action's result,
// or closes without a value if a later Schedule for the same key wins.
func (d *Debouncer[T]) Schedule(key string, action func() T) <-chan T {
	return d.ScheduleAfter(key, d.delay, action)
}

// ScheduleAfter is Schedule with an explicit delay.
func (d *Debouncer[T]) ScheduleAfter(key string, delay time.Duration, action func() T) <-chan T {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.tasks[key]; ok {
		prev.cancelled = true
		prev.timer.Stop()
		close(prev.ch)
	}

	t := &task[T]{
		ch:          make(chan T, 1),
		scheduledAt: time.Now(),
	}
	t.timer = time.AfterFunc(delay, func() { d.fire(key, t, action) })
	d.tasks[key] = t
	return t.ch
}

// fire runs when a task's timer elapses. A task superseded after its timer
// already fired is caught by the cancelled check under the lock, so it
// completes as a no-op instead of racing the replacement.
func (d *Debouncer[T]) fire(key string, t *task[T], action func() T) {
	d.mu.Lock()
	if t.cancelled {
		d.mu.Unlock()
		return
	}
	delete(d.tasks, key)
	d.mu.Unlock()

	t.ch <- action()
	close(t.ch)
}

// ActiveCount returns the number of pending (not yet fired) tasks.
func (d *Debouncer[T]) ActiveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}
