// Package wallclock provides the time source the workers schedule against.
package wallclock

import (
	"sync"
	"time"
)

// Clock is a source of the current time and of wake-ups.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// Compile-time interface compliance check.
var (
	_ Clock = System{}
	_ Clock = (*Manual)(nil)
)

// System is the process wall clock in UTC.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// After waits for d on the real clock.
func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

type waiter struct {
	deadline time.Time
	ch       chan time.Time
}

// Manual is a clock that only moves when told to.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	waiters []waiter
}

// NewManual creates a manual clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// After returns a channel that fires once the clock has been advanced by d.
func (m *Manual) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan time.Time, 1)

	if d <= 0 {
		ch <- m.now

		return ch
	}

	m.waiters = append(m.waiters, waiter{deadline: m.now.Add(d), ch: ch})

	return ch
}

// Advance moves the clock forward by d and fires expired waiters.
func (m *Manual) Advance(d time.Duration) {
	m.Set(m.Now().Add(d))
}

// Set moves the clock to t and fires expired waiters.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = t

	remaining := m.waiters[:0]

	for _, w := range m.waiters {
		if w.deadline.After(t) {
			remaining = append(remaining, w)

			continue
		}

		w.ch <- t
	}

	m.waiters = remaining
}

// Waiters returns the number of pending After calls.
func (m *Manual) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.waiters)
}
