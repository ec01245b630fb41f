package handoff

import (
	"context"
	"sync"

	"github.com/ethpandaops/resampler/internal/schedule"
)

// Compile-time interface compliance check.
var _ Channel = (*Memory)(nil)

// Memory is an in-process channel. With capacity 0 it is unbounded; otherwise
// Send blocks the producer while the channel is full. Freed space wakes every
// blocked producer.
type Memory struct {
	mu       sync.Mutex
	entries  []schedule.Entry
	capacity int
	closed   bool
	ready    chan struct{}
	space    chan struct{} // Closed and replaced whenever space frees up
}

// NewMemory creates an in-process channel.
func NewMemory(capacity int) *Memory {
	return &Memory{
		entries:  make([]schedule.Entry, 0, 64),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		space:    make(chan struct{}),
	}
}

// Send appends e, waiting for room when the channel is bounded and full.
func (m *Memory) Send(ctx context.Context, e schedule.Entry) error {
	for {
		m.mu.Lock()

		if m.closed {
			m.mu.Unlock()

			return ErrClosed
		}

		if m.capacity == 0 || len(m.entries) < m.capacity {
			m.entries = append(m.entries, e)
			m.mu.Unlock()
			signal(m.ready)

			return nil
		}

		wait := m.space
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		}
	}
}

// Drain removes up to limit entries in send order.
func (m *Memory) Drain(_ context.Context, limit int) ([]schedule.Entry, error) {
	m.mu.Lock()

	n := min(limit, len(m.entries))
	if n <= 0 {
		m.mu.Unlock()

		return nil, nil
	}

	out := make([]schedule.Entry, n)
	copy(out, m.entries[:n])

	rest := copy(m.entries, m.entries[n:])
	clear(m.entries[rest:])
	m.entries = m.entries[:rest]

	pending := len(m.entries) > 0
	m.broadcastSpace()
	m.mu.Unlock()

	if pending {
		signal(m.ready)
	}

	return out, nil
}

// Ready fires after a Send.
func (m *Memory) Ready() <-chan struct{} {
	return m.ready
}

// Len returns the number of waiting entries.
func (m *Memory) Len(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries), nil
}

// Close rejects further sends. Waiting entries can still be drained.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		m.broadcastSpace()
	}
}

// broadcastSpace wakes all producers waiting for room. Callers hold mu.
func (m *Memory) broadcastSpace() {
	close(m.space)
	m.space = make(chan struct{})
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
