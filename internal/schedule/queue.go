// Package schedule holds schedule entries and the time-ordered queue the
// scheduler keeps them in.
package schedule

import (
	"container/heap"
	"errors"
	"time"
)

// ErrDuplicate is returned when an item already has a pending entry.
var ErrDuplicate = errors.New("item already has a pending entry")

// Queue is a min-priority queue of entries keyed by DueAt. Entries with equal
// DueAt pop in insertion order. At most one entry per Key is pending.
//
// Queue is not safe for concurrent use.
type Queue struct {
	heap    entryHeap
	pending map[string]struct{}
	seq     uint64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		heap:    make(entryHeap, 0, 64),
		pending: make(map[string]struct{}, 64),
	}
}

// Push adds an entry. DueAt may be in the past.
func (q *Queue) Push(e Entry) error {
	if _, exists := q.pending[e.Key]; exists {
		return ErrDuplicate
	}

	q.pending[e.Key] = struct{}{}
	q.seq++

	heap.Push(&q.heap, queued{entry: e, seq: q.seq})

	return nil
}

// DueBefore reports whether the earliest entry is due at or before now.
func (q *Queue) DueBefore(now time.Time) bool {
	if len(q.heap) == 0 {
		return false
	}

	return !q.heap[0].entry.DueAt.After(now)
}

// NextDue returns the earliest DueAt, if any.
func (q *Queue) NextDue() (time.Time, bool) {
	if len(q.heap) == 0 {
		return time.Time{}, false
	}

	return q.heap[0].entry.DueAt, true
}

// PopBatch pops up to limit entries that are due at or before now, in pop order.
// An empty result means nothing is due.
func (q *Queue) PopBatch(now time.Time, limit int) []Entry {
	if limit <= 0 {
		return []Entry{}
	}

	batch := make([]Entry, 0, min(limit, len(q.heap)))

	for len(batch) < limit && q.DueBefore(now) {
		item := heap.Pop(&q.heap).(queued) //nolint:forcetypeassert // heap only holds queued
		delete(q.pending, item.entry.Key)

		batch = append(batch, item.entry)
	}

	return batch
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.heap)
}

// Pending reports whether key has a pending entry.
func (q *Queue) Pending(key string) bool {
	_, ok := q.pending[key]

	return ok
}
