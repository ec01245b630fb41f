// Package intervals holds the fixed observation schedule shared by the
// ingestor and the scheduler.
package intervals

import (
	"fmt"
	"time"
)

// Table is an immutable, strictly increasing sequence of minute offsets.
type Table struct {
	minutes []int
}

// Default returns the reference schedule: 5, 10, 15, 30 and 60 minutes, then
// every hour from 2h out to 24h.
func Default() *Table {
	minutes := []int{5, 10, 15, 30, 60}
	for k := 0; k < 23; k++ {
		minutes = append(minutes, 120+60*k)
	}

	return &Table{minutes: minutes}
}

// New validates and builds a table from minute offsets.
func New(minutes ...int) (*Table, error) {
	if len(minutes) == 0 {
		return nil, fmt.Errorf("interval table cannot be empty")
	}

	if minutes[0] <= 0 {
		return nil, fmt.Errorf("first interval must be positive, got %d", minutes[0])
	}

	for i := 1; i < len(minutes); i++ {
		if minutes[i] <= minutes[i-1] {
			return nil, fmt.Errorf(
				"intervals must be strictly increasing: [%d]=%d after [%d]=%d",
				i, minutes[i], i-1, minutes[i-1],
			)
		}
	}

	owned := make([]int, len(minutes))
	copy(owned, minutes)

	return &Table{minutes: owned}, nil
}

// Count returns the number of intervals (N).
func (t *Table) Count() int {
	return len(t.minutes)
}

// Minutes returns the i-th offset in minutes.
func (t *Table) Minutes(i int) int {
	return t.minutes[i]
}

// Offset returns the i-th offset as a duration.
func (t *Table) Offset(i int) time.Duration {
	return time.Duration(t.minutes[i]) * time.Minute
}

// Last reports whether i is the final interval.
func (t *Table) Last(i int) bool {
	return i >= len(t.minutes)-1
}

// Delta returns the gap between interval i and i+1. Callers must check Last first.
func (t *Table) Delta(i int) time.Duration {
	return t.Offset(i+1) - t.Offset(i)
}

// All returns a copy of the offsets in minutes.
func (t *Table) All() []int {
	out := make([]int, len(t.minutes))
	copy(out, t.minutes)

	return out
}
