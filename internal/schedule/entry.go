package schedule

import (
	"time"

	"github.com/ethpandaops/resampler/internal/intervals"
)

// Entry is one pending future check of a single item.
type Entry struct {
	DueAt    time.Time `json:"due_at"`
	Interval int       `json:"interval"` // Index into the interval table
	Key      string    `json:"key"`      // Stable item identity (submission id)
	Ref      string    `json:"ref"`      // Handle used for bulk lookup (fullname)
}

// First builds the entry an item enters scheduling with.
func First(table *intervals.Table, now time.Time, key, ref string) Entry {
	return Entry{
		DueAt:    now.Add(table.Offset(0)),
		Interval: 0,
		Key:      key,
		Ref:      ref,
	}
}

// Next returns the successor entry re-armed relative to now. It returns false
// once the item's schedule is exhausted.
func (e Entry) Next(table *intervals.Table, now time.Time) (Entry, bool) {
	if table.Last(e.Interval) {
		return Entry{}, false
	}

	return Entry{
		DueAt:    now.Add(table.Delta(e.Interval)),
		Interval: e.Interval + 1,
		Key:      e.Key,
		Ref:      e.Ref,
	}, true
}
