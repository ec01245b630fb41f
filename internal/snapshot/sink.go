package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Sink is an append-only log of records. Appends land in call order and
// failures are reported to the caller.
type Sink interface {
	Append(ctx context.Context, rec Record) error
	Close() error
}

// Log names the two logs of a feed-group.
type Log string

const (
	// FirstSeen holds one row per admitted item.
	FirstSeen Log = "stream"
	// Resample holds one row per (item, interval) sample.
	Resample Log = "score"
)

// FileName builds the log file name from the feed-group and process start.
func FileName(log Log, group string, started time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", log, group, started.Format("2006-01-02_150405"))
}

// Compile-time interface compliance check.
var _ Sink = (*MemorySink)(nil)

// MemorySink keeps records in memory.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
	err     error
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append stores rec unless a failure was injected with FailWith.
func (m *MemorySink) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.records = append(m.records, rec)

	return nil
}

// Records returns a copy of everything appended so far.
func (m *MemorySink) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, len(m.records))
	copy(out, m.records)

	return out
}

// FailWith makes subsequent appends return err.
func (m *MemorySink) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// Close is a no-op.
func (m *MemorySink) Close() error {
	return nil
}
