// Package handoff is the one-way channel carrying first schedule entries from
// the ingestor to the scheduler.
package handoff

import (
	"context"
	"errors"

	"github.com/ethpandaops/resampler/internal/schedule"
)

// ErrClosed is returned when sending on a closed channel.
var ErrClosed = errors.New("handoff channel closed")

// Channel is a multiple-producer, single-consumer queue of schedule entries.
type Channel interface {
	// Send hands an entry over to the consumer. Ownership moves with it.
	Send(ctx context.Context, e schedule.Entry) error
	// Drain returns up to limit waiting entries without blocking.
	Drain(ctx context.Context, limit int) ([]schedule.Entry, error)
	// Ready signals that entries may be waiting. A nil channel means the
	// consumer has to poll.
	Ready() <-chan struct{}
	// Len returns the number of entries waiting.
	Len(ctx context.Context) (int, error)
}
