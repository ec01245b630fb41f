// Package pipeline defines the tagged failure values shared by the ingest and
// scheduler workers. Every variant is fatal to the worker that raised it.
package pipeline

import (
	"errors"
	"fmt"
)

// Kind tags a worker failure.
type Kind string

const (
	// KindFeed is a failure reading the inbound feed.
	KindFeed Kind = "feed"
	// KindLookup is a failed bulk lookup for a batch.
	KindLookup Kind = "lookup"
	// KindSink is a failed append to a snapshot log.
	KindSink Kind = "sink"
	// KindHandoff is a failure on the ingestor to scheduler channel.
	KindHandoff Kind = "handoff"
)

// Error is a tagged worker failure wrapping its cause.
type Error struct {
	Kind   Kind
	Worker string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Worker, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FeedError wraps err as a feed failure of worker.
func FeedError(worker string, err error) error {
	return &Error{Kind: KindFeed, Worker: worker, Err: err}
}

// LookupError wraps err as a bulk lookup failure of worker.
func LookupError(worker string, err error) error {
	return &Error{Kind: KindLookup, Worker: worker, Err: err}
}

// SinkError wraps err as a sink append failure of worker.
func SinkError(worker string, err error) error {
	return &Error{Kind: KindSink, Worker: worker, Err: err}
}

// HandoffError wraps err as a handoff channel failure of worker.
func HandoffError(worker string, err error) error {
	return &Error{Kind: KindHandoff, Worker: worker, Err: err}
}

// KindOf returns the tag of err, or "" when err is not a tagged failure.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}

	return ""
}

// IsKind reports whether err is a tagged failure of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
