package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ethpandaops/resampler/internal/handoff"
	"github.com/ethpandaops/resampler/internal/intervals"
	"github.com/ethpandaops/resampler/internal/pipeline"
	"github.com/ethpandaops/resampler/internal/reddit"
	redditmocks "github.com/ethpandaops/resampler/internal/reddit/mocks"
	"github.com/ethpandaops/resampler/internal/snapshot"
	"github.com/ethpandaops/resampler/internal/testutil"
	"github.com/ethpandaops/resampler/internal/wallclock"
)

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ingestor *Ingestor
	stream   *redditmocks.MockStream
	authors  *redditmocks.MockAuthors
	sink     *snapshot.MemorySink
	out      *handoff.Memory
	clock    *wallclock.Manual
}

func newFixture(t *testing.T, table *intervals.Table) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		stream:  redditmocks.NewMockStream(ctrl),
		authors: redditmocks.NewMockAuthors(ctrl),
		sink:    snapshot.NewMemorySink(),
		out:     handoff.NewMemory(0),
		clock:   wallclock.NewManual(start),
	}

	f.ingestor = New(
		testutil.NewTestLogger(),
		Config{Group: "pics", StaleAfter: time.Minute},
		table,
		f.stream,
		f.authors,
		f.sink,
		f.out,
		f.clock,
	)

	return f
}

func submission(id, author string, created time.Time) *reddit.Submission {
	return &reddit.Submission{
		ID:         id,
		Name:       "t3_" + id,
		Author:     author,
		Score:      1,
		Title:      "title " + id,
		CreatedUTC: float64(created.Unix()),
	}
}

func TestIngestor_Handle(t *testing.T) {
	table, err := intervals.New(5, 10)
	require.NoError(t, err)

	f := newFixture(t, table)
	ctx := testutil.NewTestContext(t)

	f.authors.EXPECT().
		Karma(gomock.Any(), "alice").
		Return(&reddit.Karma{CommentKarma: 10, LinkKarma: 20}, nil).
		Times(1)

	require.NoError(t, f.ingestor.Handle(ctx, submission("abc", "alice", start.Add(-10*time.Second))))

	records := f.sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "abc", records[0].ID)
	assert.Equal(t, 0, records[0].Minutes)
	assert.Equal(t, start, records[0].TimeRetrieved)
	require.NotNil(t, records[0].CommentKarma)
	assert.Equal(t, 10, *records[0].CommentKarma)
	assert.Equal(t, 20, *records[0].LinkKarma)

	entries, err := f.out.Drain(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].Key)
	assert.Equal(t, "t3_abc", entries[0].Ref)
	assert.Equal(t, 0, entries[0].Interval)
	assert.Equal(t, start.Add(5*time.Minute), entries[0].DueAt)
}

func TestIngestor_StaleFiltering(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		admitted bool
	}{
		{name: "fresh", age: 5 * time.Second, admitted: true},
		{name: "exactly at threshold", age: time.Minute, admitted: true},
		{name: "backlog", age: 2 * time.Minute, admitted: false},
		{name: "hours old", age: 3 * time.Hour, admitted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, intervals.Default())
			ctx := testutil.NewTestContext(t)

			if tt.admitted {
				f.authors.EXPECT().Karma(gomock.Any(), "bob").Return(&reddit.Karma{}, nil).Times(1)
			}

			require.NoError(t, f.ingestor.Handle(ctx, submission("x1", "bob", start.Add(-tt.age))))

			n, err := f.out.Len(ctx)
			require.NoError(t, err)

			if tt.admitted {
				assert.Equal(t, 1, n)
				assert.Len(t, f.sink.Records(), 1)
			} else {
				assert.Equal(t, 0, n)
				assert.Empty(t, f.sink.Records())
			}
		})
	}
}

func TestIngestor_MissingAuthor(t *testing.T) {
	tests := []struct {
		name   string
		author string
		setup  func(m *redditmocks.MockAuthors)
	}{
		{name: "deleted author", author: "[deleted]"},
		{name: "empty author", author: ""},
		{
			name:   "suspended author",
			author: "gone",
			setup: func(m *redditmocks.MockAuthors) {
				m.EXPECT().Karma(gomock.Any(), "gone").Return(nil, reddit.ErrNotFound).Times(1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, intervals.Default())

			if tt.setup != nil {
				tt.setup(f.authors)
			}

			require.NoError(t, f.ingestor.Handle(testutil.NewTestContext(t), submission("x2", tt.author, start)))

			records := f.sink.Records()
			require.Len(t, records, 1)
			assert.Nil(t, records[0].CommentKarma)
			assert.Nil(t, records[0].LinkKarma)
		})
	}
}

func TestIngestor_Failures(t *testing.T) {
	t.Run("author lookup error is a feed failure", func(t *testing.T) {
		f := newFixture(t, intervals.Default())

		f.authors.EXPECT().Karma(gomock.Any(), "carol").Return(nil, assert.AnError).Times(1)

		err := f.ingestor.Handle(testutil.NewTestContext(t), submission("x3", "carol", start))
		require.Error(t, err)
		assert.True(t, pipeline.IsKind(err, pipeline.KindFeed))
		assert.Empty(t, f.sink.Records())
	})

	t.Run("sink error", func(t *testing.T) {
		f := newFixture(t, intervals.Default())
		f.sink.FailWith(assert.AnError)

		f.authors.EXPECT().Karma(gomock.Any(), "carol").Return(&reddit.Karma{}, nil).Times(1)

		err := f.ingestor.Handle(testutil.NewTestContext(t), submission("x4", "carol", start))
		require.Error(t, err)
		assert.True(t, pipeline.IsKind(err, pipeline.KindSink))
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("closed handoff", func(t *testing.T) {
		f := newFixture(t, intervals.Default())
		f.out.Close()

		f.authors.EXPECT().Karma(gomock.Any(), "carol").Return(&reddit.Karma{}, nil).Times(1)

		err := f.ingestor.Handle(testutil.NewTestContext(t), submission("x5", "carol", start))
		require.Error(t, err)
		assert.True(t, pipeline.IsKind(err, pipeline.KindHandoff))
		assert.ErrorIs(t, err, handoff.ErrClosed)
	})
}

func TestIngestor_Run(t *testing.T) {
	t.Run("admits stream until cancelled", func(t *testing.T) {
		f := newFixture(t, intervals.Default())
		ctx, cancel := context.WithCancel(testutil.NewTestContext(t))

		gomock.InOrder(
			f.stream.EXPECT().Next(gomock.Any()).Return(submission("a", "[deleted]", start.Add(-time.Hour)), nil),
			f.stream.EXPECT().Next(gomock.Any()).Return(submission("b", "[deleted]", start), nil),
			f.stream.EXPECT().Next(gomock.Any()).DoAndReturn(func(ctx context.Context) (*reddit.Submission, error) {
				cancel()

				return nil, ctx.Err()
			}),
		)

		require.NoError(t, f.ingestor.Run(ctx))

		entries, err := f.out.Drain(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "b", entries[0].Key)
	})

	t.Run("feed error is fatal", func(t *testing.T) {
		f := newFixture(t, intervals.Default())

		f.stream.EXPECT().Next(gomock.Any()).Return(nil, errors.New("connection reset")).Times(1)

		err := f.ingestor.Run(testutil.NewTestContext(t))
		require.Error(t, err)
		assert.True(t, pipeline.IsKind(err, pipeline.KindFeed))
	})
}
