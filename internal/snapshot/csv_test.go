package snapshot

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/resampler/internal/testutil"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path) //nolint:gosec // test file
	require.NoError(t, err)

	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	return rows
}

func TestCSVSink_AppendsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "score_pics_2024-01-01_000000.csv")

	sink, err := OpenCSV(testutil.NewTestLogger(), path)
	require.NoError(t, err)

	ctx := testutil.NewTestContext(t)
	base := time.Unix(1700000000, 0)

	for i, minutes := range []int{5, 10, 15} {
		rec := FromSubmission(testSubmission(), nil, base.Add(time.Duration(i)*time.Minute), minutes)
		require.NoError(t, sink.Append(ctx, rec))
	}

	// Rows are flushed per append, before Close.
	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "5", rows[1][3])
	assert.Equal(t, "10", rows[2][3])
	assert.Equal(t, "15", rows[3][3])
	assert.Equal(t, "line one\nline two", rows[1][8])

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
	require.Error(t, sink.Append(ctx, FromSubmission(testSubmission(), nil, base, 30)))
}

func TestCSVSink_ReopenDoesNotRepeatHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")
	ctx := testutil.NewTestContext(t)

	first, err := OpenCSV(testutil.NewTestLogger(), path)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, FromSubmission(testSubmission(), nil, time.Unix(0, 0), 0)))
	require.NoError(t, first.Close())

	second, err := OpenCSV(testutil.NewTestLogger(), path)
	require.NoError(t, err)
	require.NoError(t, second.Append(ctx, FromSubmission(testSubmission(), nil, time.Unix(0, 0), 0)))
	require.NoError(t, second.Close())

	rows := readCSV(t, path)
	assert.Len(t, rows, 3)
	assert.Equal(t, path, second.Path())
}

func TestCSVSink_CancelledContextSkipsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "score.csv")

	sink, err := OpenCSV(testutil.NewTestLogger(), path)
	require.NoError(t, err)

	defer sink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sink.Append(ctx, FromSubmission(testSubmission(), nil, time.Unix(0, 0), 5))
	require.ErrorIs(t, err, context.Canceled)

	assert.Len(t, readCSV(t, path), 1)
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	ctx := testutil.NewTestContext(t)

	require.NoError(t, sink.Append(ctx, Record{ID: "a"}))
	require.NoError(t, sink.Append(ctx, Record{ID: "b"}))

	sink.FailWith(errors.New("disk full"))
	require.Error(t, sink.Append(ctx, Record{ID: "c"}))

	records := sink.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	require.NoError(t, sink.Close())
}
