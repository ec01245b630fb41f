package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/resampler/internal/intervals"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func entry(key string, due time.Duration) Entry {
	return Entry{DueAt: epoch.Add(due), Key: key, Ref: "t3_" + key}
}

func keys(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}

	return out
}

func TestQueue_PopBatchOrdering(t *testing.T) {
	q := NewQueue()

	require.NoError(t, q.Push(entry("c", 3*time.Minute)))
	require.NoError(t, q.Push(entry("a", 1*time.Minute)))
	require.NoError(t, q.Push(entry("b", 2*time.Minute)))
	require.NoError(t, q.Push(entry("future", time.Hour)))

	batch := q.PopBatch(epoch.Add(5*time.Minute), 100)

	assert.Equal(t, []string{"a", "b", "c"}, keys(batch))
	assert.Equal(t, 1, q.Len())
	assert.True(t, q.Pending("future"))
	assert.False(t, q.Pending("a"))
}

func TestQueue_TieBreakIsInsertionOrder(t *testing.T) {
	q := NewQueue()

	for i := 0; i < 20; i++ {
		require.NoError(t, q.Push(entry(fmt.Sprintf("item-%02d", i), time.Minute)))
	}

	batch := q.PopBatch(epoch.Add(time.Minute), 100)
	require.Len(t, batch, 20)

	for i, e := range batch {
		assert.Equal(t, fmt.Sprintf("item-%02d", i), e.Key)
	}
}

func TestQueue_BatchBound(t *testing.T) {
	q := NewQueue()

	for i := 0; i < 250; i++ {
		require.NoError(t, q.Push(entry(fmt.Sprintf("item-%03d", i), 0)))
	}

	now := epoch.Add(time.Second)

	first := q.PopBatch(now, 100)
	second := q.PopBatch(now, 100)
	third := q.PopBatch(now, 100)

	assert.Len(t, first, 100)
	assert.Len(t, second, 100)
	assert.Len(t, third, 50)
	assert.Equal(t, "item-100", second[0].Key)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_NothingDue(t *testing.T) {
	q := NewQueue()

	assert.False(t, q.DueBefore(epoch))
	assert.Empty(t, q.PopBatch(epoch, 100))

	_, ok := q.NextDue()
	assert.False(t, ok)

	require.NoError(t, q.Push(entry("a", time.Minute)))

	assert.False(t, q.DueBefore(epoch))
	assert.True(t, q.DueBefore(epoch.Add(time.Minute)))
	assert.Empty(t, q.PopBatch(epoch, 100))
	assert.Empty(t, q.PopBatch(epoch.Add(time.Hour), 0))

	next, ok := q.NextDue()
	require.True(t, ok)
	assert.Equal(t, epoch.Add(time.Minute), next)
}

func TestQueue_PastDueIsAccepted(t *testing.T) {
	q := NewQueue()

	require.NoError(t, q.Push(entry("late", -time.Hour)))

	batch := q.PopBatch(epoch, 100)
	assert.Equal(t, []string{"late"}, keys(batch))
}

func TestQueue_AtMostOnePendingPerKey(t *testing.T) {
	q := NewQueue()

	require.NoError(t, q.Push(entry("a", time.Minute)))
	require.ErrorIs(t, q.Push(entry("a", 2*time.Minute)), ErrDuplicate)
	assert.Equal(t, 1, q.Len())

	batch := q.PopBatch(epoch.Add(time.Hour), 100)
	require.Len(t, batch, 1)
	assert.Equal(t, epoch.Add(time.Minute), batch[0].DueAt)

	// Once popped, the item may be re-armed.
	require.NoError(t, q.Push(entry("a", 3*time.Minute)))
}

func TestEntry_Next(t *testing.T) {
	table, err := intervals.New(5, 10, 30)
	require.NoError(t, err)

	first := First(table, epoch, "abc", "t3_abc")
	assert.Equal(t, epoch.Add(5*time.Minute), first.DueAt)
	assert.Equal(t, 0, first.Interval)

	now := epoch.Add(5 * time.Minute)

	second, ok := first.Next(table, now)
	require.True(t, ok)
	assert.Equal(t, 1, second.Interval)
	assert.Equal(t, now.Add(5*time.Minute), second.DueAt)
	assert.Equal(t, "abc", second.Key)
	assert.Equal(t, "t3_abc", second.Ref)

	third, ok := second.Next(table, now)
	require.True(t, ok)
	assert.Equal(t, 2, third.Interval)
	assert.Equal(t, now.Add(20*time.Minute), third.DueAt)

	_, ok = third.Next(table, now)
	assert.False(t, ok)
}
