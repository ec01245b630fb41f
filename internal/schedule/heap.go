package schedule

// queued pairs an entry with its insertion sequence for stable ordering.
type queued struct {
	entry Entry
	seq   uint64
}

// entryHeap implements container/heap.Interface ordered by DueAt, then by
// insertion sequence.
type entryHeap []queued

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].entry.DueAt.Equal(h[j].entry.DueAt) {
		return h[i].seq < h[j].seq
	}

	return h[i].entry.DueAt.Before(h[j].entry.DueAt)
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(queued)) //nolint:forcetypeassert // heap only holds queued
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = queued{}
	*h = old[:n-1]

	return x
}
