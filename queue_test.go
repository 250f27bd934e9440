package taskrt

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"
)

func TestFIFOQueue_PreservesOrder(t *testing.T) {
	q := NewFIFOQueue()
	const n = fifoChunkSize*3 + 17 // cross several chunk boundaries

	var order []int
	for i := 0; i < n; i++ {
		i := i
		q.Add(func() { order = append(order, i) })
	}
	if got := q.Len(); got != n {
		t.Fatalf("Len() = %d, want %d", got, n)
	}

	for i := 0; i < n; i++ {
		task, ok := q.Get()
		if !ok {
			t.Fatalf("premature exhaustion at index %d", i)
		}
		task()
	}
	if _, ok := q.Get(); ok {
		t.Fatal("expected empty queue after draining all tasks")
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d, want %d (FIFO violated)", i, v, i)
		}
	}
}

func TestFIFOQueue_SnapshotNotEmpty(t *testing.T) {
	q := NewFIFOQueue()
	if q.SnapshotNotEmpty() {
		t.Fatal("empty queue reported not-empty")
	}
	q.Add(func() {})
	if !q.SnapshotNotEmpty() {
		t.Fatal("non-empty queue reported empty")
	}
	q.Get()
	if q.SnapshotNotEmpty() {
		t.Fatal("drained queue reported not-empty")
	}
}

func TestFIFOQueue_InterleavedAddGet(t *testing.T) {
	q := NewFIFOQueue()
	q.Add(func() {})
	q.Add(func() {})
	if _, ok := q.Get(); !ok {
		t.Fatal("expected a task")
	}
	q.Add(func() {})
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	for range 2 {
		if _, ok := q.Get(); !ok {
			t.Fatal("expected a task")
		}
	}
	if _, ok := q.Get(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestBagQueue_NoOrderingGuarantee_ButNoLoss(t *testing.T) {
	b := NewBagQueue()
	const n = 5000

	for i := 0; i < n; i++ {
		b.Add(func() {})
	}
	if got := b.Len(); got != n {
		t.Fatalf("Len() = %d, want %d", got, n)
	}

	drained := 0
	for {
		if _, ok := b.Get(); !ok {
			break
		}
		drained++
	}
	if drained != n {
		t.Fatalf("drained %d tasks, want %d", drained, n)
	}
}

func TestBagQueue_MultisetEquality_ConcurrentProducers(t *testing.T) {
	b := NewBagQueue()
	const perProducer = 2000
	const producers = 8
	const total = perProducer * producers

	var wg sync.WaitGroup
	var nextIdx atomic.Int64
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				idx := int(nextIdx.Add(1) - 1)
				b.Add(func() { _ = idx })
			}
		}()
	}
	wg.Wait()

	var mu sync.Mutex
	var indices []int
	var consumers sync.WaitGroup
	for c := 0; c < producers; c++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				task, ok := b.Get()
				if !ok {
					return
				}
				task()
				mu.Lock()
				indices = append(indices, len(indices))
				mu.Unlock()
			}
		}()
	}
	consumers.Wait()

	if len(indices) != total {
		t.Fatalf("consumed %d tasks, want %d (lost or duplicated work)", len(indices), total)
	}
}

func TestBagQueue_SnapshotNotEmpty(t *testing.T) {
	b := NewBagQueue()
	if b.SnapshotNotEmpty() {
		t.Fatal("empty bag reported not-empty")
	}
	b.Add(func() {})
	if !b.SnapshotNotEmpty() {
		t.Fatal("non-empty bag reported empty")
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{-1: 1, 0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 8: 8, 9: 16}
	var keys []int
	for k := range cases {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if got := nextPowerOfTwo(k); got != cases[k] {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", k, got, cases[k])
		}
	}
}
