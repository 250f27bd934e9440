package taskrt

import (
	"runtime"
	"sync/atomic"
)

// BagQueue is the unordered task queue (C5): optimized for scalable
// multi-producer/multi-consumer throughput at the cost of any ordering
// promise, only progress. It shards work across a fixed number of
// independent FIFOQueue instances (each internally spin-locked) and
// round-robins both producers and consumers across the shards, which
// keeps contention on any one shard low without the complexity of a true
// lock-free MPMC ring. The "sharded, progress-only" framing follows
// hayabusa-cloud-lfq's mpmc/mpsc family naming; the per-shard slot/state
// handling follows alphadose-ZenQ's cache-line-padded, CAS-guarded slots.
type BagQueue struct {
	shards  []FIFOQueue
	mask    uint32
	addSeq  atomic.Uint32
	getSeq  atomic.Uint32
	counter atomic.Int64
}

// NewBagQueue constructs a BagQueue sharded across GOMAXPROCS FIFOQueue
// instances (rounded up to the next power of two, minimum 1).
func NewBagQueue() *BagQueue {
	n := runtime.GOMAXPROCS(0)
	shards := nextPowerOfTwo(n)
	return &BagQueue{
		shards: make([]FIFOQueue, shards),
		mask:   uint32(shards - 1),
	}
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Add places a task into one of the shards, chosen round-robin across
// producers. No ordering relative to other Add calls is promised.
func (b *BagQueue) Add(t Task) {
	idx := b.addSeq.Add(1) & b.mask
	b.shards[idx].Add(t)
	b.counter.Add(1)
}

// Get scans shards round-robin, returning the first task found. It checks
// each shard once before reporting empty; there is no spin or retry.
func (b *BagQueue) Get() (Task, bool) {
	n := uint32(len(b.shards))
	start := b.getSeq.Add(1)
	for i := uint32(0); i < n; i++ {
		idx := (start + i) & b.mask
		if t, ok := b.shards[idx].Get(); ok {
			b.counter.Add(-1)
			return t, true
		}
	}
	return nil, false
}

// SnapshotNotEmpty reports whether the queue held at least one task across
// any shard at the moment of observation.
func (b *BagQueue) SnapshotNotEmpty() bool {
	return b.counter.Load() > 0
}

// Len returns an approximate total count across all shards.
func (b *BagQueue) Len() int {
	n := b.counter.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}
