package taskrt

import (
	"runtime"
	"sync/atomic"
)

// spinSpins is the number of CAS retries, after the first attempt, a
// SpinLock makes before yielding the goroutine to the scheduler. It's a small constant rather than a
// tunable: the lock is held for a handful of instructions (a linked-list
// splice), never across a blocking call.
const spinSpins = 64

// SpinLock is a low-contention mutual-exclusion primitive, cache-line
// padded to avoid false sharing when several SpinLocks (e.g. one per Bag
// shard) sit in the same slice. It is not reentrant and not fair; it exists
// for regions held for a handful of instructions, never across a blocking
// operation.
type SpinLock struct {
	_      [64]byte
	locked atomic.Uint32
	_      [60]byte
}

// Lock blocks until the lock is acquired, spinning briefly before yielding.
func (l *SpinLock) Lock() {
	for i := 0; ; i++ {
		if l.locked.CompareAndSwap(0, 1) {
			return
		}
		if i < spinSpins {
			continue
		}
		runtime.Gosched()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *SpinLock) TryLock() bool {
	return l.locked.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Unlock of an unlocked SpinLock is a bug in the
// caller, same as sync.Mutex.
func (l *SpinLock) Unlock() {
	l.locked.Store(0)
}
