package taskrt

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Executor is the narrow capability every scheduler variant implements
// (C6): accept a nullary callable and run it according to the variant's
// own scheduling policy. No other operation is exposed on the interface;
// variant-specific lifecycle (Shutdown, DrainOnce, Run) lives on the
// concrete type, matching spec.md §4.1's "no other operations are exposed
// on the interface."
type Executor interface {
	// Enqueue submits fn for execution. It returns ErrExecutorTerminated
	// if the executor has already finished shutting down.
	Enqueue(fn Task) error
}

// executorState is the lifecycle state machine shared by every concrete
// executor, grounded on the teacher's LoopState/FastState (state.go).
type executorState uint32

const (
	stateCreated executorState = iota
	stateRunning
	stateShuttingDown
	stateTerminated
)

// fastState is a lock-free, cache-line-padded CAS state machine, ported
// nearly verbatim from the teacher's FastState.
type fastState struct {
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

func newFastState(initial executorState) *fastState {
	s := &fastState{}
	s.v.Store(uint32(initial))
	return s
}

func (s *fastState) load() executorState { return executorState(s.v.Load()) }

func (s *fastState) store(to executorState) { s.v.Store(uint32(to)) }

func (s *fastState) tryTransition(from, to executorState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// executorCore is the shared state every concrete executor variant
// embeds: the running flag, the task queue, the park counter/signal pair,
// and optional logging/metrics. It implements the park/wake protocol of
// spec.md §4.3/§5 once, for every variant to reuse.
type executorCore struct {
	name    string
	state   *fastState
	queue   taskQueue
	park    *ParkSignal
	parkCtr atomic.Int64
	logger  Logger
	metrics *metricsCollector
	spins   int
}

func newExecutorCore(name string, q taskQueue, cfg *executorConfig) *executorCore {
	return &executorCore{
		name:    name,
		state:   newFastState(stateCreated),
		queue:   q,
		park:    newParkSignal(),
		logger:  cfg.logger,
		metrics: newMetricsCollector(cfg.metrics),
		spins:   cfg.parkSpins,
	}
}

// enqueue implements the producer half of spec.md §4.3: add the task, then
// wake_one(). It is shared by every executor variant's Enqueue method.
func (c *executorCore) enqueue(t Task) error {
	if c.state.load() >= stateShuttingDown {
		return ErrExecutorTerminated
	}
	c.queue.Add(t)
	c.wakeOne()
	return nil
}

// wakeOne implements wake_one(): CAS-decrement the park counter from any
// positive value, and signal exactly one worker if the CAS succeeded. If
// the counter is zero, no worker is parked, so nothing is done.
func (c *executorCore) wakeOne() {
	c.wakeOneReturn()
}

// wakeOneReturn is wakeOne, reporting whether a parked worker was found
// and woken. ScalingExecutor uses the result to decide whether spawning a
// new worker is warranted.
func (c *executorCore) wakeOneReturn() bool {
	for {
		n := c.parkCtr.Load()
		if n <= 0 {
			return false
		}
		if c.parkCtr.CompareAndSwap(n, n-1) {
			c.park.Signal()
			return true
		}
	}
}

// spin busy-checks the queue up to c.spins times, yielding the processor
// between checks, before a worker commits to the full park/wake protocol.
// Reports whether work became visible during the spin, in which case the
// caller should go straight back to draining instead of parking at all.
// spins <= 0 (WithParkSpin's documented "disables the spin" case) makes
// this an immediate no-op.
func (c *executorCore) spin() bool {
	for i := 0; i < c.spins; i++ {
		if c.queue.SnapshotNotEmpty() {
			return true
		}
		runtime.Gosched()
	}
	return false
}

// parkWithSnapshot implements the worker-side half of the park/wake
// protocol: increment park_counter, then check whether work is now
// observable and, if so, immediately self-wake via wake_one before
// actually waiting on the signal. This ordering — increment, snapshot,
// conditional self-wake, wait — is the step spec.md §5 calls essential:
// inverting it admits lost wakeups between a producer's add and this
// worker's park.
func (c *executorCore) parkWithSnapshot() {
	if c.spin() {
		return
	}
	c.parkCtr.Add(1)
	if c.queue.SnapshotNotEmpty() {
		c.wakeOne()
	}
	c.park.Wait()
}

// parkWithSnapshotTimeout is parkWithSnapshot bounded by d, for workers
// that may decide to exit after an idle linger (C9). It reports whether
// the worker was woken (true) or the timeout elapsed first (false); on
// timeout the park counter is decremented back out, since nobody will
// wake this worker going forward.
func (c *executorCore) parkWithSnapshotTimeout(d time.Duration) bool {
	if c.spin() {
		return true
	}
	c.parkCtr.Add(1)
	if c.queue.SnapshotNotEmpty() {
		c.wakeOne()
	}
	woken := c.park.WaitTimeout(d)
	if !woken {
		// Try to reclaim our own park-counter slot. If a concurrent
		// wakeOne already consumed it (a genuine wake racing the
		// timeout), treat this as woken rather than double-decrementing.
		reclaimed := false
		for {
			n := c.parkCtr.Load()
			if n <= 0 {
				break
			}
			if c.parkCtr.CompareAndSwap(n, n-1) {
				reclaimed = true
				break
			}
		}
		woken = !reclaimed
	}
	return woken
}

// drainOnce pulls and runs every task currently available, recovering and
// logging any panic so one bad task cannot take down the worker. Returns
// the number of tasks executed.
func (c *executorCore) drainOnce() int {
	n := 0
	for {
		t, ok := c.queue.Get()
		if !ok {
			return n
		}
		c.runTask(t)
		n++
	}
}

func (c *executorCore) runTask(t Task) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.recordTask(time.Since(start))
		}
		if r := recover(); r != nil {
			pe := &TaskPanicError{Value: r}
			if c.logger != nil && c.logger.Enabled(LevelError) {
				c.logger.Log(Entry{
					Level:    LevelError,
					Category: "executor",
					Message:  "task panicked, recovered",
					Err:      pe,
					Fields:   map[string]any{"executor": c.name},
				})
			}
		}
	}()
	t()
}

func (c *executorCore) logf(level Level, category, msg string) {
	if c.logger == nil || !c.logger.Enabled(level) {
		return
	}
	c.logger.Log(Entry{Level: level, Category: category, Message: msg, Fields: map[string]any{"executor": c.name}})
}

func (c *executorCore) metricsSnapshot() ExecutorMetrics {
	return c.metrics.snapshot(c.queue.Len())
}
