package taskrt

import (
	"sync"
	"time"
)

// ScalingExecutor is the dynamic worker-pool executor (C9): a bounded
// number of goroutines, between Min and Max, fed from either a FIFOQueue
// or a BagQueue. Grounded on the teacher's worker lifecycle states
// (spawning -> working -> idle, loop.go) generalized from one owned
// goroutine to a pool, and on its WaitGroup-joined shutdown sequence.
type ScalingExecutor struct {
	core   *executorCore
	cfg    ScalingConfig
	linger time.Duration

	mu      sync.Mutex
	live    int
	wg      sync.WaitGroup
}

// NewScalingFIFOExecutor constructs a ScalingExecutor backed by a strict
// FIFO queue (enqueue order is preserved; dequeue order across workers is
// not).
func NewScalingFIFOExecutor(cfg ScalingConfig, opts ...ExecutorOption) (*ScalingExecutor, error) {
	return newScalingExecutor("scaling-fifo", NewFIFOQueue(), cfg, opts)
}

// NewScalingBagExecutor constructs a ScalingExecutor backed by the
// unordered BagQueue, trading ordering for multi-producer/multi-consumer
// throughput (spec.md S2).
func NewScalingBagExecutor(cfg ScalingConfig, opts ...ExecutorOption) (*ScalingExecutor, error) {
	return newScalingExecutor("scaling-bag", NewBagQueue(), cfg, opts)
}

func newScalingExecutor(name string, q taskQueue, cfg ScalingConfig, opts []ExecutorOption) (*ScalingExecutor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	econf := resolveExecutorConfig(opts)
	e := &ScalingExecutor{
		core:   newExecutorCore(name, q, econf),
		cfg:    cfg,
		linger: time.Duration(cfg.Linger) * time.Millisecond,
	}
	e.core.state.store(stateRunning)
	for i := 0; i < cfg.Min; i++ {
		e.spawn()
	}
	return e, nil
}

// Enqueue implements Executor. Per spec.md §4.4's enqueue policy: add to
// the queue, wake a parked worker if one exists; otherwise, if the live
// worker count is below Max and there's observable backlog, spawn a new
// one. Documented open-question decision (SPEC_FULL.md §6.2): wake is
// always attempted before spawn is considered, never both unconditionally.
func (e *ScalingExecutor) Enqueue(fn Task) error {
	if e.core.state.load() >= stateShuttingDown {
		return ErrExecutorTerminated
	}
	e.core.queue.Add(fn)
	if !e.core.wakeOneReturn() {
		e.maybeSpawn()
	}
	return nil
}

func (e *ScalingExecutor) maybeSpawn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.live >= e.cfg.Max {
		return
	}
	if !e.core.queue.SnapshotNotEmpty() {
		return
	}
	e.spawnLocked()
}

// spawn grows the pool by one worker; used both at construction (to reach
// Min) and by maybeSpawn (bounded by Max).
func (e *ScalingExecutor) spawn() {
	e.mu.Lock()
	e.spawnLocked()
	e.mu.Unlock()
}

func (e *ScalingExecutor) spawnLocked() {
	e.live++
	e.core.metrics.setWorkerCount(e.live)
	e.wg.Add(1)
	go e.workerLoop()
}

func (e *ScalingExecutor) workerLoop() {
	defer e.wg.Done()
	setCurrentExecutor(e)
	defer clearCurrentExecutor()

	for {
		e.core.drainOnce()
		if e.core.state.load() != stateRunning {
			e.core.drainOnce()
			e.exit()
			return
		}

		woken := e.core.parkWithSnapshotTimeout(e.linger)
		if e.core.state.load() != stateRunning {
			e.core.drainOnce()
			e.exit()
			return
		}
		if !woken {
			// linger elapsed with no task: shrink towards Min.
			if e.tryShrink() {
				return
			}
			// couldn't shrink (already at Min): keep the worker parked.
		}
	}
}

// tryShrink exits this worker if doing so keeps the live count >= Min.
func (e *ScalingExecutor) tryShrink() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.live <= e.cfg.Min {
		return false
	}
	e.live--
	e.core.metrics.setWorkerCount(e.live)
	return true
}

func (e *ScalingExecutor) exit() {
	e.mu.Lock()
	e.live--
	e.core.metrics.setWorkerCount(e.live)
	e.mu.Unlock()
}

// Shutdown stops accepting new work, drains every queued task, and waits
// for all live workers to exit.
func (e *ScalingExecutor) Shutdown() {
	if e.core.state.tryTransition(stateRunning, stateShuttingDown) {
		e.core.park.Broadcast()
	}
	e.wg.Wait()
	e.core.state.store(stateTerminated)
}

// LiveWorkers returns the current number of live worker goroutines,
// always within [Min, Max] while running (spec.md §8 invariant 8).
func (e *ScalingExecutor) LiveWorkers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

// Metrics returns a snapshot of this executor's load. Apart from
// QueueDepth, only populated if constructed with WithMetrics(true).
func (e *ScalingExecutor) Metrics() ExecutorMetrics {
	return e.core.metricsSnapshot()
}
