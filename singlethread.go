package taskrt

import "sync"

// SingleThreadExecutor is the one-owned-worker, strict-FIFO executor (C8).
// Grounded on the teacher's Loop run/tick/Submit/Shutdown shape (loop.go),
// trimmed to the minimal drain/park/wake worker loop spec.md §4.3
// describes: this variant carries none of the teacher's I/O polling,
// timers, or microtask ring, all explicitly out of this runtime's scope.
type SingleThreadExecutor struct {
	core *executorCore
	wg   sync.WaitGroup
}

// NewSingleThreadExecutor constructs and starts a SingleThreadExecutor.
func NewSingleThreadExecutor(opts ...ExecutorOption) *SingleThreadExecutor {
	cfg := resolveExecutorConfig(opts)
	e := &SingleThreadExecutor{core: newExecutorCore("single-thread", NewFIFOQueue(), cfg)}
	e.core.state.store(stateRunning)
	e.core.metrics.setWorkerCount(1)
	e.wg.Add(1)
	go e.run()
	return e
}

// Enqueue implements Executor.
func (e *SingleThreadExecutor) Enqueue(fn Task) error {
	return e.core.enqueue(fn)
}

func (e *SingleThreadExecutor) run() {
	defer e.wg.Done()
	setCurrentExecutor(e)
	defer clearCurrentExecutor()

	for {
		e.core.drainOnce()
		if e.core.state.load() != stateRunning {
			// final drain to honor "tasks still queued at shutdown run
			// before workers exit" (spec.md §4.4, applied uniformly)
			e.core.drainOnce()
			return
		}
		e.core.parkWithSnapshot()
		if e.core.state.load() != stateRunning {
			e.core.drainOnce()
			return
		}
	}
}

// Shutdown stops accepting new work, drains everything already queued,
// and waits for the worker goroutine to exit.
func (e *SingleThreadExecutor) Shutdown() {
	if e.core.state.tryTransition(stateRunning, stateShuttingDown) {
		e.core.park.Broadcast()
	}
	e.wg.Wait()
	e.core.state.store(stateTerminated)
}

// Metrics returns a snapshot of this executor's load. Apart from
// QueueDepth, only populated if constructed with WithMetrics(true).
func (e *SingleThreadExecutor) Metrics() ExecutorMetrics {
	return e.core.metricsSnapshot()
}
