package taskrt

import "sync/atomic"

// BlockingExecutor is the blocking-await driver (C10): a single-thread
// executor whose worker is the calling goroutine itself, rather than a
// goroutine it owns. Run drives the executor's loop on the calling
// goroutine until the supplied done channel closes, matching spec.md
// §4.3's description: "the calling thread is the single worker; a helper
// coroutine is arranged so that when the target completes, the run flag
// is cleared and the loop exits." Grounded on the teacher's Run/
// ErrReentrantRun reentrancy guard in loop.go.
type BlockingExecutor struct {
	core    *executorCore
	running atomic.Bool
}

// NewBlockingExecutor constructs a BlockingExecutor. It owns no goroutine
// until Run is called.
func NewBlockingExecutor(opts ...ExecutorOption) *BlockingExecutor {
	cfg := resolveExecutorConfig(opts)
	e := &BlockingExecutor{core: newExecutorCore("blocking", NewFIFOQueue(), cfg)}
	e.core.state.store(stateCreated)
	return e
}

// Enqueue implements Executor. Tasks may be enqueued before Run is called;
// they are simply queued until a driver arrives.
func (e *BlockingExecutor) Enqueue(fn Task) error {
	if e.core.state.load() == stateTerminated {
		return ErrExecutorTerminated
	}
	e.core.queue.Add(fn)
	e.core.wakeOne()
	return nil
}

// Run turns the calling goroutine into this executor's worker until done
// closes, then performs a final drain and returns. It is an error to call
// Run reentrantly (e.g. from within a task it is currently running) or
// concurrently from two goroutines.
func (e *BlockingExecutor) Run(done <-chan struct{}) error {
	if CurrentExecutor() == Executor(e) {
		return ErrReentrantAwait
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrExecutorAlreadyRunning
	}
	defer e.running.Store(false)

	setCurrentExecutor(e)
	defer clearCurrentExecutor()

	e.core.state.store(stateRunning)

	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-done:
			e.core.park.Broadcast()
		case <-stopWatch:
		}
	}()

	for {
		e.core.drainOnce()

		select {
		case <-done:
			e.core.drainOnce()
			e.core.state.store(stateTerminated)
			return nil
		default:
		}

		e.core.parkWithSnapshot()
	}
}

// Metrics returns a snapshot of this executor's load. Apart from
// QueueDepth, only populated if constructed with WithMetrics(true).
func (e *BlockingExecutor) Metrics() ExecutorMetrics {
	return e.core.metricsSnapshot()
}
