package taskrt

// ManualDrainExecutor is the no-owned-thread executor (C11): it exposes
// DrainOnce, which sets the current-executor register to itself, runs
// every task queued at the time of the call, then clears the register and
// returns. Intended
// for deterministic tests and cooperative embeddings that want full
// control over when work happens, per spec.md §4.5. Grounded on the
// teacher's processExternal/processInternalQueue drain loops (loop.go),
// stripped of the owned goroutine and state machine entirely.
type ManualDrainExecutor struct {
	core   *executorCore
	closed bool
}

// NewManualDrainExecutor constructs a ManualDrainExecutor.
func NewManualDrainExecutor(opts ...ExecutorOption) *ManualDrainExecutor {
	cfg := resolveExecutorConfig(opts)
	return &ManualDrainExecutor{core: newExecutorCore("manual-drain", NewFIFOQueue(), cfg)}
}

// Enqueue implements Executor.
func (e *ManualDrainExecutor) Enqueue(fn Task) error {
	if e.closed {
		return ErrExecutorTerminated
	}
	e.core.queue.Add(fn)
	return nil
}

// DrainOnce runs every task currently queued and returns how many ran.
// Tasks enqueued while it runs stay queued for the next call. Safe to
// call repeatedly; returns 0 once the queue is empty.
func (e *ManualDrainExecutor) DrainOnce() int {
	setCurrentExecutor(e)
	defer clearCurrentExecutor()
	pending := e.core.queue.Len()
	n := 0
	for n < pending {
		t, ok := e.core.queue.Get()
		if !ok {
			break
		}
		e.core.runTask(t)
		n++
	}
	return n
}

// Close marks the executor terminated; further Enqueue calls fail, but
// DrainOnce may still be called to finish anything already queued.
func (e *ManualDrainExecutor) Close() {
	e.closed = true
}

// Metrics returns a snapshot of this executor's load. Apart from
// QueueDepth, only populated if constructed with WithMetrics(true).
func (e *ManualDrainExecutor) Metrics() ExecutorMetrics {
	return e.core.metricsSnapshot()
}
