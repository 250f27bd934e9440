package taskrt

import "github.com/joeycumines/go-taskrt/internal/tls"

// currentExecutorTable backs the current-executor register (C7): a
// per-goroutine slot, set when a worker goroutine begins running an
// executor's loop and cleared when it exits, and read only by the owning
// goroutine (through the table's internal locks). Grounded on the teacher's isLoopThread/
// loopGoroutineID pattern in loop.go, generalized from "the one loop" to
// "whichever Executor owns this goroutine."
var currentExecutorTable = tls.New()
var currentExecutorKey = currentExecutorTable.Create(nil)

// CurrentExecutor returns the Executor that owns the calling goroutine, or
// nil if the calling goroutine is not a worker of any Executor.
func CurrentExecutor() Executor {
	v, ok := currentExecutorTable.Get(currentExecutorKey)
	if !ok {
		return nil
	}
	e, _ := v.(Executor)
	return e
}

// setCurrentExecutor sets the calling goroutine's owning executor. Called
// once at the top of every worker loop.
func setCurrentExecutor(e Executor) {
	currentExecutorTable.Set(currentExecutorKey, e)
}

// clearCurrentExecutor clears the calling goroutine's owning executor.
// Called when a worker loop exits.
func clearCurrentExecutor() {
	currentExecutorTable.Clear()
}
