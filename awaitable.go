package taskrt

import "sync"

// SwitchTo always suspends and resumes cont on target, even if the
// caller is already running on target — unlike the transports' dispatch
// policy (dispatch in async.go), which resumes in-place when the
// executors already match. Satisfies spec.md §8's "switch_to guarantees
// current_executor() == E after resume": the only way to guarantee that
// is to always go through target's queue, never run in-place.
func SwitchTo(target Executor, cont func()) error {
	return target.Enqueue(cont)
}

// Yield re-enqueues cont onto the executor currently running the calling
// task, always suspending (never running cont in-place, even though the
// current and target executors are necessarily the same one). Used to
// cooperatively yield the thread to other queued work without leaving
// the current executor, per spec.md §4.2's redispatch awaitable. When the
// calling goroutine has no current executor, there is nothing to enqueue
// onto and cont runs inline.
func Yield(cont func()) error {
	current := CurrentExecutor()
	if current == nil {
		cont()
		return nil
	}
	return current.Enqueue(cont)
}

// AwaitAll completes once every awaiter in aws has completed, delivering
// their values in the same order. If any awaiter fails, cont receives the
// first error encountered (by completion order, not input order) but
// still waits for every awaiter to finish, matching spec.md §4.2's "await
// all, complete when all complete" combinator.
func AwaitAll[T any](executor Executor, aws []Awaiter[T], cont func([]T, error)) {
	n := len(aws)
	if n == 0 {
		cont(nil, nil)
		return
	}

	var (
		mu       sync.Mutex
		results  = make([]T, n)
		firstErr error
		left     = n
	)

	for i, aw := range aws {
		i := i
		aw.Await(executor, func(v T, err error) {
			mu.Lock()
			results[i] = v
			if err != nil && firstErr == nil {
				firstErr = err
			}
			left--
			done := left == 0
			mu.Unlock()
			if done {
				cont(results, firstErr)
			}
		})
	}
}

// Awaiter is the common surface of every value transport in this
// package (Async[T], ValueAsync[T], Future[T]): register a continuation
// to run, immediately or later, with the transport's eventual value.
type Awaiter[T any] interface {
	Await(executor Executor, cont func(T, error))
}

var (
	_ Awaiter[struct{}] = (*Async[struct{}])(nil)
	_ Awaiter[struct{}] = (*ValueAsync[struct{}])(nil)
)
