package taskrt

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// promiseCleanupArg is the argument runtime.AddCleanup passes to
// promiseCleanup. It must not reference the Promise itself — only the
// shared state and settled flag the Future independently keeps alive —
// or the Promise would never be collectable in the first place.
type promiseCleanupArg[T any] struct {
	state   *sharedState[T]
	settled *atomic.Bool
}

// promiseCleanup finalizes a Future with a BrokenPromise error if its
// Promise was garbage collected without ever being settled (spec.md
// §4.8, testable property S5). Grounded on the original source's
// PromiseBase destructor (Promise.h: "if (!_State->Satisfied())
// SetExceptionUnsafe(BrokenPromise)"), which runs deterministically when
// a C++ Promise goes out of scope. Go has no deterministic destructors,
// so runtime.AddCleanup — attached directly to each Promise in NewFuture
// — is the closest equivalent: it fires once the runtime proves the
// Promise unreachable, independent of any other Future/Promise traffic.
func promiseCleanup[T any](arg promiseCleanupArg[T]) {
	if arg.settled.CompareAndSwap(false, true) {
		var zero T
		arg.state.publish(zero, &FutureError{Kind: BrokenPromise})
	}
}

// ContinuationMode selects how a Future's continuation is scheduled
// relative to whether the Future was already satisfied at the moment
// the continuation was installed, per spec.md §4.8.
type ContinuationMode int

const (
	// ContinuationDirect always runs the continuation inline: on the
	// installing goroutine if the Future was already satisfied, or on
	// the completing goroutine (inside set_value/set_exception)
	// otherwise.
	ContinuationDirect ContinuationMode = iota
	// ContinuationForceAsync always redispatches the continuation onto
	// the captured executor, regardless of timing.
	ContinuationForceAsync
	// ContinuationAsyncIfDistant runs the continuation inline if the
	// Future was not yet satisfied at install time (the producer
	// invokes it directly from its own completion call), but
	// redispatches onto the captured executor if the Future was already
	// satisfied (so the installer's own call stack isn't reused for
	// arbitrary continuation work).
	ContinuationAsyncIfDistant

	// continuationAwaiterMode is an internal-only sentinel used by
	// Future.Await to get Async[T]-style in-place-or-redispatch
	// dispatch (dispatch, in async.go) instead of one of the three
	// user-facing policies above.
	continuationAwaiterMode
)

// sharedState is the state C14 describes: a ready flag, value-or-error
// slot, and at most one continuation, behind a spin lock while pending
// and read-only once ready. The done channel is allocated lazily, on
// first Wait/WaitFor/WaitUntil call, matching spec.md §4.8's "lazily
// allocated sync/condvar pair" — most Futures are only ever driven by
// continuations and never pay for one.
type sharedState[T any] struct {
	lock      SpinLock
	ready     bool
	retrieved bool
	value     T
	err       error

	contSet      bool
	contExecutor Executor
	contMode     ContinuationMode
	cont         func(T, error)

	doneMu sync.Mutex
	done   chan struct{}
}

func (s *sharedState[T]) isReady() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ready
}

func (s *sharedState[T]) doneChan() chan struct{} {
	s.doneMu.Lock()
	defer s.doneMu.Unlock()
	if s.done == nil {
		s.done = make(chan struct{})
		if s.isReady() {
			close(s.done)
		}
	}
	return s.done
}

func (s *sharedState[T]) publish(value T, err error) {
	s.lock.Lock()
	if s.ready {
		s.lock.Unlock()
		return
	}
	s.ready = true
	s.value, s.err = value, err
	hasCont := s.contSet
	executor, mode, cont := s.contExecutor, s.contMode, s.cont
	s.contSet = false
	s.cont = nil
	s.lock.Unlock()

	s.doneMu.Lock()
	if s.done != nil {
		close(s.done)
	}
	s.doneMu.Unlock()

	if hasCont {
		if mode == continuationAwaiterMode {
			dispatch(executor, value, err, cont)
		} else {
			dispatchContinuation(executor, mode, value, err, cont, false)
		}
	}
}

func (s *sharedState[T]) setContinuation(executor Executor, mode ContinuationMode, cont func(T, error)) {
	s.lock.Lock()
	if s.ready {
		value, err := s.value, s.err
		s.lock.Unlock()
		if mode == continuationAwaiterMode {
			dispatch(executor, value, err, cont)
		} else {
			dispatchContinuation(executor, mode, value, err, cont, true)
		}
		return
	}
	s.contSet = true
	s.contExecutor = executor
	s.contMode = mode
	s.cont = cont
	s.lock.Unlock()
}

// dispatchContinuation implements the already-fulfilled scheduling
// policy of spec.md §4.8: Direct always runs inline; ForceAsync always
// redispatches; AsyncIfDistant runs inline only when not yet satisfied at
// install time (atInstall false), else redispatches so the installer
// doesn't pay the cost of running arbitrary continuation work.
func dispatchContinuation[T any](executor Executor, mode ContinuationMode, value T, err error, cont func(T, error), atInstall bool) {
	switch mode {
	case ContinuationForceAsync:
		_ = executor.Enqueue(func() { cont(value, err) })
	case ContinuationAsyncIfDistant:
		if atInstall {
			_ = executor.Enqueue(func() { cont(value, err) })
		} else {
			cont(value, err)
		}
	default:
		cont(value, err)
	}
}

// Future[T] is the read side of a Promise[T]: a blocking or
// continuation-driven handle to a value that some other goroutine will
// eventually produce.
type Future[T any] struct {
	state *sharedState[T]
}

// Promise[T] is the write side: a handle exactly one of SetValue or
// SetException should be called on. Dropping a Promise without ever
// settling it finalizes the paired Future with a FutureError of kind
// BrokenPromise, via a runtime.AddCleanup attached at construction.
type Promise[T any] struct {
	state   *sharedState[T]
	settled *atomic.Bool
	cleanup runtime.Cleanup
}

// NewFuture constructs a pending Future/Promise pair.
func NewFuture[T any]() (*Future[T], *Promise[T]) {
	s := &sharedState[T]{}
	settled := new(atomic.Bool)

	p := &Promise[T]{state: s, settled: settled}
	p.cleanup = runtime.AddCleanup(p, promiseCleanup[T], promiseCleanupArg[T]{state: s, settled: settled})

	return &Future[T]{state: s}, p
}

// SetValue satisfies the Promise with value. Returns a FutureError of
// kind PromiseAlreadySatisfied if called more than once across
// SetValue/SetException.
func (p *Promise[T]) SetValue(value T) error {
	if !p.settled.CompareAndSwap(false, true) {
		return newFutureError(PromiseAlreadySatisfied, nil)
	}
	p.cleanup.Stop()
	p.state.publish(value, nil)
	return nil
}

// SetException satisfies the Promise with a captured producer failure.
func (p *Promise[T]) SetException(err error) error {
	if err == nil {
		panic("taskrt: Promise.SetException called with nil error")
	}
	if !p.settled.CompareAndSwap(false, true) {
		return newFutureError(PromiseAlreadySatisfied, nil)
	}
	p.cleanup.Stop()
	var zero T
	p.state.publish(zero, err)
	return nil
}

// Get blocks until the Future is satisfied and returns its value or
// error. A second call returns an error of kind FutureAlreadyRetrieved.
func (f *Future[T]) Get() (T, error) {
	s := f.state
	s.lock.Lock()
	if s.retrieved {
		s.lock.Unlock()
		var zero T
		return zero, newFutureError(FutureAlreadyRetrieved, nil)
	}
	s.lock.Unlock()

	<-s.doneChan()

	s.lock.Lock()
	s.retrieved = true
	value, err := s.value, s.err
	s.lock.Unlock()
	return value, err
}

// Wait blocks until the Future is satisfied, without consuming it —
// Get may still be called afterward.
func (f *Future[T]) Wait() {
	<-f.state.doneChan()
}

// WaitFor blocks until the Future is satisfied or d elapses, reporting
// which happened.
func (f *Future[T]) WaitFor(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.state.doneChan():
		return true
	case <-timer.C:
		return false
	}
}

// WaitUntil blocks until the Future is satisfied or the monotonic clock
// reaches deadline, reporting which happened. Per SPEC_FULL.md's decision
// on Open Question 3, this uses time.Time rather than a context, since a
// Future is not itself cancellable.
func (f *Future[T]) WaitUntil(deadline time.Time) bool {
	return f.WaitFor(time.Until(deadline))
}

// SetContinuation installs cont to run with the Future's eventual value,
// scheduled according to mode. At most one continuation is supported;
// installing a second one replaces the first if it has not yet fired.
func (f *Future[T]) SetContinuation(executor Executor, mode ContinuationMode, cont func(T, error)) {
	f.state.setContinuation(executor, mode, cont)
}

// Await implements the Awaiter[T] interface (awaitable.go), giving
// Future[T] the same in-place-or-redispatch dispatch policy as
// Async[T]/ValueAsync[T], so it composes with AwaitAll and other
// coroutine-style combinators.
func (f *Future[T]) Await(executor Executor, cont func(T, error)) {
	f.state.setContinuation(executor, continuationAwaiterMode, cont)
}

var _ Awaiter[struct{}] = (*Future[struct{}])(nil)

// Then chains fn to run once f is satisfied, returning a new Future that
// is satisfied with fn's result. If f fails, fn is still invoked (with
// the zero value and the error) so it can recover; if fn itself returns
// an error, that becomes the resulting Future's error.
func Then[T, U any](f *Future[T], executor Executor, mode ContinuationMode, fn func(T, error) (U, error)) *Future[U] {
	next, promise := NewFuture[U]()
	f.SetContinuation(executor, mode, func(v T, err error) {
		result, ferr := fn(v, err)
		if ferr != nil {
			_ = promise.SetException(ferr)
			return
		}
		_ = promise.SetValue(result)
	})
	return next
}

// ContinueWith is Then specialized to a side-effecting fn that doesn't
// transform the value; the resulting Future carries the same value/error
// as f.
func ContinueWith[T any](f *Future[T], executor Executor, mode ContinuationMode, fn func(T, error)) *Future[T] {
	return Then(f, executor, mode, func(v T, err error) (T, error) {
		fn(v, err)
		return v, err
	})
}
