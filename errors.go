package taskrt

import (
	"errors"
	"fmt"
)

// FutureErrorKind classifies the error conditions a Future/Promise pair can
// produce.
type FutureErrorKind int8

const (
	// NoState indicates the Future or Promise has no backing state, e.g. it
	// is the zero value.
	NoState FutureErrorKind = iota
	// BrokenPromise indicates the Promise was garbage collected without
	// ever being satisfied.
	BrokenPromise
	// FutureAlreadyRetrieved indicates Get was already called, and the
	// transport does not support multiple retrievals. Installing a
	// continuation does not count as a retrieval.
	FutureAlreadyRetrieved
	// PromiseAlreadySatisfied indicates SetValue or SetException was
	// already called on this Promise.
	PromiseAlreadySatisfied
)

// String implements fmt.Stringer.
func (k FutureErrorKind) String() string {
	switch k {
	case NoState:
		return "no_state"
	case BrokenPromise:
		return "broken_promise"
	case FutureAlreadyRetrieved:
		return "future_already_retrieved"
	case PromiseAlreadySatisfied:
		return "promise_already_satisfied"
	default:
		return "unknown"
	}
}

// FutureError is returned by the future/promise transport for all its
// documented error conditions. Cause, if non-nil, is reachable via
// errors.Unwrap; the FutureErrors this package creates carry no Cause. An
// error passed to Promise.SetException reaches the Future as is, not
// wrapped in a FutureError.
type FutureError struct {
	Kind    FutureErrorKind
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *FutureError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "taskrt: " + e.Kind.String()
}

// Unwrap returns the underlying cause, for use with errors.Is/errors.As.
func (e *FutureError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *FutureError with the same Kind.
func (e *FutureError) Is(target error) bool {
	var other *FutureError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func newFutureError(kind FutureErrorKind, cause error) *FutureError {
	return &FutureError{Kind: kind, Cause: cause}
}

// TaskPanicError wraps a value recovered from a panicking task, keeping the
// executor alive. Executors log these through their Logger and discard
// them; no Promise or other caller-visible value receives them.
type TaskPanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("taskrt: task panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is itself an error, so that
// errors.Is/errors.As can see through to the original cause.
func (e *TaskPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

var (
	// ErrExecutorTerminated is returned by Enqueue once an executor has
	// finished shutting down.
	ErrExecutorTerminated = errors.New("taskrt: executor terminated")

	// ErrExecutorAlreadyRunning is returned by BlockingExecutor.Run when
	// it is called while already running.
	ErrExecutorAlreadyRunning = errors.New("taskrt: executor already running")

	// ErrReentrantAwait is returned when a blocking wait is attempted from
	// a goroutine that is itself the executor driving the wait (e.g. the
	// BlockingExecutor's own worker goroutine calling back into itself).
	ErrReentrantAwait = errors.New("taskrt: reentrant await")

	// ErrAlreadyAwaited is the value ValueAsync's Await panics with when
	// an earlier awaiter is still waiting for publication.
	ErrAlreadyAwaited = errors.New("taskrt: value transport already awaited")
)
