package taskrt

// vaState is the lifecycle of a ValueAsync's single slot.
type vaState uint8

const (
	vaPending  vaState = iota // empty, nobody has transited or published
	vaAwaiting                // one awaiter is registered, waiting on publication
	vaFinal                   // producer has published; value/err are set
)

// ValueAsync[T] is the single-shot, move-only value transport (C13):
// exactly one producer and at most one awaiter share a single slot.
// Grounded on spec.md §4.7's "CAS from null to awaiter, sentinel INVALID
// on publish" description; realized here as a spin-lock-guarded state
// flag rather than a literal CAS'd pointer, since Go has no equivalent of
// a move-only coroutine frame to punt the slot's storage into — the
// SpinLock already used by FIFOQueue (fifoqueue.go) gives the same
// "exactly one critical section, no blocking" behavior with far less
// unsafe bookkeeping.
type ValueAsync[T any] struct {
	lock  SpinLock
	state vaState

	awaiterExecutor Executor
	awaiterCont     func(T, error)

	value T
	err   error
}

// NewValueAsync constructs a pending ValueAsync[T].
func NewValueAsync[T any]() *ValueAsync[T] {
	return &ValueAsync[T]{}
}

// Await registers the transport's one permitted awaiter. Calling Await a
// second time before the first has been satisfied is a programmer error
// (spec.md §4.11 "two awaiters on a single-shot transport") and panics,
// matching the source's fatal-abort semantics.
func (v *ValueAsync[T]) Await(executor Executor, cont func(T, error)) {
	v.lock.Lock()
	switch v.state {
	case vaPending:
		v.state = vaAwaiting
		v.awaiterExecutor = executor
		v.awaiterCont = cont
		v.lock.Unlock()
	case vaFinal:
		value, err := v.value, v.err
		v.lock.Unlock()
		dispatch(executor, value, err, cont)
	case vaAwaiting:
		v.lock.Unlock()
		panic(ErrAlreadyAwaited)
	}
}

// Set publishes value. Must be called at most once across Set/Fail.
func (v *ValueAsync[T]) Set(value T) {
	v.publish(value, nil)
}

// Fail publishes err as the captured producer exception. Must be called
// at most once across Set/Fail.
func (v *ValueAsync[T]) Fail(err error) {
	var zero T
	v.publish(zero, err)
}

func (v *ValueAsync[T]) publish(value T, err error) {
	v.lock.Lock()
	if v.state == vaFinal {
		v.lock.Unlock()
		return
	}
	hadAwaiter := v.state == vaAwaiting
	executor, cont := v.awaiterExecutor, v.awaiterCont
	v.state = vaFinal
	v.value, v.err = value, err
	v.awaiterExecutor, v.awaiterCont = nil, nil
	v.lock.Unlock()

	if hadAwaiter {
		dispatch(executor, value, err, cont)
	}
}
