package taskrt

// Async[T] is the shared, multi-awaiter value transport (C12): a single
// producer publishes exactly once, and any number of awaiters — some
// registered before publication, some after — all observe the same
// value or error. Grounded on the subscriber fan-out in the teacher's
// promise type (promise.go): a mutex-guarded slice of waiters that is
// drained and nilled out exactly once, at settlement. Unlike that type,
// awaiters here are dispatched through an Executor rather than a
// buffered channel, per spec.md §4.6's "resume in place vs redispatch"
// policy.
type Async[T any] struct {
	lock  SpinLock
	ready bool
	value T
	err   error
	head  *asyncAwaiter[T]
	tail  *asyncAwaiter[T]
}

type asyncAwaiter[T any] struct {
	executor Executor
	cont     func(T, error)
	next     *asyncAwaiter[T]
}

// NewAsync constructs a pending Async[T].
func NewAsync[T any]() *Async[T] {
	return &Async[T]{}
}

// Set publishes value, waking every registered awaiter. Must be called
// at most once across Set/Fail; subsequent calls are ignored.
func (a *Async[T]) Set(value T) {
	a.publish(value, nil)
}

// Fail publishes err as the captured producer exception. Must be called
// at most once across Set/Fail; subsequent calls are ignored.
func (a *Async[T]) Fail(err error) {
	var zero T
	a.publish(zero, err)
}

func (a *Async[T]) publish(value T, err error) {
	a.lock.Lock()
	if a.ready {
		a.lock.Unlock()
		return
	}
	a.ready = true
	a.value = value
	a.err = err
	head := a.head
	a.head, a.tail = nil, nil
	a.lock.Unlock()

	// Invariant: no awaiter is ever appended to the list after ready
	// becomes true (enforced by the check in Await below), so walking
	// the snapshot outside the lock is safe — nothing else can touch it.
	for w := head; w != nil; w = w.next {
		dispatch(w.executor, value, err, w.cont)
	}
}

// Await registers a continuation to receive the published value. If the
// transport is already settled, cont is dispatched immediately according
// to the in-place/redispatch policy relative to executor; otherwise it is
// queued and dispatched once Set/Fail publishes.
func (a *Async[T]) Await(executor Executor, cont func(T, error)) {
	a.lock.Lock()
	if a.ready {
		value, err := a.value, a.err
		a.lock.Unlock()
		dispatch(executor, value, err, cont)
		return
	}
	w := &asyncAwaiter[T]{executor: executor, cont: cont}
	if a.tail == nil {
		a.head, a.tail = w, w
	} else {
		a.tail.next = w
		a.tail = w
	}
	a.lock.Unlock()
}

// Peek reports the published value without registering an awaiter. ok is
// false while the transport is still pending.
func (a *Async[T]) Peek() (value T, err error, ok bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.value, a.err, a.ready
}

// dispatch implements the awaiter dispatch policy shared by every
// transport in this package (spec.md §4.2's awaiter contract): resume
// in-place when the awaiter's target executor is the one currently
// running (or the caller didn't ask for any particular executor), else
// enqueue the resumption onto the target.
func dispatch[T any](executor Executor, value T, err error, cont func(T, error)) {
	if executor == nil || CurrentExecutor() == executor {
		cont(value, err)
		return
	}
	_ = executor.Enqueue(func() { cont(value, err) })
}
