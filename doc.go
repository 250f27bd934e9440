// Package taskrt provides a general-purpose asynchronous task runtime: a
// family of executors (single-thread, scaling pool, blocking, manual-drain),
// FIFO and unordered task queues, a coroutine-style value transport for
// rendezvous between producer and consumer goroutines, and a future/promise
// pair with blocking retrieval and chained continuations.
//
// The runtime makes no fairness guarantees across executors, performs no
// work stealing, carries no cancellation tokens or timers at its core, and
// assigns no thread priorities. Callers that need those behaviours build
// them on top, using context.Context and the executor's Enqueue method.
//
// # Executors
//
// An Executor accepts tasks (nullary closures) and runs them according to
// its own scheduling policy. SingleThreadExecutor owns one goroutine and a
// strict FIFO queue. ScalingExecutor owns a bounded pool of goroutines that
// grows and shrinks between Min and Max, optionally trading FIFO ordering
// for the higher-throughput, unordered BagQueue. BlockingExecutor turns the
// calling goroutine itself into the worker, driving tasks until a target
// condition is satisfied. ManualDrainExecutor owns no goroutine at all;
// callers invoke DrainOnce to make progress.
//
// # Value transports
//
// Async[T] is a shared, multi-awaiter rendezvous: any number of goroutines
// may await the same value, delivered once it is published. ValueAsync[T]
// is its single-shot sibling: at most one awaiter may be registered while
// the value is pending; once it is published, a later Await receives it
// directly.
//
// # Futures and promises
//
// Future[T] and Promise[T] implement classic future/promise semantics:
// blocking retrieval (Get, Wait, WaitFor, WaitUntil), a single chained continuation
// (Then), and broken-promise finalization when a Promise is discarded
// without ever being satisfied.
package taskrt
