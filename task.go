package taskrt

// Task is a nullary unit of work. An executor invokes each submitted Task
// at most once; the closure must not panic with an error it expects the
// caller to observe. Panics are recovered by the executor and surfaced as
// a TaskPanicError to the log only, so the closure has no contract for
// reporting failure other than capturing it in whatever value it produces.
type Task func()
