package taskrt

// taskQueue is the storage contract shared by FIFOQueue and BagQueue (C4/C5).
// Implementations never block for more than a brief spin: Add never fails,
// Get returns (task, false) promptly if nothing is available, and
// SnapshotNotEmpty is a best-effort observation with no happens-before
// guarantee beyond "a true result observed after a completed Add means the
// item is visible to some consumer."
type taskQueue interface {
	Add(t Task)
	Get() (Task, bool)
	SnapshotNotEmpty() bool
	Len() int
}
