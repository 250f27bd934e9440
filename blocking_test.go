package taskrt

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBlockingExecutor_EnqueueBeforeRunIsQueuedThenRun(t *testing.T) {
	e := NewBlockingExecutor()

	var ran atomic.Bool
	if err := e.Enqueue(func() { ran.Store(true) }); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if ran.Load() {
		t.Fatal("task ran before Run was ever called")
	}

	done := make(chan struct{})
	close(done)
	if err := e.Run(done); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ran.Load() {
		t.Fatal("Run should have drained the pre-queued task")
	}
}

func TestBlockingExecutor_RunDrivesTasksUntilDone(t *testing.T) {
	e := NewBlockingExecutor()
	done := make(chan struct{})

	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := e.Run(done); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	for range 100 {
		if err := e.Enqueue(func() { count.Add(1) }); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && count.Load() < 100 {
		time.Sleep(time.Millisecond)
	}
	if got := count.Load(); got != 100 {
		t.Fatalf("count = %d before signalling done, want 100", got)
	}

	close(done)
	wg.Wait()
}

func TestBlockingExecutor_ReentrantRunIsRejected(t *testing.T) {
	e := NewBlockingExecutor()
	done := make(chan struct{})

	errCh := make(chan error, 1)
	if err := e.Enqueue(func() {
		errCh <- e.Run(make(chan struct{}))
		close(done)
	}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := e.Run(done); err != nil {
		t.Fatalf("outer Run: %v", err)
	}

	select {
	case err := <-errCh:
		if err != ErrReentrantAwait {
			t.Fatalf("reentrant Run error = %v, want ErrReentrantAwait", err)
		}
	case <-time.After(time.Second):
		t.Fatal("inner Run never returned")
	}
}

func TestBlockingExecutor_ConcurrentRunIsRejected(t *testing.T) {
	e := NewBlockingExecutor()
	done1 := make(chan struct{})
	done2 := make(chan struct{})
	close(done2)

	started := make(chan struct{})
	go func() {
		close(started)
		_ = e.Run(done1)
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	if err := e.Run(done2); err != ErrExecutorAlreadyRunning {
		t.Fatalf("second Run error = %v, want ErrExecutorAlreadyRunning", err)
	}
	close(done1)
}

func TestBlockingExecutor_EnqueueAfterTerminatedFails(t *testing.T) {
	e := NewBlockingExecutor()
	done := make(chan struct{})
	close(done)
	if err := e.Run(done); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := e.Enqueue(func() {}); err != ErrExecutorTerminated {
		t.Fatalf("Enqueue after Run completed = %v, want ErrExecutorTerminated", err)
	}
}
