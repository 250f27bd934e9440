package taskrt

import (
	"math"
	"testing"
	"time"
)

func TestPSquareQuantile_ApproximatesMedian(t *testing.T) {
	ps := newPSquareQuantile(0.5)
	for i := 1; i <= 1000; i++ {
		ps.update(float64(i))
	}
	got := ps.quantile()
	want := 500.0
	if math.Abs(got-want) > 50 {
		t.Fatalf("p50 estimate = %v, want close to %v", got, want)
	}
}

func TestPSquareQuantile_FewSamplesExact(t *testing.T) {
	ps := newPSquareQuantile(0.5)
	ps.update(3)
	ps.update(1)
	ps.update(2)
	got := ps.quantile()
	if got != 2 {
		t.Fatalf("quantile() with 3 samples = %v, want 2 (the sorted median)", got)
	}
}

func TestPSquareQuantile_EmptyIsZero(t *testing.T) {
	ps := newPSquareQuantile(0.9)
	if got := ps.quantile(); got != 0 {
		t.Fatalf("quantile() on empty estimator = %v, want 0", got)
	}
}

func TestMetricsCollector_DisabledIsNoop(t *testing.T) {
	c := newMetricsCollector(false)
	c.recordTask(time.Millisecond)
	c.setWorkerCount(4)
	snap := c.snapshot(7)
	if snap.TasksExecuted != 0 || snap.WorkerCount != 0 {
		t.Fatalf("disabled collector should not record anything, got %+v", snap)
	}
	if snap.QueueDepth != 7 {
		t.Fatalf("QueueDepth = %d, want 7 (always reported)", snap.QueueDepth)
	}
}

func TestMetricsCollector_RecordsTasksAndWorkers(t *testing.T) {
	c := newMetricsCollector(true)
	for range 10 {
		c.recordTask(5 * time.Millisecond)
	}
	c.setWorkerCount(3)

	snap := c.snapshot(2)
	if snap.TasksExecuted != 10 {
		t.Fatalf("TasksExecuted = %d, want 10", snap.TasksExecuted)
	}
	if snap.WorkerCount != 3 {
		t.Fatalf("WorkerCount = %d, want 3", snap.WorkerCount)
	}
	if snap.LatencyP50 <= 0 {
		t.Fatalf("LatencyP50 = %v, want > 0", snap.LatencyP50)
	}
}

func TestMetricsCollector_NilReceiverSafe(t *testing.T) {
	var c *metricsCollector
	c.recordTask(time.Millisecond)
	c.setWorkerCount(1)
	snap := c.snapshot(5)
	if snap.QueueDepth != 5 {
		t.Fatalf("QueueDepth = %d, want 5", snap.QueueDepth)
	}
}
