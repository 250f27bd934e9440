package taskrt

import (
	"sync"
	"sync/atomic"
	"time"
)

// pSquareQuantile implements the P² algorithm (Jain & Chlamtac, 1985) for
// O(1) streaming quantile estimation without storing observations.
// Grounded on the teacher's pSquareQuantile (psquare.go); mutex-guarded
// here since, unlike the teacher's single-threaded loop, task completions
// across a ScalingExecutor's pool arrive from multiple worker goroutines.
type pSquareQuantile struct {
	p          float64
	q          [5]float64
	n          [5]int
	np         [5]float64
	dn         [5]float64
	count      int
	initBuffer [5]float64
}

func newPSquareQuantile(p float64) *pSquareQuantile {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &pSquareQuantile{p: p, dn: [5]float64{0, p / 2, p, (1 + p) / 2, 1}}
}

func (ps *pSquareQuantile) update(x float64) {
	ps.count++
	if ps.count <= 5 {
		ps.initBuffer[ps.count-1] = x
		if ps.count == 5 {
			ps.initialize()
		}
		return
	}

	var k int
	switch {
	case x < ps.q[0]:
		ps.q[0] = x
		k = 0
	case x >= ps.q[4]:
		ps.q[4] = x
		k = 3
	default:
		for k = 0; k < 4; k++ {
			if ps.q[k] <= x && x < ps.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		ps.n[i]++
	}
	for i := 0; i < 5; i++ {
		ps.np[i] += ps.dn[i]
	}
	for i := 1; i < 4; i++ {
		d := ps.np[i] - float64(ps.n[i])
		if (d >= 1 && ps.n[i+1]-ps.n[i] > 1) || (d <= -1 && ps.n[i-1]-ps.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			qPrime := ps.parabolic(i, sign)
			if ps.q[i-1] < qPrime && qPrime < ps.q[i+1] {
				ps.q[i] = qPrime
			} else {
				ps.q[i] = ps.linear(i, sign)
			}
			ps.n[i] += sign
		}
	}
}

func (ps *pSquareQuantile) initialize() {
	for i := 1; i < 5; i++ {
		key := ps.initBuffer[i]
		j := i - 1
		for j >= 0 && ps.initBuffer[j] > key {
			ps.initBuffer[j+1] = ps.initBuffer[j]
			j--
		}
		ps.initBuffer[j+1] = key
	}
	for i := 0; i < 5; i++ {
		ps.q[i] = ps.initBuffer[i]
		ps.n[i] = i
	}
	ps.np = [5]float64{0, 2 * ps.p, 4 * ps.p, 2 + 2*ps.p, 4}
}

func (ps *pSquareQuantile) parabolic(i, d int) float64 {
	df := float64(d)
	ni, niPrev, niNext := float64(ps.n[i]), float64(ps.n[i-1]), float64(ps.n[i+1])
	term1 := df / (niNext - niPrev)
	term2 := (ni - niPrev + df) * (ps.q[i+1] - ps.q[i]) / (niNext - ni)
	term3 := (niNext - ni - df) * (ps.q[i] - ps.q[i-1]) / (ni - niPrev)
	return ps.q[i] + term1*(term2+term3)
}

func (ps *pSquareQuantile) linear(i, d int) float64 {
	if d == 1 {
		return ps.q[i] + (ps.q[i+1]-ps.q[i])/float64(ps.n[i+1]-ps.n[i])
	}
	return ps.q[i] - (ps.q[i]-ps.q[i-1])/float64(ps.n[i]-ps.n[i-1])
}

func (ps *pSquareQuantile) quantile() float64 {
	if ps.count == 0 {
		return 0
	}
	if ps.count < 5 {
		sorted := append([]float64(nil), ps.initBuffer[:ps.count]...)
		for i := 1; i < len(sorted); i++ {
			key := sorted[i]
			j := i - 1
			for j >= 0 && sorted[j] > key {
				sorted[j+1] = sorted[j]
				j--
			}
			sorted[j+1] = key
		}
		idx := int(float64(ps.count-1) * ps.p)
		if idx >= ps.count {
			idx = ps.count - 1
		}
		return sorted[idx]
	}
	return ps.q[2]
}

// latencyMetrics tracks P50/P90/P99 task latency, guarded by a mutex since
// task completions can arrive from many worker goroutines concurrently.
type latencyMetrics struct {
	mu  sync.Mutex
	p50 *pSquareQuantile
	p90 *pSquareQuantile
	p99 *pSquareQuantile
}

func newLatencyMetrics() *latencyMetrics {
	return &latencyMetrics{
		p50: newPSquareQuantile(0.50),
		p90: newPSquareQuantile(0.90),
		p99: newPSquareQuantile(0.99),
	}
}

func (m *latencyMetrics) observe(d time.Duration) {
	us := float64(d.Microseconds())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p50.update(us)
	m.p90.update(us)
	m.p99.update(us)
}

func (m *latencyMetrics) snapshot() (p50, p90, p99 time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.p50.quantile()) * time.Microsecond,
		time.Duration(m.p90.quantile()) * time.Microsecond,
		time.Duration(m.p99.quantile()) * time.Microsecond
}

// ExecutorMetrics is a point-in-time snapshot of an executor's load.
// QueueDepth is always reported; the other fields are only populated when
// the executor was constructed with WithMetrics(true).
type ExecutorMetrics struct {
	TasksExecuted int64
	QueueDepth    int
	WorkerCount   int
	LatencyP50    time.Duration
	LatencyP90    time.Duration
	LatencyP99    time.Duration
}

// metricsCollector is the mutable state an executorCore updates as it
// runs; Snapshot produces the immutable ExecutorMetrics view.
type metricsCollector struct {
	enabled       bool
	tasksExecuted atomic.Int64
	workerCount   atomic.Int64
	latency       *latencyMetrics
}

func newMetricsCollector(enabled bool) *metricsCollector {
	c := &metricsCollector{enabled: enabled}
	if enabled {
		c.latency = newLatencyMetrics()
	}
	return c
}

func (c *metricsCollector) recordTask(d time.Duration) {
	if c == nil || !c.enabled {
		return
	}
	c.tasksExecuted.Add(1)
	c.latency.observe(d)
}

func (c *metricsCollector) setWorkerCount(n int) {
	if c == nil || !c.enabled {
		return
	}
	c.workerCount.Store(int64(n))
}

func (c *metricsCollector) snapshot(queueDepth int) ExecutorMetrics {
	if c == nil || !c.enabled {
		return ExecutorMetrics{QueueDepth: queueDepth}
	}
	p50, p90, p99 := c.latency.snapshot()
	return ExecutorMetrics{
		TasksExecuted: c.tasksExecuted.Load(),
		QueueDepth:    queueDepth,
		WorkerCount:   int(c.workerCount.Load()),
		LatencyP50:    p50,
		LatencyP90:    p90,
		LatencyP99:    p99,
	}
}
