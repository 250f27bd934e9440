package taskrt

import "fmt"

// executorConfig holds resolved construction-time configuration shared by
// every executor variant. Grounded on the teacher's loopOptions/LoopOption/
// resolveLoopOptions trio (options.go).
type executorConfig struct {
	logger    Logger
	metrics   bool
	parkSpins int
}

// ExecutorOption configures an executor at construction time.
type ExecutorOption interface {
	applyExecutor(*executorConfig)
}

type executorOptionFunc func(*executorConfig)

func (f executorOptionFunc) applyExecutor(c *executorConfig) { f(c) }

// WithLogger attaches a Logger to an executor. Recovered task panics are
// logged through it at LevelError; state transitions and park/wake events
// are not logged.
func WithLogger(logger Logger) ExecutorOption {
	return executorOptionFunc(func(c *executorConfig) {
		c.logger = logger
	})
}

// WithMetrics enables per-executor ExecutorMetrics collection (task
// latency percentiles, queue depth, worker count).
func WithMetrics(enabled bool) ExecutorOption {
	return executorOptionFunc(func(c *executorConfig) {
		c.metrics = enabled
	})
}

// WithParkSpin sets the number of times a worker re-checks its queue
// before parking, matching spec.md §4.2's "brief spin" language for
// Get/snapshot_not_empty. n <= 0 disables the spin.
func WithParkSpin(n int) ExecutorOption {
	return executorOptionFunc(func(c *executorConfig) {
		c.parkSpins = n
	})
}

func resolveExecutorConfig(opts []ExecutorOption) *executorConfig {
	c := &executorConfig{
		logger:    defaultLogger(),
		parkSpins: 32,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.applyExecutor(c)
	}
	return c
}

// ScalingConfig configures a ScalingExecutor's pool sizing policy (C9).
type ScalingConfig struct {
	// Min is the number of workers kept alive even when idle.
	Min int
	// Max bounds the live worker count.
	Max int
	// Linger is the idle duration after which a worker beyond Min exits.
	Linger int64 // milliseconds, see time.Duration conversion in scaling.go
}

func (c ScalingConfig) validate() error {
	if c.Min < 0 {
		return fmt.Errorf("taskrt: scaling config: min must be >= 0, got %d", c.Min)
	}
	if c.Max < 1 {
		return fmt.Errorf("taskrt: scaling config: max must be >= 1, got %d", c.Max)
	}
	if c.Min > c.Max {
		return fmt.Errorf("taskrt: scaling config: min (%d) must be <= max (%d)", c.Min, c.Max)
	}
	return nil
}
