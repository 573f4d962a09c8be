package executor

import (
	"runtime"
	"time"
)

// Config holds worker pool configuration options.
type Config struct {
	// Workers is the fixed number of worker goroutines. Zero or negative
	// means the number of available CPUs. The pool is never resized.
	Workers int

	// QueueSize is the buffer size of the task queue.
	QueueSize int

	// GracePeriod is how long Shutdown waits for in-flight tasks before
	// forcing cancellation.
	GracePeriod time.Duration

	// ForcePeriod is how long Shutdown waits after forcing cancellation
	// before giving up.
	ForcePeriod time.Duration

	// RecoverFromPanic wraps task execution in panic recovery, turning a
	// panicking task into an aggregate batch error instead of crashing
	// the process.
	RecoverFromPanic bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:          0,
		QueueSize:        64,
		GracePeriod:      5 * time.Second,
		ForcePeriod:      5 * time.Second,
		RecoverFromPanic: true,
	}
}

// WithWorkers returns a copy of the config with the worker count set.
func (c Config) WithWorkers(n int) Config {
	c.Workers = n
	return c
}

// WithQueueSize returns a copy of the config with the queue size set.
func (c Config) WithQueueSize(n int) Config {
	if n > 0 {
		c.QueueSize = n
	}
	return c
}

// WithGracePeriod returns a copy of the config with the grace period set.
func (c Config) WithGracePeriod(d time.Duration) Config {
	c.GracePeriod = d
	return c
}

// WithForcePeriod returns a copy of the config with the force period set.
func (c Config) WithForcePeriod(d time.Duration) Config {
	c.ForcePeriod = d
	return c
}

// workerCount resolves the configured worker count.
func (c Config) workerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// queueSize resolves the configured queue size.
func (c Config) queueSize() int {
	if c.QueueSize > 0 {
		return c.QueueSize
	}
	return 64
}
