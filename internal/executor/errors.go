package executor

import "errors"

// Executor errors.
var (
	// ErrPoolClosed indicates the pool is shut down and no longer accepts
	// batches.
	ErrPoolClosed = errors.New("executor: pool is closed")

	// ErrBatchCancelled indicates the batch was abandoned before every
	// task completed.
	ErrBatchCancelled = errors.New("executor: batch cancelled")

	// ErrTaskPanic indicates a lookup task panicked.
	ErrTaskPanic = errors.New("executor: task panic")

	// ErrShutdownTimeout indicates workers failed to quiesce within the
	// grace and force periods.
	ErrShutdownTimeout = errors.New("executor: shutdown timed out")
)
