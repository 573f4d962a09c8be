// Package executor provides the fixed-size worker pool that fans batches of
// prefix lookups out over a shared, immutable matcher.
//
// The pool is created once at service start, accepts batch work during
// normal operation, and is explicitly retired by Shutdown. Lookup tasks are
// pure in-memory reads, so workers never block and no locking is needed
// around the matcher; the only invariant is that the matcher is fully built
// before the pool sees it.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhowes/lpmatch/internal/logging"
	"github.com/dhowes/lpmatch/internal/matcher"
)

// NoMatch is the reserved sentinel recorded in batch result maps for inputs
// with no matching prefix. The empty string can never be a registered
// prefix, so the sentinel is unambiguous.
const NoMatch = ""

// Pool is a fixed-size worker pool for batch lookups. Workers are started
// at construction and the pool is never resized.
type Pool struct {
	cfg Config
	log *logging.Logger

	tasks chan func()

	// quit is closed on graceful shutdown: workers drain the queue and
	// exit. forceCtx is cancelled when the grace period elapses (or the
	// shutdown caller is itself cancelled): workers exit immediately,
	// abandoning queued tasks.
	quit        chan struct{}
	forceCtx    context.Context
	forceCancel context.CancelFunc

	workerWG sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool creates the pool and starts its workers.
func NewPool(cfg Config, log *logging.Logger) *Pool {
	if log == nil {
		log = logging.Null
	}
	forceCtx, forceCancel := context.WithCancel(context.Background())

	p := &Pool{
		cfg:         cfg,
		log:         log.WithComponent("executor"),
		tasks:       make(chan func(), cfg.queueSize()),
		quit:        make(chan struct{}),
		forceCtx:    forceCtx,
		forceCancel: forceCancel,
	}

	workers := cfg.workerCount()
	p.workerWG.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	p.log.Debug("pool started with %d workers", workers)
	return p
}

// Workers returns the fixed worker count.
func (p *Pool) Workers() int {
	return p.cfg.workerCount()
}

// worker runs queued tasks until the pool is retired. On graceful shutdown
// it drains whatever is already queued; on forced cancellation it exits
// without draining.
func (p *Pool) worker() {
	defer p.workerWG.Done()
	for {
		select {
		case <-p.forceCtx.Done():
			return
		default:
		}

		select {
		case <-p.forceCtx.Done():
			return
		case fn := <-p.tasks:
			fn()
		case <-p.quit:
			for {
				select {
				case <-p.forceCtx.Done():
					return
				case fn := <-p.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// MatchBatch evaluates every input against m concurrently and blocks until
// the whole batch completes. The result map holds exactly one entry per
// distinct input; inputs with no matching prefix map to NoMatch. An empty
// input set returns an empty map without scheduling any tasks.
//
// A cancelled ctx or a panicking task fails the entire batch with a single
// aggregate error; there are no partial results. Batches are read-only and
// idempotent, so retrying a failed batch is always safe.
func (p *Pool) MatchBatch(ctx context.Context, m matcher.Matcher, inputs []string) (map[string]string, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	// Duplicate inputs collapse to one task each; the result is a mapping
	// keyed by input, so duplicates could only ever produce one entry.
	seen := make(map[string]struct{}, len(inputs))
	uniq := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if _, dup := seen[in]; dup {
			continue
		}
		seen[in] = struct{}{}
		uniq = append(uniq, in)
	}
	if len(uniq) == 0 {
		return map[string]string{}, nil
	}

	log := p.log.WithField("batch", uuid.New().String())
	log.Debug("batch submitted: %d inputs", len(uniq))

	// Each task writes only its own slot, so no lock is needed around
	// results; the WaitGroup provides the happens-before edge for reads.
	matches := make([]string, len(uniq))
	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		taskErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { taskErr = err })
	}

	for i, input := range uniq {
		task := func() {
			defer wg.Done()
			if p.cfg.RecoverFromPanic {
				defer func() {
					if r := recover(); r != nil {
						fail(fmt.Errorf("%w: %v", ErrTaskPanic, r))
					}
				}()
			}
			select {
			case <-ctx.Done():
				fail(fmt.Errorf("%w: %v", ErrBatchCancelled, ctx.Err()))
				return
			default:
			}
			match, found := m.FindLongestMatch(input)
			if found {
				matches[i] = match
			} else {
				matches[i] = NoMatch
			}
		}

		wg.Add(1)
		select {
		case p.tasks <- task:
		case <-ctx.Done():
			wg.Done()
			return nil, fmt.Errorf("%w: %v", ErrBatchCancelled, ctx.Err())
		case <-p.quit:
			wg.Done()
			return nil, ErrPoolClosed
		case <-p.forceCtx.Done():
			wg.Done()
			return nil, ErrPoolClosed
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrBatchCancelled, ctx.Err())
	case <-p.forceCtx.Done():
		return nil, fmt.Errorf("%w: pool retired", ErrBatchCancelled)
	}

	if taskErr != nil {
		return nil, taskErr
	}

	results := make(map[string]string, len(uniq))
	for i, input := range uniq {
		results[input] = matches[i]
	}
	log.Debug("batch completed: %d results", len(results))
	return results, nil
}

// Shutdown retires the pool. It first stops admission of new batches and
// waits up to the grace period for in-flight tasks, then forces
// cancellation and waits up to the force period for workers to acknowledge.
// If the pool still has not quiesced, ErrShutdownTimeout is returned.
//
// If ctx is cancelled while waiting, Shutdown forces cancellation
// immediately and returns the ctx error.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.closed = true
	close(p.quit)
	p.mu.Unlock()

	p.log.Info("shutdown initiated, waiting for in-flight work")

	done := make(chan struct{})
	go func() {
		p.workerWG.Wait()
		close(done)
	}()

	grace := time.NewTimer(p.cfg.GracePeriod)
	defer grace.Stop()

	select {
	case <-done:
		p.log.Info("shut down cleanly")
		return nil
	case <-ctx.Done():
		p.forceCancel()
		return ctx.Err()
	case <-grace.C:
	}

	p.log.Warn("workers did not quiesce within %s, forcing cancellation", p.cfg.GracePeriod)
	p.forceCancel()

	force := time.NewTimer(p.cfg.ForcePeriod)
	defer force.Stop()

	select {
	case <-done:
		p.log.Info("shut down after forced cancellation")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-force.C:
		p.log.Error("workers failed to terminate")
		return ErrShutdownTimeout
	}
}
