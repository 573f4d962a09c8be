// Package app wires configuration, the prefix matcher, the batch executor,
// and the prefix file watcher into a running application.
package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dhowes/lpmatch/internal/config"
	"github.com/dhowes/lpmatch/internal/executor"
	"github.com/dhowes/lpmatch/internal/logging"
	"github.com/dhowes/lpmatch/internal/matcher"
	"github.com/dhowes/lpmatch/internal/prefixes"
)

// Service exposes single and batch longest-prefix matching over one shared,
// immutable matcher and one fixed worker pool. It is constructed fully
// before use and injected into its callers; there is no package-level
// instance.
type Service struct {
	cfg  config.Config
	log  *logging.Logger
	pool *executor.Pool

	// current holds the live matcher. Every lookup reads through this
	// pointer; ReloadPrefixes swaps in a freshly built matcher, it never
	// mutates the one in place.
	current atomic.Pointer[matcher.Matcher]
}

// NewService loads the configured prefix file, builds the matcher, and
// starts the worker pool. Any failure leaves nothing running and the
// returned error describes why the service must not be used.
func NewService(cfg config.Config, log *logging.Logger) (*Service, error) {
	if log == nil {
		log = logging.Null
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strategy, err := matcher.ParseStrategy(cfg.Matcher.Strategy)
	if err != nil {
		return nil, err
	}

	log.Info("initializing matcher (strategy=%s, prefix_file=%s)",
		strategy, cfg.Matcher.PrefixFile)

	m, err := buildMatcher(strategy, cfg.Matcher.PrefixFile)
	if err != nil {
		return nil, err
	}

	poolCfg := executor.DefaultConfig().
		WithWorkers(cfg.Executor.Workers).
		WithQueueSize(cfg.Executor.QueueSize).
		WithGracePeriod(cfg.Executor.GracePeriod()).
		WithForcePeriod(cfg.Executor.ForcePeriod())

	s := &Service{
		cfg:  cfg,
		log:  log,
		pool: executor.NewPool(poolCfg, log),
	}
	s.current.Store(&m)

	log.Info("service initialized with %d workers", s.pool.Workers())
	return s, nil
}

// buildMatcher loads the prefix file and builds a fresh, fully loaded
// matcher. The matcher is complete before it is returned, so publishing the
// result is the only synchronization readers need.
func buildMatcher(strategy matcher.Strategy, prefixFile string) (matcher.Matcher, error) {
	list, err := prefixes.LoadFile(prefixFile)
	if err != nil {
		return nil, fmt.Errorf("loading prefixes: %w", err)
	}

	m, err := matcher.New(strategy)
	if err != nil {
		return nil, err
	}
	m.Load(list)
	return m, nil
}

// matcher returns the live matcher.
func (s *Service) matcher() matcher.Matcher {
	return *s.current.Load()
}

// Match finds the longest registered prefix of input. It runs synchronously
// on the calling goroutine and never touches the worker pool. The second
// return value distinguishes "no match" from a matched empty string, which
// cannot occur but keeps the surface unambiguous.
func (s *Service) Match(input string) (string, bool) {
	return s.matcher().FindLongestMatch(input)
}

// MatchBatch evaluates every input concurrently on the worker pool and
// blocks until the whole batch completes. Inputs with no match map to
// executor.NoMatch. Cancellation or a task fault fails the entire batch.
func (s *Service) MatchBatch(ctx context.Context, inputs []string) (map[string]string, error) {
	return s.pool.MatchBatch(ctx, s.matcher(), inputs)
}

// ReloadPrefixes rebuilds the matcher from the configured prefix file and
// swaps it in atomically. On failure the previous matcher stays live.
func (s *Service) ReloadPrefixes() error {
	strategy, err := matcher.ParseStrategy(s.cfg.Matcher.Strategy)
	if err != nil {
		return err
	}
	m, err := buildMatcher(strategy, s.cfg.Matcher.PrefixFile)
	if err != nil {
		return err
	}
	s.current.Store(&m)
	s.log.Info("prefixes reloaded from %s", s.cfg.Matcher.PrefixFile)
	return nil
}

// Shutdown retires the worker pool. The host must call it exactly once
// before exit; later calls report executor.ErrPoolClosed.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.pool.Shutdown(ctx)
}
