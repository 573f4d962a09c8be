package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dhowes/lpmatch/internal/matcher"
)

var testPrefixes = []string{
	"a", "app", "apple", "application", "bat", "batter", "tru", "true", "foo",
}

func newTestMatcher(t *testing.T) matcher.Matcher {
	t.Helper()
	m, err := matcher.New(matcher.StrategyTrie)
	if err != nil {
		t.Fatalf("matcher.New: %v", err)
	}
	m.Load(testPrefixes)
	return m
}

func newTestPool(t *testing.T, cfg Config) *Pool {
	t.Helper()
	p := NewPool(cfg, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	})
	return p
}

// blockingMatcher parks every lookup until release is closed.
type blockingMatcher struct {
	release chan struct{}
}

func (m *blockingMatcher) Load([]string) {}

func (m *blockingMatcher) FindLongestMatch(string) (string, bool) {
	<-m.release
	return "", false
}

// panicMatcher panics on every lookup.
type panicMatcher struct{}

func (panicMatcher) Load([]string) {}

func (panicMatcher) FindLongestMatch(string) (string, bool) {
	panic("lookup exploded")
}

func TestPool_MatchBatch(t *testing.T) {
	m := newTestMatcher(t)
	p := newTestPool(t, DefaultConfig().WithWorkers(4))

	inputs := []string{"application_server", "truc", "applx_test", "zebra", ""}
	want := map[string]string{
		"application_server": "application",
		"truc":               "tru",
		"applx_test":         "app",
		"zebra":              NoMatch,
		"":                   NoMatch,
	}

	got, err := p.MatchBatch(context.Background(), m, inputs)
	if err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for input, wantMatch := range want {
		if got[input] != wantMatch {
			t.Errorf("result[%q] = %q, want %q", input, got[input], wantMatch)
		}
	}
}

func TestPool_MatchBatchAgreesWithSingleLookups(t *testing.T) {
	m := newTestMatcher(t)
	p := newTestPool(t, DefaultConfig().WithWorkers(8))

	inputs := []string{
		"application_server", "truc", "applx_test", "zebra", "appl",
		"applepie", "appliance", "true", "batter", "fo", "foodcourt",
	}

	got, err := p.MatchBatch(context.Background(), m, inputs)
	if err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}
	if len(got) != len(inputs) {
		t.Fatalf("got %d entries, want %d", len(got), len(inputs))
	}
	for _, input := range inputs {
		single, found := m.FindLongestMatch(input)
		want := NoMatch
		if found {
			want = single
		}
		if got[input] != want {
			t.Errorf("result[%q] = %q, single lookup gives %q", input, got[input], want)
		}
	}
}

func TestPool_MatchBatchEmpty(t *testing.T) {
	m := newTestMatcher(t)
	p := newTestPool(t, DefaultConfig().WithWorkers(2))

	got, err := p.MatchBatch(context.Background(), m, nil)
	if err != nil {
		t.Fatalf("MatchBatch(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("MatchBatch(nil) returned %d entries, want 0", len(got))
	}

	got, err = p.MatchBatch(context.Background(), m, []string{})
	if err != nil {
		t.Fatalf("MatchBatch(empty): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("MatchBatch(empty) returned %d entries, want 0", len(got))
	}
}

func TestPool_MatchBatchCollapsesDuplicates(t *testing.T) {
	m := newTestMatcher(t)
	p := newTestPool(t, DefaultConfig().WithWorkers(2))

	got, err := p.MatchBatch(context.Background(), m, []string{"truc", "truc", "truc", "zebra"})
	if err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got["truc"] != "tru" {
		t.Errorf("result[truc] = %q, want tru", got["truc"])
	}
}

func TestPool_MatchBatchCancelled(t *testing.T) {
	m := newTestMatcher(t)
	p := newTestPool(t, DefaultConfig().WithWorkers(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.MatchBatch(ctx, m, []string{"application_server", "truc"})
	if !errors.Is(err, ErrBatchCancelled) {
		t.Errorf("MatchBatch error = %v, want ErrBatchCancelled", err)
	}
}

func TestPool_MatchBatchTaskPanic(t *testing.T) {
	p := newTestPool(t, DefaultConfig().WithWorkers(2))

	_, err := p.MatchBatch(context.Background(), panicMatcher{}, []string{"boom"})
	if !errors.Is(err, ErrTaskPanic) {
		t.Errorf("MatchBatch error = %v, want ErrTaskPanic", err)
	}

	// The pool must survive a panicking batch.
	m := newTestMatcher(t)
	got, err := p.MatchBatch(context.Background(), m, []string{"truc"})
	if err != nil {
		t.Fatalf("MatchBatch after panic: %v", err)
	}
	if got["truc"] != "tru" {
		t.Errorf("result[truc] = %q, want tru", got["truc"])
	}
}

func TestPool_ShutdownClean(t *testing.T) {
	p := NewPool(DefaultConfig().WithWorkers(2), nil)

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	m, err := matcher.New(matcher.StrategyTrie)
	if err != nil {
		t.Fatalf("matcher.New: %v", err)
	}
	if _, err := p.MatchBatch(context.Background(), m, []string{"x"}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("MatchBatch after shutdown error = %v, want ErrPoolClosed", err)
	}

	if err := p.Shutdown(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("second Shutdown error = %v, want ErrPoolClosed", err)
	}
}

func TestPool_ShutdownTimesOutOnStuckWorker(t *testing.T) {
	blocker := &blockingMatcher{release: make(chan struct{})}
	defer close(blocker.release)

	cfg := DefaultConfig().
		WithWorkers(1).
		WithGracePeriod(20 * time.Millisecond).
		WithForcePeriod(20 * time.Millisecond)
	p := NewPool(cfg, nil)

	batchDone := make(chan struct{})
	go func() {
		defer close(batchDone)
		_, _ = p.MatchBatch(context.Background(), blocker, []string{"stuck"})
	}()

	// Give the worker time to pick up the blocking task.
	time.Sleep(20 * time.Millisecond)

	err := p.Shutdown(context.Background())
	if !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("Shutdown error = %v, want ErrShutdownTimeout", err)
	}

	select {
	case <-batchDone:
	case <-time.After(time.Second):
		t.Error("batch caller still blocked after forced cancellation")
	}
}

func TestPool_ShutdownCallerCancelled(t *testing.T) {
	blocker := &blockingMatcher{release: make(chan struct{})}
	defer close(blocker.release)

	cfg := DefaultConfig().
		WithWorkers(1).
		WithGracePeriod(time.Minute).
		WithForcePeriod(time.Minute)
	p := NewPool(cfg, nil)

	go func() {
		_, _ = p.MatchBatch(context.Background(), blocker, []string{"stuck"})
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := p.Shutdown(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown error = %v, want context.DeadlineExceeded", err)
	}
}

func TestPool_WorkersDefaultsToCPUs(t *testing.T) {
	p := newTestPool(t, DefaultConfig())
	if p.Workers() < 1 {
		t.Errorf("Workers() = %d, want >= 1", p.Workers())
	}
}
