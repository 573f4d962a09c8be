package trie

import (
	"sync"
	"testing"
)

// fixturePrefixes is the shared prefix set used across lookup tests.
var fixturePrefixes = []string{
	"a", "app", "apple", "application", "bat", "batter", "tru", "true", "foo",
}

func newLoadedTrie(t *testing.T, prefixes []string) *Trie {
	t.Helper()
	tr := New()
	tr.Load(prefixes)
	return tr
}

func TestTrie_FindLongestMatch(t *testing.T) {
	tr := newLoadedTrie(t, fixturePrefixes)

	tests := []struct {
		name      string
		input     string
		want      string
		wantFound bool
	}{
		{"longest of nested set", "application_server", "application", true},
		{"divergent tail", "truc", "tru", true},
		{"halts at separator", "applx_test", "app", true},
		{"no edge from root", "zebra", "", false},
		{"empty input", "", "", false},
		{"valid path short of terminal", "fo", "", false},
		{"exact match", "true", "true", true},
		{"nested shorter wins on divergence", "appliance", "app", true},
		{"nested longer wins when reached", "applepie", "apple", true},
		{"partial between terminals", "appl", "app", true},
		{"single char prefix", "amber", "a", true},
		{"longer stored than input", "batte", "bat", true},
		{"input equals longest stored", "batter", "batter", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := tr.FindLongestMatch(tt.input)
			if got != tt.want || found != tt.wantFound {
				t.Errorf("FindLongestMatch(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, found, tt.want, tt.wantFound)
			}
		})
	}
}

func TestTrie_LoadTruncatesOnRejectedCharacter(t *testing.T) {
	// A non-alphanumeric character stops insertion without marking the
	// partial path terminal, and lookups halt at the same character.
	tr := newLoadedTrie(t, []string{"foo-bar", "foo"})

	got, found := tr.FindLongestMatch("foo-bar-baz")
	if !found || got != "foo" {
		t.Errorf("FindLongestMatch(%q) = (%q, %v), want (%q, true)",
			"foo-bar-baz", got, found, "foo")
	}

	// "ab-c" truncates to the path "ab" with no terminal mark at all.
	tr = newLoadedTrie(t, []string{"ab-c"})
	if got, found := tr.FindLongestMatch("abc"); found {
		t.Errorf("FindLongestMatch(%q) = (%q, true), want no match", "abc", got)
	}
	if tr.Size() != 0 {
		t.Errorf("Size() = %d after truncated-only load, want 0", tr.Size())
	}
}

func TestTrie_CaseSensitive(t *testing.T) {
	tr := newLoadedTrie(t, []string{"foo"})

	if got, found := tr.FindLongestMatch("Foo"); found {
		t.Errorf("FindLongestMatch(%q) = (%q, true), want no match", "Foo", got)
	}
	if got, found := tr.FindLongestMatch("FOOBAR"); found {
		t.Errorf("FindLongestMatch(%q) = (%q, true), want no match", "FOOBAR", got)
	}
}

func TestTrie_EmptyPrefixNeverMatches(t *testing.T) {
	tr := newLoadedTrie(t, []string{"", "a"})

	if got, found := tr.FindLongestMatch("zebra"); found {
		t.Errorf("FindLongestMatch(%q) = (%q, true), want no match", "zebra", got)
	}
	if tr.Size() != 1 {
		t.Errorf("Size() = %d, want 1", tr.Size())
	}
}

func TestTrie_IdempotentLoad(t *testing.T) {
	once := newLoadedTrie(t, fixturePrefixes)
	twice := newLoadedTrie(t, fixturePrefixes)
	twice.Load(fixturePrefixes)

	if got, want := twice.Size(), once.Size(); got != want {
		t.Errorf("Size() after double load = %d, want %d", got, want)
	}
	if got, want := twice.NodeCount(), once.NodeCount(); got != want {
		t.Errorf("NodeCount() after double load = %d, want %d", got, want)
	}

	inputs := []string{"application_server", "truc", "applx_test", "zebra", "", "batter"}
	for _, in := range inputs {
		g1, f1 := once.FindLongestMatch(in)
		g2, f2 := twice.FindLongestMatch(in)
		if g1 != g2 || f1 != f2 {
			t.Errorf("lookup %q diverged after rebuild: (%q, %v) vs (%q, %v)",
				in, g1, f1, g2, f2)
		}
	}
}

func TestTrie_Size(t *testing.T) {
	tr := newLoadedTrie(t, fixturePrefixes)
	if got := tr.Size(); got != len(fixturePrefixes) {
		t.Errorf("Size() = %d, want %d", got, len(fixturePrefixes))
	}
}

func TestTrie_ConcurrentLookups(t *testing.T) {
	tr := newLoadedTrie(t, fixturePrefixes)

	const goroutines = 32
	var wg sync.WaitGroup
	results := make([]string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			got, _ := tr.FindLongestMatch("application_server")
			results[slot] = got
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != "application" {
			t.Errorf("goroutine %d got %q, want %q", i, got, "application")
		}
	}
}

func BenchmarkTrie_FindLongestMatch(b *testing.B) {
	tr := New()
	tr.Load(fixturePrefixes)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.FindLongestMatch("application_server")
	}
}
