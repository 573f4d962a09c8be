// Package matcher defines the prefix matching capability contract and the
// factory that selects among matching strategies.
package matcher

import "fmt"

// Matcher is the contract for a longest-prefix-match strategy.
//
// Load must complete before the first call to FindLongestMatch; after that
// the matcher is read-only and safe for concurrent use. Implementations do
// not synchronize Load against lookups.
type Matcher interface {
	// Load registers the given prefixes. Loading the same prefixes again
	// is idempotent.
	Load(prefixes []string)

	// FindLongestMatch returns the longest registered prefix that matches
	// the start of input, and whether any match was found.
	FindLongestMatch(input string) (string, bool)
}

// Strategy identifies a matching strategy implementation. The set of
// strategies is closed; adding one means adding a variant here, not
// changing callers.
type Strategy string

// Known strategies.
const (
	// StrategyTrie matches using a character prefix tree.
	StrategyTrie Strategy = "trie"
)

// ParseStrategy normalizes a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyTrie:
		return StrategyTrie, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}
