package matcher

import (
	"fmt"

	"github.com/dhowes/lpmatch/internal/matcher/trie"
)

// New creates an unloaded Matcher for the given strategy.
func New(s Strategy) (Matcher, error) {
	switch s {
	case StrategyTrie:
		return trie.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}
