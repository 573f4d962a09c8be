// Package trie implements longest-prefix matching with a character prefix
// tree.
//
// The trie follows a build-then-freeze discipline: Load mutates the tree and
// must not run concurrently with lookups, but once loading has completed the
// structure is never mutated again and FindLongestMatch is safe for any
// number of concurrent callers without locking.
package trie

import (
	"unicode"
	"unicode/utf8"
)

// node is a single trie node. Each node is owned exclusively by its parent;
// the tree has no sharing and no cycles.
type node struct {
	children map[rune]*node
	terminal bool
}

// newNode creates an empty node. Child maps are allocated lazily on first
// insert so leaf nodes stay small.
func newNode() *node {
	return &node{}
}

// child returns the child for r, or nil.
func (n *node) child(r rune) *node {
	if n.children == nil {
		return nil
	}
	return n.children[r]
}

// ensureChild returns the child for r, creating it if needed.
func (n *node) ensureChild(r rune) *node {
	if n.children == nil {
		n.children = make(map[rune]*node)
	}
	c := n.children[r]
	if c == nil {
		c = newNode()
		n.children[r] = c
	}
	return c
}

// Trie is a prefix tree keyed by alphanumeric characters. The zero value is
// not usable; call New.
type Trie struct {
	root *node
}

// New creates an empty trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// admissible reports whether r may label a trie edge. Edges are restricted
// to letters and digits, case-sensitive. The same rule applies to both load
// and lookup so every stored prefix is reachable.
func admissible(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Load inserts the given prefixes. For each prefix, characters are consumed
// left to right; a non-alphanumeric character truncates insertion at that
// point: nodes created so far remain, but no terminal mark is recorded for
// the truncated prefix. Empty prefixes are skipped so the empty string can
// never match. Duplicate prefixes re-mark an already-terminal node.
//
// Load must not run concurrently with lookups or other loads.
func (t *Trie) Load(prefixes []string) {
	for _, prefix := range prefixes {
		t.insert(prefix)
	}
}

// insert adds a single prefix, honoring the truncation rule.
func (t *Trie) insert(prefix string) {
	if prefix == "" {
		return
	}
	current := t.root
	for _, r := range prefix {
		if !admissible(r) {
			return
		}
		current = current.ensureChild(r)
	}
	current.terminal = true
}

// FindLongestMatch walks the trie along input's characters and returns the
// longest registered prefix of input, if any. The walk stops at the first
// character that is not alphanumeric or has no edge from the current node;
// the last terminal node reached on the way decides the match. Runs in
// O(len(input)) regardless of how many prefixes are stored.
func (t *Trie) FindLongestMatch(input string) (string, bool) {
	current := t.root
	var (
		best  string
		found bool
	)
	for i, r := range input {
		if !admissible(r) {
			break
		}
		next := current.child(r)
		if next == nil {
			break
		}
		current = next
		if current.terminal {
			// i indexes the first byte of r; the match includes r.
			best = input[:i+utf8.RuneLen(r)]
			found = true
		}
	}
	return best, found
}

// Size returns the number of registered prefixes (terminal nodes).
func (t *Trie) Size() int {
	return countTerminals(t.root)
}

func countTerminals(n *node) int {
	count := 0
	if n.terminal {
		count++
	}
	for _, c := range n.children {
		count += countTerminals(c)
	}
	return count
}

// NodeCount returns the total number of nodes, useful for memory analysis.
func (t *Trie) NodeCount() int {
	return countNodes(t.root)
}

func countNodes(n *node) int {
	count := 1
	for _, c := range n.children {
		count += countNodes(c)
	}
	return count
}
