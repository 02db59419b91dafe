package dump

import "strings"

// MatchMode selects whether the Matcher's prefix set names the paths to
// keep or the paths to drop.
type MatchMode int

const (
	Include MatchMode = iota
	Exclude
)

// Matcher answers "is path P included?" against a configured set of path
// prefixes and a mode (spec section 4.3). Grounded on
// original_source/svndumpfilter.py's MatchFiles, whose nested-dict trie this
// rebuilds as a proper component trie instead of Python's `{1: 1}` leaf
// sentinel convention.
type Matcher struct {
	mode MatchMode
	root *matchNode
}

type matchNode struct {
	children map[string]*matchNode
	terminal bool
}

func newMatchNode() *matchNode {
	return &matchNode{children: make(map[string]*matchNode)}
}

// NewMatcher builds a Matcher from a set of path prefixes and a mode. Paths
// are split on '/'; leading and trailing slashes are normalized away.
func NewMatcher(mode MatchMode, prefixes []string) *Matcher {
	m := &Matcher{mode: mode, root: newMatchNode()}
	for _, p := range prefixes {
		m.add(p)
	}
	return m
}

func (m *Matcher) add(prefix string) {
	node := m.root
	for _, component := range splitPath(prefix) {
		child, ok := node.children[component]
		if !ok {
			child = newMatchNode()
			node.children[component] = child
		}
		node = child
	}
	node.terminal = true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// matchesPrefix reports whether path's component sequence has any prefix
// (including itself) present as a terminal node in the trie.
func (m *Matcher) matchesPrefix(path string) bool {
	node := m.root
	for _, component := range splitPath(path) {
		child, ok := node.children[component]
		if !ok {
			return false
		}
		node = child
		if node.terminal {
			return true
		}
	}
	return false
}

// Empty reports whether no prefixes were configured at all (spec section 7
// ConfigError: "empty path set").
func (m *Matcher) Empty() bool {
	return len(m.root.children) == 0
}

// IsIncluded reports whether path is included under this Matcher's
// configured mode (spec section 4.3). The same predicate applies unchanged
// to copyfrom-path values.
func (m *Matcher) IsIncluded(path string) bool {
	matched := m.matchesPrefix(path)
	if m.mode == Include {
		return matched
	}
	return !matched
}
