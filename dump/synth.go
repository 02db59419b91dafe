package dump

import (
	"strings"

	orderedset "github.com/emirpasic/gods/sets/linkedhashset"
)

// DirSynthesizer tracks which directories have been emitted so far and
// manufactures the synthetic `add dir` records needed before a node whose
// ancestors haven't appeared yet (spec section 4.6). The "emitted
// directories" set is process-wide and ordered, the same ordered-"seen"
// idiom reposurgeon uses its linkedhashset for, so EmittedInOrder lists
// directories in the order they were first marked (SPEC_FULL.md section
// 4.16). The --report summary does not include that listing.
type DirSynthesizer struct {
	emitted *orderedset.Set
}

// NewDirSynthesizer returns a synthesizer with no directories yet recorded.
func NewDirSynthesizer() *DirSynthesizer {
	return &DirSynthesizer{emitted: orderedset.New()}
}

// MarkEmitted records that path has now appeared as a directory in the
// output, so later calls to Dependents never resynthesize it.
func (s *DirSynthesizer) MarkEmitted(path string) {
	s.emitted.Add(path)
}

// Known reports whether path has already been emitted as a directory.
func (s *DirSynthesizer) Known(path string) bool {
	return s.emitted.Contains(path)
}

// EmittedInOrder returns the directories recorded so far, in the order they
// were first marked.
func (s *DirSynthesizer) EmittedInOrder() []string {
	values := s.emitted.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.(string)
	}
	return out
}

// Dependents returns synthetic `add dir` Node records for each ancestor of
// path that has not yet been emitted, in ancestor-to-descendant order (spec
// section 4.6). Ancestors are not checked against the Matcher, so an
// ancestor outside the included set is synthesized too. It does NOT mark them
// emitted; the caller does that once it has actually queued them for
// output, keeping this method side-effect-free for easy testing.
func (s *DirSynthesizer) Dependents(path string) []*Node {
	components := splitPath(path)
	if len(components) <= 1 {
		return nil
	}

	var dependents []*Node
	for depth := 1; depth < len(components); depth++ {
		ancestor := strings.Join(components[:depth], "/")
		if s.Known(ancestor) {
			continue
		}
		dependents = append(dependents, newSyntheticDir(ancestor))
	}
	return dependents
}

// newSyntheticDir builds a bare `add dir` Node for ancestor, carrying the
// marker property and nothing else (spec section 4.6).
func newSyntheticDir(path string) *Node {
	headers := NewHeaders()
	headers.Set(NodePathHeader, path)
	headers.Set(NodeKindHeader, NodeKindDir.String())
	headers.Set(NodeActionHeader, NodeActionAdd.String())

	props := NewPropertyBlock()
	props.AddMarker()

	return &Node{
		Headers:    headers,
		Path:       path,
		Kind:       NodeKindDir,
		Action:     NodeActionAdd,
		Properties: props,
	}
}
