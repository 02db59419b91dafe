package dump

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Untangler rewrites a node whose copyfrom source is not addressable in the
// output — because the source path is excluded, or its source revision was
// dropped by renumbering — into one or more self-contained `add` records
// with content pulled from the live repository (spec section 4.7). Grounded
// on original_source/svndumpfilter.py's handle_exclude_to_include /
// handle_missing_file / handle_missing_directory, restructured around the
// RepositoryProbe interface instead of shelling out inline.
type Untangler struct {
	probe RepositoryProbe
}

// NewUntangler constructs an Untangler backed by probe.
func NewUntangler(probe RepositoryProbe) *Untangler {
	return &Untangler{probe: probe}
}

// UntangleError reports an untangling failure with full (src, triggering)
// context (spec section 4.7 "Untangler failure modes").
type UntangleError struct {
	Err            error
	SourceRev      int
	SourcePath     string
	TriggeringRev  int
	TriggeringPath string
}

func (e *UntangleError) Error() string {
	return fmt.Sprintf("untangle %s@%d (triggered by %s@%d): %v",
		e.SourcePath, e.SourceRev, e.TriggeringPath, e.TriggeringRev, e.Err)
}

func (e *UntangleError) Unwrap() error { return e.Err }

// wrapProbeLookupError substitutes ErrMissingUntangleSource for the
// not-found case, so callers can distinguish "source doesn't exist" from
// any other probe failure via errors.Is, while still chaining through to
// the underlying ErrProbeNotFound/ErrProbe sentinel (spec section 7).
func wrapProbeLookupError(err error) error {
	if errors.Is(err, ErrProbeNotFound) {
		return fmt.Errorf("%w: %w", ErrMissingUntangleSource, err)
	}
	return err
}

// Untangle resolves node (whose copyfrom target is not usable in the
// output) into the sequence of records that should be emitted in its place:
// one `add file` for a file source, or an `add dir` plus its descendants
// for a directory source, depth-first in lexicographic order (spec section
// 4.7 steps 3-5). triggeringRev is the node's own (input) revision, used
// only for error reporting.
func (u *Untangler) Untangle(node *Node, triggeringRev int) ([]*Node, error) {
	srcRev, srcPath := node.CopyFromRev, node.CopyFromPath

	result, err := u.probe.Lookup(srcRev, srcPath)
	if err != nil {
		return nil, &UntangleError{
			Err: wrapProbeLookupError(err), SourceRev: srcRev, SourcePath: srcPath,
			TriggeringRev: triggeringRev, TriggeringPath: node.Path,
		}
	}

	if result.Kind == NodeKindFile {
		rewritten := u.rewriteAsAdd(node, NodeKindFile, result.Content, result.Properties)
		return []*Node{rewritten}, nil
	}

	root := u.rewriteAsAdd(node, NodeKindDir, nil, result.Properties)
	descendants, err := u.enumerateDir(srcRev, srcPath, node.Path)
	if err != nil {
		return nil, &UntangleError{
			Err: wrapProbeLookupError(err), SourceRev: srcRev, SourcePath: srcPath,
			TriggeringRev: triggeringRev, TriggeringPath: node.Path,
		}
	}

	out := make([]*Node, 0, 1+len(descendants))
	out = append(out, root)
	out = append(out, descendants...)
	return out, nil
}

// rewriteAsAdd turns node into a self-contained add of kind, with content
// inlined and copyfrom headers stripped (spec section 4.7 step 3/5).
// The node's own explicit property deltas win over the retrieved ones on
// key collision.
func (u *Untangler) rewriteAsAdd(node *Node, kind NodeKind, content []byte, retrieved *PropertyBlock) *Node {
	headers := node.Headers.Clone()
	headers.Set(NodeActionHeader, NodeActionAdd.String())
	headers.Set(NodeKindHeader, kind.String())
	headers.Remove(NodeCopyfromRevHeader)
	headers.Remove(NodeCopyfromPathHeader)
	headers.Remove(TextCopySourceMd5Header)
	headers.Remove(TextCopySourceSha1Header)

	// The source's own headers describe content that no longer has
	// anything to do with what is being written; recompute against the
	// retrieved bytes if a hash was asked for, rather than carry stale
	// values (spec section 4.7 step 3 / section 4.8).
	if kind == NodeKindFile {
		if headers.Has(TextContentMd5Header) {
			sum := md5.Sum(content)
			headers.Set(TextContentMd5Header, hex.EncodeToString(sum[:]))
		}
		if headers.Has(TextContentSha1Header) {
			sum := sha1.Sum(content)
			headers.Set(TextContentSha1Header, hex.EncodeToString(sum[:]))
		}
	} else {
		headers.Remove(TextContentMd5Header)
		headers.Remove(TextContentSha1Header)
	}

	props := NewPropertyBlock()
	if node.Properties != nil {
		props = node.Properties.Clone()
	}
	props.MergeFrom(retrieved)
	props.AddMarker()

	return &Node{
		Headers:    headers,
		Path:       node.Path,
		Kind:       kind,
		Action:     NodeActionAdd,
		Properties: props,
		Content:    content,
	}
}

// enumerateDir walks srcPath's descendants in the live repository at
// srcRev, depth-first in lexicographic order, emitting an `add file` or
// `add dir` for each with its destination path rebased under destRoot
// (spec section 4.7 step 4).
func (u *Untangler) enumerateDir(srcRev int, srcPath, destRoot string) ([]*Node, error) {
	children, err := u.probe.ListDir(srcRev, srcPath)
	if err != nil {
		return nil, err
	}
	sort.Strings(children)

	var out []*Node
	for _, name := range children {
		childSrc := strings.TrimSuffix(srcPath, "/") + "/" + name
		childDest := path.Join(destRoot, name)

		result, err := u.probe.Lookup(srcRev, childSrc)
		if err != nil {
			return nil, err
		}

		headers := NewHeaders()
		headers.Set(NodePathHeader, childDest)
		headers.Set(NodeKindHeader, result.Kind.String())
		headers.Set(NodeActionHeader, NodeActionAdd.String())

		props := NewPropertyBlock()
		props.MergeFrom(result.Properties)
		props.AddMarker()

		node := &Node{
			Headers:    headers,
			Path:       childDest,
			Kind:       result.Kind,
			Action:     NodeActionAdd,
			Properties: props,
			Content:    result.Content,
		}
		out = append(out, node)

		if result.Kind == NodeKindDir {
			nested, err := u.enumerateDir(srcRev, childSrc, childDest)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
	}
	return out, nil
}
