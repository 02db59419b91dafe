package dump

import (
	"errors"
	"fmt"
	"io"
)

// Finding is one (rev, path, copyfrom-rev, copyfrom-path) tuple that would
// trigger untangling, the unit Scan Mode reports (spec section 4.11).
type Finding struct {
	Rev          int
	Path         string
	CopyFromRev  int
	CopyFromPath string
}

func (f Finding) String() string {
	return fmt.Sprintf("r%d %s <- r%d %s", f.Rev, f.Path, f.CopyFromRev, f.CopyFromPath)
}

// Scan runs the Parser and Matcher without the Emitter, reporting every
// included node whose copyfrom source is excluded or lies in a
// to-be-dropped revision (spec section 4.11). It shares the Matcher and
// RenumberMap policy with a real run so that spec section 8's property 7
// (scan/emit equivalence) holds: the same input and configuration produce
// the same findings whether or not the stream is actually emitted.
func Scan(parser *Parser, matcher *Matcher, preserveEmpty, stopRenumber bool) ([]Finding, error) {
	if matcher == nil || matcher.Empty() {
		return nil, fmt.Errorf("%w: empty path set", ErrConfig)
	}

	if err := parser.ReadPreamble(); err != nil {
		return nil, err
	}

	renumber := NewRenumberMap(preserveEmpty, stopRenumber)
	var findings []Finding

	for {
		rev, err := parser.NextRevision()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return findings, err
		}

		hadContent := false
		for parser.PeekIsNode() {
			node, err := parser.NextNode()
			if err != nil {
				return findings, fmt.Errorf("r%d: %w", rev.OriginalNumber, err)
			}
			if !matcher.IsIncluded(node.Path) {
				continue
			}
			hadContent = true
			if !node.HasCopyFrom {
				continue
			}
			if !matcher.IsIncluded(node.CopyFromPath) || renumber.WasDropped(node.CopyFromRev) {
				findings = append(findings, Finding{
					Rev: rev.OriginalNumber, Path: node.Path,
					CopyFromRev: node.CopyFromRev, CopyFromPath: node.CopyFromPath,
				})
			}
		}

		renumber.CloseRevision(rev.OriginalNumber, hadContent)
	}

	return findings, nil
}
