package dump

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parser turns a Reader's bytes into a lazy, finite, non-restartable sequence
// of dump records (spec section 4.2): first the Format/UUID preamble, then
// an alternating stream of Revision and Node records. Grounded on the
// teacher's lib/headers.go (NewHeaders) and lib/revision.go/lib/node.go
// (field extraction order), restructured into an explicit pull-based state
// machine — ReadPreamble once, then NextRevision/NextNode in a loop — so the
// Driver can hold exactly one revision's nodes in memory at a time instead
// of the teacher's whole-file Tree.
type Parser struct {
	r *Reader

	Version int
	UUID    string
}

// NewParser constructs a Parser over r. Call ReadPreamble before the first
// NextRevision.
func NewParser(r *Reader) *Parser {
	return &Parser{r: r}
}

// ReadPreamble consumes the "SVN-fs-dump-format-version: N" line and the
// optional "UUID: X" line that open every dump stream (spec section 4.2
// START/AFTER_FORMAT states), and rejects a version this core does not
// understand (spec section 4.19).
func (p *Parser) ReadPreamble() error {
	value, ok := p.r.LineAfter(VersionHeader + ": ")
	if !ok {
		return fmt.Errorf("%w: expected %s header", ErrMalformedHeader, VersionHeader)
	}
	version, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: invalid %s value %q", ErrMalformedHeader, VersionHeader, value)
	}
	if version < MinFormatVersion || version > MaxFormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedFormatVersion, version)
	}
	p.Version = version
	p.skipBlankLines()

	if value, ok := p.r.LineAfter(UUIDHeader + ": "); ok {
		p.UUID = value
		p.skipBlankLines()
	}

	return nil
}

func (p *Parser) skipBlankLines() {
	for p.r.Newline() {
	}
}

// AtEnd reports whether the stream has no more records.
func (p *Parser) AtEnd() bool {
	return p.r.AtEOF()
}

// PeekIsNode reports whether the next record, if any, is a Node record
// rather than a Revision record. The Driver uses this to know when the
// current revision's node sequence ends (spec section 4.9 step 2).
func (p *Parser) PeekIsNode() bool {
	return p.r.HasPrefix(NodePathHeader + ":")
}

// readHeaderBlock reads "Key: Value" lines up to and including the block's
// terminating blank line (spec section 4.2 header-block rule).
func (p *Parser) readHeaderBlock() (*Headers, error) {
	h := NewHeaders()
	for {
		line, err := p.r.ReadLine()
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			return h, nil
		}
		key, value, err := splitHeaderLine(line)
		if err != nil {
			return nil, err
		}
		h.Set(key, value)
	}
}

func splitHeaderLine(line []byte) (key, value string, err error) {
	for i, b := range line {
		if b == ':' {
			rest := line[i+1:]
			if len(rest) > 0 && rest[0] == ' ' {
				rest = rest[1:]
			}
			return string(line[:i]), string(rest), nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrMalformedHeader, line)
}

// readBody reads the property block and text block named by h's
// Prop-content-length/Text-content-length headers, if present, and consumes
// the terminating blank line(s) that follow the body. Delete nodes and
// header-only revisions (neither header present) have no body to read.
func (p *Parser) readBody(h *Headers) (props *PropertyBlock, text []byte, err error) {
	hasProps := h.Has(PropContentLengthHeader)
	hasText := h.Has(TextContentLengthHeader)

	if hasProps {
		propLen, err := h.Int(PropContentLengthHeader)
		if err != nil {
			return nil, nil, err
		}
		raw, err := p.r.ReadExact(propLen)
		if err != nil {
			return nil, nil, fmt.Errorf("property block: %w", err)
		}
		props, err = ParsePropertyBlock(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("property block: %w", err)
		}
	}

	if hasText {
		textLen, err := h.Int(TextContentLengthHeader)
		if err != nil {
			return nil, nil, err
		}
		text, err = p.r.ReadExact(textLen)
		if err != nil {
			return nil, nil, fmt.Errorf("text block: %w", err)
		}
	}

	if hasProps || hasText {
		if !p.r.Newline() && !p.r.AtEOF() {
			return nil, nil, fmt.Errorf("%w: missing newline after record body", ErrTruncatedBody)
		}
	}
	p.skipBlankLines()

	return props, text, nil
}

// NextRevision parses the next Revision record and its own property block.
// Returns io.EOF once the stream is exhausted.
func (p *Parser) NextRevision() (*Revision, error) {
	if p.r.AtEOF() {
		return nil, io.EOF
	}

	headers, err := p.readHeaderBlock()
	if err != nil {
		return nil, err
	}
	if !headers.Has(RevisionNumberHeader) {
		return nil, fmt.Errorf("%w: expected %s", ErrUnexpectedRecord, RevisionNumberHeader)
	}
	num, err := headers.Int(RevisionNumberHeader)
	if err != nil {
		return nil, err
	}

	props, _, err := p.readBody(headers)
	if err != nil {
		return nil, fmt.Errorf("r%d: %w", num, err)
	}
	if props == nil {
		props = NewPropertyBlock()
	}

	return &Revision{
		Headers:        headers,
		Properties:     props,
		OriginalNumber: num,
	}, nil
}

// NextNode parses the next Node record, if the upcoming record is one (use
// PeekIsNode to check first). Returns an error if called when the next
// record is not a Node.
func (p *Parser) NextNode() (*Node, error) {
	headers, err := p.readHeaderBlock()
	if err != nil {
		return nil, err
	}
	path, ok := headers.Get(NodePathHeader)
	if !ok {
		return nil, fmt.Errorf("%w: expected %s", ErrUnexpectedRecord, NodePathHeader)
	}

	node := &Node{Headers: headers, Path: path}

	if kindStr, ok := headers.Get(NodeKindHeader); ok {
		if node.Kind, err = GetNodeKind(kindStr); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	actionStr, ok := headers.Get(NodeActionHeader)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrMissingField, NodeActionHeader)
	}
	if node.Action, err = GetNodeAction(actionStr); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if node.Action != NodeActionDelete && node.Kind == nil {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrMissingField, NodeKindHeader)
	}

	if fromRevStr, ok := headers.Get(NodeCopyfromRevHeader); ok {
		fromPath, ok := headers.Get(NodeCopyfromPathHeader)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s", path, ErrMissingField, NodeCopyfromPathHeader)
		}
		fromRev, err := strconv.Atoi(fromRevStr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %s", path, ErrMalformedHeader, NodeCopyfromRevHeader)
		}
		node.HasCopyFrom = true
		node.CopyFromRev = fromRev
		node.CopyFromPath = fromPath
	}

	props, text, err := p.readBody(headers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	node.Properties = props
	node.Content = text

	return node, nil
}
