package dump

import (
	"fmt"
	"io"
)

// canonicalNodeOrder is the header order the Emitter imposes on synthesized
// records (spec section 4.8): length headers always last.
var canonicalNodeOrder = []string{
	NodePathHeader,
	NodeKindHeader,
	NodeActionHeader,
	NodeCopyfromRevHeader,
	NodeCopyfromPathHeader,
	TextCopySourceMd5Header,
	TextCopySourceSha1Header,
	TextContentMd5Header,
	TextContentSha1Header,
	PropContentLengthHeader,
	TextContentLengthHeader,
	ContentLengthHeader,
}

// Emitter serializes records to output bytes, byte-exact per spec section
// 4.8: it owns recomputing Content-length/Prop-content-length/
// Text-content-length from the bytes it is actually about to write, and
// appending the format's trailing blank lines. Grounded on the teacher's
// lib/encoder.go channel-fed writer goroutine, adapted to surface write
// failures as an error (ErrWrite) instead of panicking, since spec section
// 7 treats WriteError as an ordinary fatal error the Driver must report.
type Emitter struct {
	sink chan []byte
	done chan error
}

// NewEmitter starts the writer goroutine over w.
func NewEmitter(w io.Writer) *Emitter {
	e := &Emitter{
		sink: make(chan []byte, 8),
		done: make(chan error, 1),
	}

	go func() {
		var firstErr error
		for data := range e.sink {
			if firstErr != nil {
				continue
			}
			if _, err := w.Write(data); err != nil {
				firstErr = fmt.Errorf("%w: %v", ErrWrite, err)
			}
		}
		e.done <- firstErr
	}()

	return e
}

// Close stops accepting writes and returns the first write error
// encountered, if any.
func (e *Emitter) Close() error {
	close(e.sink)
	return <-e.done
}

func (e *Emitter) write(data []byte) {
	e.sink <- data
}

// WritePreamble emits the dump's Format/UUID header records.
func (e *Emitter) WritePreamble(version int, uuid string) {
	e.write([]byte(fmt.Sprintf("%s: %d\n\n", VersionHeader, version)))
	if uuid != "" {
		e.write([]byte(fmt.Sprintf("%s: %s\n\n", UUIDHeader, uuid)))
	}
}

// WriteRevision emits a Revision record: its headers (Prop-content-length
// and Content-length recomputed from the actual property bytes), its
// property block, and the terminating blank line.
func (e *Emitter) WriteRevision(rev *Revision) {
	props := rev.Properties
	if props == nil {
		props = NewPropertyBlock()
	}
	propBytes := props.Serialize()

	h := rev.Headers
	h.Set(PropContentLengthHeader, fmt.Sprintf("%d", len(propBytes)))
	h.Set(ContentLengthHeader, fmt.Sprintf("%d", len(propBytes)))

	e.writeHeaderBlock(h)
	e.write(propBytes)
	e.write([]byte{'\n'})
}

// WriteNode emits a Node record. If synthesized is true, the header order
// is normalized to canonicalNodeOrder (spec section 4.8); otherwise the
// node's own recorded header order is kept.
func (e *Emitter) WriteNode(node *Node, synthesized bool) {
	h := node.Headers

	var propBytes []byte
	if node.Properties != nil {
		propBytes = node.Properties.Serialize()
		h.Set(PropContentLengthHeader, fmt.Sprintf("%d", len(propBytes)))
	} else {
		h.Remove(PropContentLengthHeader)
	}

	hasText := node.Content != nil
	if hasText {
		h.Set(TextContentLengthHeader, fmt.Sprintf("%d", len(node.Content)))
	} else {
		h.Remove(TextContentLengthHeader)
	}

	hasBody := node.Properties != nil || hasText
	if hasBody {
		contentLen := len(propBytes) + len(node.Content)
		h.Set(ContentLengthHeader, fmt.Sprintf("%d", contentLen))
	} else {
		h.Remove(ContentLengthHeader)
	}

	if synthesized {
		h.Reorder(canonicalNodeOrder)
	}

	e.writeHeaderBlock(h)

	if !hasBody {
		return
	}

	e.write(propBytes)
	if hasText {
		e.write(node.Content)
	}
	e.write([]byte{'\n', '\n'})
}

func (e *Emitter) writeHeaderBlock(h *Headers) {
	buf := make([]byte, 0, h.Len()*48)
	for _, key := range h.Keys() {
		value, _ := h.Get(key)
		buf = append(buf, key...)
		buf = append(buf, ':', ' ')
		buf = append(buf, value...)
		buf = append(buf, '\n')
	}
	buf = append(buf, '\n')
	e.write(buf)
}
