package dump

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Reader is a cursor over the input dump's bytes. It maps the file read-only
// and walks it with a slice cursor, the same shape as the teacher's
// DumpReader/DumpFile pair, generalized with peek/unread so the Parser can
// look ahead at header lines without consuming them.
type Reader struct {
	data   mmap.MMap
	file   *os.File
	buffer []byte
	length int
}

// NewReaderFromFile maps path read-only and returns a Reader positioned at
// the start of the file.
func NewReaderFromFile(path string) (*Reader, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Reader{data: data, file: file, buffer: data, length: len(data)}, nil
}

// NewReader wraps an in-memory byte slice, primarily for tests.
func NewReader(source []byte) *Reader {
	return &Reader{buffer: source, length: len(source)}
}

// Close releases the mapped memory, if any.
func (r *Reader) Close() error {
	r.buffer = nil
	if r.data != nil {
		if err := r.data.Unmap(); err != nil {
			return err
		}
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Position returns the byte offset of the next unread byte relative to the
// start of the stream.
func (r *Reader) Position() int {
	return r.length - len(r.buffer)
}

// AtEOF returns true if there is no data left to read.
func (r *Reader) AtEOF() bool {
	return len(r.buffer) == 0
}

// Peek returns up to length bytes at the front of the buffer without
// consuming them.
func (r *Reader) Peek(length int) []byte {
	if length > len(r.buffer) {
		length = len(r.buffer)
	}
	return r.buffer[:length]
}

// HasPrefix reports whether the unread data begins with prefix, without
// consuming anything.
func (r *Reader) HasPrefix(prefix string) bool {
	return len(r.buffer) >= len(prefix) && string(r.buffer[:len(prefix)]) == prefix
}

// ReadLine consumes and returns one LF-terminated line, excluding the
// terminator. Fails with ErrTruncatedBody if the stream ends without a
// trailing newline.
func (r *Reader) ReadLine() (line []byte, err error) {
	if len(r.buffer) == 0 {
		return nil, fmt.Errorf("%w: at EOF", ErrTruncatedBody)
	}
	for i, b := range r.buffer {
		if b == '\n' {
			line, r.buffer = r.buffer[:i], r.buffer[i+1:]
			return line, nil
		}
	}
	return nil, fmt.Errorf("%w: unterminated line at offset %d", ErrTruncatedBody, r.Position())
}

// LineAfter checks whether the unread data begins with prefix; if so it
// consumes the whole line and returns the text following prefix, up to (but
// excluding) the terminating newline.
func (r *Reader) LineAfter(prefix string) (value string, ok bool) {
	if !r.HasPrefix(prefix) {
		return "", false
	}
	save := r.buffer
	r.buffer = r.buffer[len(prefix):]
	line, err := r.ReadLine()
	if err != nil {
		r.buffer = save
		return "", false
	}
	return string(line), true
}

// Newline consumes a single newline character at the front of the buffer,
// reporting whether one was present.
func (r *Reader) Newline() bool {
	if len(r.buffer) > 0 && r.buffer[0] == '\n' {
		r.buffer = r.buffer[1:]
		return true
	}
	return false
}

// ReadExact consumes and returns exactly length bytes, failing with
// ErrTruncatedBody if fewer remain.
func (r *Reader) ReadExact(length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrMalformedHeader, length)
	}
	if length > len(r.buffer) {
		return nil, fmt.Errorf("%w: wanted %d bytes, had %d", ErrTruncatedBody, length, len(r.buffer))
	}
	data := r.buffer[:length]
	r.buffer = r.buffer[length:]
	return data, nil
}

// Mark returns an opaque cursor that Reset can later rewind to. The Parser
// does not use it; it looks ahead with HasPrefix instead.
func (r *Reader) Mark() []byte {
	return r.buffer
}

// Reset rewinds the reader to a cursor previously returned by Mark.
func (r *Reader) Reset(mark []byte) {
	r.buffer = mark
}
