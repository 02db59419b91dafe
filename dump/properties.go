package dump

import (
	"bytes"
	"fmt"
	"strconv"
)

// PropEntry is one entry of a property block: a key/value pair, or a
// tombstone (format-3 deletion, Value == nil && Delete == true).
type PropEntry struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// PropertyBlock is an ordered sequence of property entries. Order is
// significant for byte-exact output (spec section 3). Grounded on the
// teacher's lib/properties.go (sized K/V reads, PROPS-END sentinel),
// generalized from an unordered map to an ordered slice, and on
// original_source/svndumpfilter.py's Record._extract_properties /
// _write_properties for the format-3 D-entry shape.
type PropertyBlock struct {
	Entries []PropEntry
}

// NewPropertyBlock returns an empty property block.
func NewPropertyBlock() *PropertyBlock {
	return &PropertyBlock{}
}

// ParsePropertyBlock parses exactly data (the Prop-content-length bytes
// following a record's header block) into a PropertyBlock.
func ParsePropertyBlock(data []byte) (*PropertyBlock, error) {
	pb := NewPropertyBlock()
	r := dataReader(data)

	for {
		if r.hasPrefix(PropsEnd) {
			return pb, nil
		}

		tag, size, err := r.readSizedHeader()
		if err != nil {
			return nil, err
		}

		switch tag {
		case 'K':
			key, err := r.readSizedValue(size)
			if err != nil {
				return nil, fmt.Errorf("property key: %w", err)
			}
			_, vsize, err := r.readSizedHeaderExpect('V')
			if err != nil {
				return nil, err
			}
			value, err := r.readSizedValue(vsize)
			if err != nil {
				return nil, fmt.Errorf("property value: %w", err)
			}
			pb.Entries = append(pb.Entries, PropEntry{Key: key, Value: value})
		case 'D':
			key, err := r.readSizedValue(size)
			if err != nil {
				return nil, fmt.Errorf("property deletion key: %w", err)
			}
			pb.Entries = append(pb.Entries, PropEntry{Key: key, Delete: true})
		default:
			return nil, fmt.Errorf("%w: unexpected property tag %q", ErrMalformedHeader, tag)
		}
	}
}

// tiny cursor used only while parsing a self-contained property block;
// distinct from the stream-wide Reader since it never needs mmap backing.
type propCursor struct {
	buf []byte
}

func dataReader(data []byte) *propCursor {
	return &propCursor{buf: data}
}

func (c *propCursor) hasPrefix(s string) bool {
	return bytes.HasPrefix(c.buf, []byte(s))
}

func (c *propCursor) readSizedHeader() (tag byte, size int, err error) {
	return c.readSizedHeaderExpect(0)
}

// readSizedHeaderExpect reads a "<tag> <size>\n" line. If want is non-zero,
// the tag must match it exactly.
func (c *propCursor) readSizedHeaderExpect(want byte) (tag byte, size int, err error) {
	nl := bytes.IndexByte(c.buf, '\n')
	if nl < 0 {
		return 0, 0, fmt.Errorf("%w: unterminated property header", ErrTruncatedBody)
	}
	line := c.buf[:nl]
	if len(line) < 3 || line[1] != ' ' {
		return 0, 0, fmt.Errorf("%w: malformed property header %q", ErrMalformedHeader, line)
	}
	tag = line[0]
	if want != 0 && tag != want {
		return 0, 0, fmt.Errorf("%w: expected %q property header, got %q", ErrMalformedHeader, want, line)
	}
	size, err = strconv.Atoi(string(line[2:]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid property length %q", ErrMalformedHeader, line[2:])
	}
	c.buf = c.buf[nl+1:]
	return tag, size, nil
}

func (c *propCursor) readSizedValue(size int) ([]byte, error) {
	if size < 0 || size > len(c.buf) {
		return nil, fmt.Errorf("%w: wanted %d property bytes, had %d", ErrTruncatedBody, size, len(c.buf))
	}
	value := c.buf[:size]
	c.buf = c.buf[size:]
	if len(c.buf) == 0 || c.buf[0] != '\n' {
		return nil, fmt.Errorf("%w: after sized property data", ErrMissingNewline)
	}
	c.buf = c.buf[1:]
	return value, nil
}

// Get returns the value for key and whether a (non-tombstone) entry exists.
func (pb *PropertyBlock) Get(key string) ([]byte, bool) {
	for _, e := range pb.Entries {
		if string(e.Key) == key && !e.Delete {
			return e.Value, true
		}
	}
	return nil, false
}

// Set adds or replaces the entry for key, preserving its original position
// if it already existed, else appending.
func (pb *PropertyBlock) Set(key, value []byte) {
	for i, e := range pb.Entries {
		if string(e.Key) == string(key) {
			pb.Entries[i] = PropEntry{Key: e.Key, Value: value}
			return
		}
	}
	pb.Entries = append(pb.Entries, PropEntry{Key: key, Value: value})
}

// Remove deletes the entry for key, if present. Returns whether anything was
// removed.
func (pb *PropertyBlock) Remove(key string) bool {
	for i, e := range pb.Entries {
		if string(e.Key) == key {
			pb.Entries = append(pb.Entries[:i], pb.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// StripMergeinfo removes the svn:mergeinfo entry, if present, for the -x
// flag (spec section 4.10). Returns whether it was present.
func (pb *PropertyBlock) StripMergeinfo() bool {
	return pb.Remove("svn:mergeinfo")
}

// HasMarker reports whether the marker property is already present.
func (pb *PropertyBlock) HasMarker() bool {
	v, ok := pb.Get(MarkerPropertyKey)
	return ok && string(v) == MarkerPropertyValue
}

// AddMarker appends the svndumpfilter-generated marker property (spec
// section 4.10/6), unless already present.
func (pb *PropertyBlock) AddMarker() {
	if pb.HasMarker() {
		return
	}
	pb.Entries = append(pb.Entries, PropEntry{Key: []byte(MarkerPropertyKey), Value: []byte(MarkerPropertyValue)})
}

// MergeFrom merges entries from src into pb: pb's own entries win on key
// collision (spec section 4.7 step 3 — "node's own explicit property deltas
// win over retrieved properties"), src's remaining entries are appended in
// their original order.
func (pb *PropertyBlock) MergeFrom(src *PropertyBlock) {
	if src == nil {
		return
	}
	for _, e := range src.Entries {
		if _, present := pb.Get(string(e.Key)); present {
			continue
		}
		pb.Entries = append(pb.Entries, e)
	}
}

// Clone returns a deep copy.
func (pb *PropertyBlock) Clone() *PropertyBlock {
	clone := &PropertyBlock{Entries: make([]PropEntry, len(pb.Entries))}
	for i, e := range pb.Entries {
		clone.Entries[i] = PropEntry{
			Key:    append([]byte(nil), e.Key...),
			Value:  append([]byte(nil), e.Value...),
			Delete: e.Delete,
		}
	}
	return clone
}

// Serialize renders the property block to its canonical on-disk bytes,
// including the terminating PROPS-END line.
func (pb *PropertyBlock) Serialize() []byte {
	var buf bytes.Buffer
	for _, e := range pb.Entries {
		if e.Delete {
			fmt.Fprintf(&buf, "D %d\n", len(e.Key))
			buf.Write(e.Key)
			buf.WriteByte('\n')
			continue
		}
		fmt.Fprintf(&buf, "K %d\n", len(e.Key))
		buf.Write(e.Key)
		buf.WriteByte('\n')
		fmt.Fprintf(&buf, "V %d\n", len(e.Value))
		buf.Write(e.Value)
		buf.WriteByte('\n')
	}
	buf.WriteString(PropsEnd)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// SerializedLength returns the byte length of Serialize()'s output, the
// value a Prop-content-length header must carry (spec section 3).
func (pb *PropertyBlock) SerializedLength() int {
	return len(pb.Serialize())
}
