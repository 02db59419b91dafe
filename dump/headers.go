package dump

import "fmt"

// Headers is an ordered RFC-822-style collection: an index preserving
// insertion order alongside a map for lookup, the same shape as the
// teacher's lib/headers.go, generalized so synthetic records can request the
// canonical emission order from spec section 4.8.
type Headers struct {
	index []string
	table map[string]string
}

// NewHeaders returns an empty, ordered header list.
func NewHeaders() *Headers {
	return &Headers{table: make(map[string]string)}
}

// Has reports whether key is present.
func (h *Headers) Has(key string) bool {
	_, ok := h.table[key]
	return ok
}

// Get returns the value for key and whether it was present.
func (h *Headers) Get(key string) (string, bool) {
	v, ok := h.table[key]
	return v, ok
}

// Int returns the value for key parsed as a decimal integer.
func (h *Headers) Int(key string) (int, error) {
	value, ok := h.table[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return 0, fmt.Errorf("%w: %s: %s", ErrMalformedHeader, key, value)
	}
	return n, nil
}

// Set assigns key to value, appending it to the order if new.
func (h *Headers) Set(key, value string) {
	if _, ok := h.table[key]; !ok {
		h.index = append(h.index, key)
	}
	h.table[key] = value
}

// Remove deletes key, if present.
func (h *Headers) Remove(key string) {
	if _, ok := h.table[key]; !ok {
		return
	}
	delete(h.table, key)
	for i, k := range h.index {
		if k == key {
			h.index = append(h.index[:i], h.index[i+1:]...)
			break
		}
	}
}

// Keys returns the headers in their current order.
func (h *Headers) Keys() []string {
	return h.index
}

// Len returns the number of headers present.
func (h *Headers) Len() int {
	return len(h.index)
}

// Clone returns a deep copy, used when synthesizing a record derived from
// an existing one.
func (h *Headers) Clone() *Headers {
	clone := &Headers{
		index: append([]string(nil), h.index...),
		table: make(map[string]string, len(h.table)),
	}
	for k, v := range h.table {
		clone.table[k] = v
	}
	return clone
}

// Reorder rearranges the header index to match canonicalOrder: headers named
// in canonicalOrder are emitted in that order (skipping any absent), and any
// header NOT named in canonicalOrder keeps its relative position before
// them. This implements the synthetic-record canonical order from spec
// section 4.8, where length headers always come last.
func (h *Headers) Reorder(canonicalOrder []string) {
	inCanonical := make(map[string]bool, len(canonicalOrder))
	for _, k := range canonicalOrder {
		inCanonical[k] = true
	}

	var rest []string
	for _, k := range h.index {
		if !inCanonical[k] {
			rest = append(rest, k)
		}
	}

	var ordered []string
	for _, k := range rest {
		ordered = append(ordered, k)
	}
	for _, k := range canonicalOrder {
		if _, ok := h.table[k]; ok {
			ordered = append(ordered, k)
		}
	}
	h.index = ordered
}
