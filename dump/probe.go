package dump

import (
	"fmt"
	"sort"
)

// ProbeResult is what a successful RepositoryProbe.Lookup returns: the
// node's kind, its properties, and — for files — its content. Directories
// carry no content; the Untangler enumerates their descendants with
// ListDir instead.
type ProbeResult struct {
	Kind       NodeKind
	Properties *PropertyBlock
	Content    []byte // nil for directories
}

// RepositoryProbe is the sole interface the core depends on for retrieving
// content that the input dump does not itself provide (spec section 4.4).
// The core never knows or cares how an implementation gets its answers; the
// production implementation (internal/svnlook) shells out to `svnlook`, and
// tests use the in-memory FakeProbe below.
type RepositoryProbe interface {
	// Lookup returns the kind/properties/content of path as of rev. It
	// returns an error wrapping ErrProbeNotFound if the path does not exist
	// at that revision, or ErrProbe for any other failure.
	Lookup(rev int, path string) (ProbeResult, error)

	// ListDir returns the direct children of a directory path at rev, as
	// path-relative names (no slashes), for the Untangler's descendant
	// enumeration (spec section 4.7 step 4). Order is not significant; the
	// Untangler sorts lexicographically itself.
	ListDir(rev int, path string) ([]string, error)
}

// FakeProbe is an in-memory RepositoryProbe, the test fixture spec section
// 4.15/9 calls for ("one implementation for production... one for tests: an
// in-memory fixture"). Entries are addressed by (rev, path); a lookup
// returns the entry recorded at the highest revision <= rev, mirroring how a
// real repository answers "as of revision N" for a path nobody touched at
// exactly N.
type FakeProbe struct {
	entries map[string][]fakeEntry // path -> entries sorted by revision
}

type fakeEntry struct {
	rev        int
	kind       NodeKind
	properties *PropertyBlock
	content    []byte
	children   []string
}

// NewFakeProbe returns an empty FakeProbe.
func NewFakeProbe() *FakeProbe {
	return &FakeProbe{entries: make(map[string][]fakeEntry)}
}

// PutFile records a file's content/properties as of rev.
func (f *FakeProbe) PutFile(rev int, path string, content []byte, properties *PropertyBlock) {
	f.put(rev, path, fakeEntry{rev: rev, kind: NodeKindFile, properties: properties, content: content})
}

// PutDir records a directory's properties and children as of rev.
func (f *FakeProbe) PutDir(rev int, path string, properties *PropertyBlock, children []string) {
	f.put(rev, path, fakeEntry{rev: rev, kind: NodeKindDir, properties: properties, children: children})
}

func (f *FakeProbe) put(rev int, path string, e fakeEntry) {
	entries := f.entries[path]
	entries = append(entries, e)
	sort.Slice(entries, func(i, j int) bool { return entries[i].rev < entries[j].rev })
	f.entries[path] = entries
}

func (f *FakeProbe) at(rev int, path string) (fakeEntry, bool) {
	entries, ok := f.entries[path]
	if !ok {
		return fakeEntry{}, false
	}
	var best fakeEntry
	found := false
	for _, e := range entries {
		if e.rev <= rev {
			best = e
			found = true
		}
	}
	return best, found
}

// Lookup implements RepositoryProbe.
func (f *FakeProbe) Lookup(rev int, path string) (ProbeResult, error) {
	e, ok := f.at(rev, path)
	if !ok {
		return ProbeResult{}, fmt.Errorf("%w: %s@%d", ErrProbeNotFound, path, rev)
	}
	props := e.properties
	if props == nil {
		props = NewPropertyBlock()
	}
	return ProbeResult{Kind: e.kind, Properties: props, Content: e.content}, nil
}

// ListDir implements RepositoryProbe.
func (f *FakeProbe) ListDir(rev int, path string) ([]string, error) {
	e, ok := f.at(rev, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s@%d", ErrProbeNotFound, path, rev)
	}
	if e.kind != NodeKindDir {
		return nil, fmt.Errorf("%w: %s@%d is not a directory", ErrProbe, path, rev)
	}
	children := append([]string(nil), e.children...)
	sort.Strings(children)
	return children, nil
}
