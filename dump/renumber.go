package dump

import "fmt"

// RenumberMap maintains the monotonic mapping from input revision numbers
// to output revision numbers (spec section 3 "Renumber Map", section 4.5).
// Grounded on original_source/svndumpfilter.py's rev_map/renum_rev/orig_rev
// bookkeeping, reshaped into an explicit type instead of three parallel
// module-level dicts.
type RenumberMap struct {
	preserveEmpty bool
	stopRenumber  bool

	nextOutput int
	lastOutput int // output rev a dropped revision's copyfrom should resolve to
	haveOutput bool

	toOutput map[int]int  // input rev -> resolved output rev (emitted or fallback)
	dropped  map[int]bool // input rev -> true if it was dropped rather than emitted
}

// NewRenumberMap constructs a RenumberMap honoring the -k (preserveEmpty)
// and -s (stopRenumber) policies (spec section 4.5).
func NewRenumberMap(preserveEmpty, stopRenumber bool) *RenumberMap {
	return &RenumberMap{
		preserveEmpty: preserveEmpty,
		stopRenumber:  stopRenumber,
		nextOutput:    1,
		toOutput:      make(map[int]int),
		dropped:       make(map[int]bool),
	}
}

// OpenRevision returns the output revision number input_rev WOULD receive if
// it is kept. The assignment is provisional until CloseRevision commits it.
func (m *RenumberMap) OpenRevision(inputRev int) int {
	if m.stopRenumber {
		return inputRev
	}
	return m.nextOutput
}

// CloseRevision commits the revision's fate: hadContent is whether any node
// was buffered for emission, or the revision should be preserved anyway
// under -k. Returns the final output revision number and whether the
// revision is emitted at all.
func (m *RenumberMap) CloseRevision(inputRev int, hadContent bool) (outputRev int, emit bool) {
	keep := hadContent || m.preserveEmpty || m.stopRenumber

	if !keep {
		// Dropped: copyfrom lookups against this input revision resolve to
		// whatever output revision preceded it.
		m.dropped[inputRev] = true
		if m.haveOutput {
			m.toOutput[inputRev] = m.lastOutput
		}
		return 0, false
	}

	outputRev = m.OpenRevision(inputRev)
	m.toOutput[inputRev] = outputRev
	m.lastOutput = outputRev
	m.haveOutput = true
	if !m.stopRenumber {
		m.nextOutput = outputRev + 1
	} else if outputRev+1 > m.nextOutput {
		m.nextOutput = outputRev + 1
	}
	return outputRev, true
}

// TranslateCopyfrom resolves an input revision referenced by a
// Node-copyfrom-rev header to its output revision number. Returns
// ErrInvalidCopyfromRev if inputRev was dropped and nothing precedes it.
func (m *RenumberMap) TranslateCopyfrom(inputRev int) (int, error) {
	if m.stopRenumber {
		return inputRev, nil
	}
	outputRev, ok := m.toOutput[inputRev]
	if !ok {
		return 0, fmt.Errorf("%w: r%d", ErrInvalidCopyfromRev, inputRev)
	}
	return outputRev, nil
}

// WasDropped reports whether inputRev was dropped rather than emitted as its
// own revision — used by the Driver and Scan to decide whether a copyfrom source
// that IS included still needs untangling because its revision vanished
// (spec section 4.7, last paragraph before "Untangler failure modes"). A
// revision not yet closed is reported as not dropped, since its fate isn't
// decided until CloseRevision runs (the Driver only asks about earlier,
// already-closed revisions).
func (m *RenumberMap) WasDropped(inputRev int) bool {
	return m.dropped[inputRev]
}
