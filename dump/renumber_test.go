package dump

import "testing"

func TestRenumberMapDropsEmptyByDefault(t *testing.T) {
	m := NewRenumberMap(false, false)

	out, emit := m.CloseRevision(1, true)
	if !emit || out != 1 {
		t.Fatalf("r1 (has content): out=%d emit=%v, want 1 true", out, emit)
	}

	out, emit = m.CloseRevision(2, false)
	if emit {
		t.Errorf("r2 (empty, no -k): should be dropped, got out=%d emit=%v", out, emit)
	}
	if !m.WasDropped(2) {
		t.Error("r2 should be marked WasDropped")
	}

	out, emit = m.CloseRevision(3, true)
	if !emit || out != 2 {
		t.Fatalf("r3 should renumber down to fill the gap left by r2: out=%d emit=%v, want 2 true", out, emit)
	}
}

func TestRenumberMapPreserveEmpty(t *testing.T) {
	m := NewRenumberMap(true, false)

	out, emit := m.CloseRevision(1, true)
	if !emit || out != 1 {
		t.Fatalf("r1: out=%d emit=%v, want 1 true", out, emit)
	}

	out, emit = m.CloseRevision(2, false)
	if !emit || out != 2 {
		t.Fatalf("r2 (empty, -k): should be kept as its own revision: out=%d emit=%v, want 2 true", out, emit)
	}
	if m.WasDropped(2) {
		t.Error("r2 should not be WasDropped under -k")
	}
}

func TestRenumberMapStopRenumberKeepsInputNumbers(t *testing.T) {
	m := NewRenumberMap(true, true)

	out, emit := m.CloseRevision(5, true)
	if !emit || out != 5 {
		t.Fatalf("r5 with -s should keep its input number: out=%d emit=%v, want 5 true", out, emit)
	}

	out, emit = m.CloseRevision(7, true)
	if !emit || out != 7 {
		t.Fatalf("r7 with -s should keep its input number: out=%d emit=%v, want 7 true", out, emit)
	}
}

func TestRenumberMapTranslateCopyfrom(t *testing.T) {
	m := NewRenumberMap(false, false)
	m.CloseRevision(1, true)
	m.CloseRevision(2, false) // dropped, falls back to r1's output
	m.CloseRevision(3, true)  // renumbers to 2

	out, err := m.TranslateCopyfrom(3)
	if err != nil || out != 2 {
		t.Fatalf("TranslateCopyfrom(3) = %d, %v, want 2, nil", out, err)
	}

	out, err = m.TranslateCopyfrom(2)
	if err != nil || out != 1 {
		t.Fatalf("TranslateCopyfrom(2) (dropped, falls back) = %d, %v, want 1, nil", out, err)
	}
}

func TestRenumberMapTranslateCopyfromUnresolvable(t *testing.T) {
	m := NewRenumberMap(false, false)
	m.CloseRevision(1, false) // dropped before anything was ever emitted

	if _, err := m.TranslateCopyfrom(1); err == nil {
		t.Error("expected ErrInvalidCopyfromRev when nothing precedes a dropped revision")
	}
}

func TestRenumberMapTranslateCopyfromStopRenumberIsIdentity(t *testing.T) {
	m := NewRenumberMap(false, true)
	out, err := m.TranslateCopyfrom(42)
	if err != nil || out != 42 {
		t.Fatalf("TranslateCopyfrom under -s should be identity: %d, %v, want 42, nil", out, err)
	}
}

func TestRenumberMapOpenRevisionProvisional(t *testing.T) {
	m := NewRenumberMap(false, false)
	m.CloseRevision(1, true)

	if got := m.OpenRevision(2); got != 2 {
		t.Errorf("OpenRevision(2) = %d, want 2 (provisional next slot)", got)
	}
}
