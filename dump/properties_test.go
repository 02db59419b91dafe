package dump

import (
	"bytes"
	"testing"
)

func TestPropertyBlockParseRoundTrip(t *testing.T) {
	pb := NewPropertyBlock()
	pb.Set([]byte("svn:log"), []byte("hello world"))
	pb.Set([]byte("svn:author"), []byte("jrandom"))

	serialized := pb.Serialize()

	parsed, err := ParsePropertyBlock(serialized)
	if err != nil {
		t.Fatalf("ParsePropertyBlock: %v", err)
	}

	if !bytes.Equal(parsed.Serialize(), serialized) {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", parsed.Serialize(), serialized)
	}

	v, ok := parsed.Get("svn:log")
	if !ok || string(v) != "hello world" {
		t.Errorf("Get(svn:log) = %q, %v", v, ok)
	}
}

func TestParsePropertyBlockEmpty(t *testing.T) {
	pb, err := ParsePropertyBlock([]byte(PropsEnd + "\n"))
	if err != nil {
		t.Fatalf("ParsePropertyBlock: %v", err)
	}
	if len(pb.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(pb.Entries))
	}
}

func TestParsePropertyBlockDeletion(t *testing.T) {
	raw := "D 7\nsvn:log\n" + PropsEnd + "\n"
	pb, err := ParsePropertyBlock([]byte(raw))
	if err != nil {
		t.Fatalf("ParsePropertyBlock: %v", err)
	}
	if len(pb.Entries) != 1 || !pb.Entries[0].Delete {
		t.Fatalf("expected one deletion entry, got %+v", pb.Entries)
	}
	if string(pb.Entries[0].Key) != "svn:log" {
		t.Errorf("Key = %q, want svn:log", pb.Entries[0].Key)
	}
}

func TestParsePropertyBlockMalformedTag(t *testing.T) {
	raw := "X 3\nfoo\n" + PropsEnd + "\n"
	if _, err := ParsePropertyBlock([]byte(raw)); err == nil {
		t.Error("expected an error for an unrecognized property tag")
	}
}

func TestPropertyBlockSetPreservesPosition(t *testing.T) {
	pb := NewPropertyBlock()
	pb.Set([]byte("a"), []byte("1"))
	pb.Set([]byte("b"), []byte("2"))
	pb.Set([]byte("a"), []byte("updated"))

	if len(pb.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(pb.Entries))
	}
	if string(pb.Entries[0].Key) != "a" || string(pb.Entries[0].Value) != "updated" {
		t.Errorf("entry 0 = %+v, want a=updated in place", pb.Entries[0])
	}
}

func TestPropertyBlockRemove(t *testing.T) {
	pb := NewPropertyBlock()
	pb.Set([]byte("svn:mergeinfo"), []byte("/trunk:1-5"))

	if !pb.StripMergeinfo() {
		t.Error("StripMergeinfo should report it removed an entry")
	}
	if _, ok := pb.Get("svn:mergeinfo"); ok {
		t.Error("svn:mergeinfo should be gone after StripMergeinfo")
	}
	if pb.StripMergeinfo() {
		t.Error("StripMergeinfo on an absent key should report false")
	}
}

func TestPropertyBlockMergeFromOwnWins(t *testing.T) {
	dst := NewPropertyBlock()
	dst.Set([]byte("svn:author"), []byte("mine"))

	src := NewPropertyBlock()
	src.Set([]byte("svn:author"), []byte("theirs"))
	src.Set([]byte("svn:log"), []byte("from source"))

	dst.MergeFrom(src)

	author, _ := dst.Get("svn:author")
	if string(author) != "mine" {
		t.Errorf("own entry should win on collision, got %q", author)
	}
	log, ok := dst.Get("svn:log")
	if !ok || string(log) != "from source" {
		t.Errorf("non-colliding src entry should be merged in, got %q, %v", log, ok)
	}
}

func TestPropertyBlockMergeFromNil(t *testing.T) {
	dst := NewPropertyBlock()
	dst.Set([]byte("k"), []byte("v"))
	dst.MergeFrom(nil)
	if len(dst.Entries) != 1 {
		t.Errorf("MergeFrom(nil) should be a no-op, got %d entries", len(dst.Entries))
	}
}

func TestPropertyBlockMarker(t *testing.T) {
	pb := NewPropertyBlock()
	if pb.HasMarker() {
		t.Error("fresh block should not have the marker")
	}
	pb.AddMarker()
	if !pb.HasMarker() {
		t.Error("block should have the marker after AddMarker")
	}
	before := len(pb.Entries)
	pb.AddMarker()
	if len(pb.Entries) != before {
		t.Error("AddMarker should be idempotent")
	}
}

func TestPropertyBlockClone(t *testing.T) {
	pb := NewPropertyBlock()
	pb.Set([]byte("k"), []byte("v"))

	clone := pb.Clone()
	clone.Set([]byte("k"), []byte("changed"))

	orig, _ := pb.Get("k")
	if string(orig) != "v" {
		t.Errorf("mutating the clone should not affect the original, got %q", orig)
	}
}

func TestPropertyBlockSerializedLength(t *testing.T) {
	pb := NewPropertyBlock()
	pb.Set([]byte("k"), []byte("v"))

	if got, want := pb.SerializedLength(), len(pb.Serialize()); got != want {
		t.Errorf("SerializedLength() = %d, want %d", got, want)
	}
}
