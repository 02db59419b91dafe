package dump

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"testing"
)

func makeCopyfromNode(path string, copyFromRev int, copyFromPath string) *Node {
	headers := NewHeaders()
	headers.Set(NodePathHeader, path)
	headers.Set(NodeKindHeader, NodeKindFile.String())
	headers.Set(NodeActionHeader, NodeActionAdd.String())
	headers.Set(NodeCopyfromRevHeader, "0")
	headers.Set(NodeCopyfromPathHeader, copyFromPath)

	return &Node{
		Headers:      headers,
		Path:         path,
		Kind:         NodeKindFile,
		Action:       NodeActionAdd,
		CopyFromRev:  copyFromRev,
		CopyFromPath: copyFromPath,
		HasCopyFrom:  true,
	}
}

func TestUntangleFile(t *testing.T) {
	probe := NewFakeProbe()
	content := []byte("hello, world\n")
	srcProps := NewPropertyBlock()
	srcProps.Set([]byte("svn:mime-type"), []byte("text/plain"))
	probe.PutFile(3, "branches/old/a.txt", content, srcProps)

	node := makeCopyfromNode("trunk/a.txt", 3, "branches/old/a.txt")

	u := NewUntangler(probe)
	records, err := u.Untangle(node, 5)
	if err != nil {
		t.Fatalf("Untangle: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record for a file source, got %d", len(records))
	}

	r := records[0]
	if r.Action != NodeActionAdd {
		t.Errorf("rewritten node action = %v, want add", r.Action)
	}
	if r.Headers.Has(NodeCopyfromRevHeader) || r.Headers.Has(NodeCopyfromPathHeader) {
		t.Error("rewritten node must not carry copyfrom headers")
	}
	if !bytes.Equal(r.Content, content) {
		t.Errorf("rewritten content = %q, want %q", r.Content, content)
	}
	if !r.Synthesized() {
		t.Error("rewritten node should carry the synthesized marker")
	}
	mime, ok := r.Properties.Get("svn:mime-type")
	if !ok || string(mime) != "text/plain" {
		t.Errorf("retrieved property should be merged in, got %q, %v", mime, ok)
	}
}

func TestUntangleFileRecomputesRequestedHashes(t *testing.T) {
	probe := NewFakeProbe()
	content := []byte("payload")
	probe.PutFile(1, "excluded/f.bin", content, nil)

	node := makeCopyfromNode("kept/f.bin", 1, "excluded/f.bin")
	node.Headers.Set(TextContentMd5Header, "stale-value-from-source")

	u := NewUntangler(probe)
	records, err := u.Untangle(node, 2)
	if err != nil {
		t.Fatalf("Untangle: %v", err)
	}

	want := md5.Sum(content)
	got, ok := records[0].Headers.Get(TextContentMd5Header)
	if !ok {
		t.Fatal("Text-content-md5 header should still be present")
	}
	if got != hex.EncodeToString(want[:]) {
		t.Errorf("Text-content-md5 = %q, want %q (recomputed against new content)", got, hex.EncodeToString(want[:]))
	}
}

func TestUntangleOwnPropertiesWinOverRetrieved(t *testing.T) {
	probe := NewFakeProbe()
	srcProps := NewPropertyBlock()
	srcProps.Set([]byte("svn:eol-style"), []byte("native"))
	probe.PutFile(1, "src/f.txt", []byte("x"), srcProps)

	node := makeCopyfromNode("dst/f.txt", 1, "src/f.txt")
	node.Properties = NewPropertyBlock()
	node.Properties.Set([]byte("svn:eol-style"), []byte("CRLF"))

	u := NewUntangler(probe)
	records, err := u.Untangle(node, 2)
	if err != nil {
		t.Fatalf("Untangle: %v", err)
	}

	eol, _ := records[0].Properties.Get("svn:eol-style")
	if string(eol) != "CRLF" {
		t.Errorf("node's own property should win over the retrieved one, got %q", eol)
	}
}

func TestUntangleDirectory(t *testing.T) {
	probe := NewFakeProbe()
	probe.PutDir(1, "old/dir", nil, []string{"a.txt", "sub"})
	probe.PutFile(1, "old/dir/a.txt", []byte("aaa"), nil)
	probe.PutDir(1, "old/dir/sub", nil, []string{"b.txt"})
	probe.PutFile(1, "old/dir/sub/b.txt", []byte("bbb"), nil)

	node := makeCopyfromNode("new/dir", 1, "old/dir")
	node.Kind = NodeKindDir
	node.Headers.Set(NodeKindHeader, NodeKindDir.String())

	u := NewUntangler(probe)
	records, err := u.Untangle(node, 2)
	if err != nil {
		t.Fatalf("Untangle: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("expected root + a.txt + sub + sub/b.txt = 4 records, got %d: %+v", len(records), records)
	}
	if records[0].Path != "new/dir" || records[0].Kind != NodeKindDir {
		t.Errorf("records[0] = %+v, want root dir new/dir", records[0])
	}

	paths := map[string]bool{}
	for _, r := range records {
		paths[r.Path] = true
	}
	for _, want := range []string{"new/dir", "new/dir/a.txt", "new/dir/sub", "new/dir/sub/b.txt"} {
		if !paths[want] {
			t.Errorf("expected a record for %q, got paths %v", want, paths)
		}
	}
}

func TestUntangleMissingSourceErrors(t *testing.T) {
	probe := NewFakeProbe()
	node := makeCopyfromNode("dst/f.txt", 9, "never/existed.txt")

	u := NewUntangler(probe)
	if _, err := u.Untangle(node, 10); err == nil {
		t.Error("expected an error when the copyfrom source cannot be found")
	}
}
