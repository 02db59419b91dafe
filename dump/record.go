package dump

import "fmt"

// NodeKind identifies whether a node is a file or a directory. It uses the
// teacher's pointer-sentinel idiom (lib/nodekind.go): a handful of package
// vars of a named pointer type, compared by identity rather than by string,
// so callers switch on NodeKindFile/NodeKindDir the same way they would on a
// small closed enum, without an int-to-string table to keep in sync.
type nodeKindString string

type NodeKind = *nodeKindString

func newNodeKind(s string) NodeKind { v := nodeKindString(s); return &v }

var (
	NodeKindFile = newNodeKind("file")
	NodeKindDir  = newNodeKind("dir")
)

var nodeKinds = map[string]NodeKind{
	"file": NodeKindFile,
	"dir":  NodeKindDir,
}

// GetNodeKind resolves the Node-kind header's literal value to a NodeKind.
func GetNodeKind(kind string) (NodeKind, error) {
	if nk, ok := nodeKinds[kind]; ok {
		return nk, nil
	}
	return nil, fmt.Errorf("%w: unknown node kind %q", ErrMalformedHeader, kind)
}

// String renders the on-disk Node-kind value.
func (k *nodeKindString) String() string {
	if k == nil {
		return ""
	}
	return string(*k)
}

// NodeAction identifies what a node record does: add, delete, change, or
// replace. Same pointer-sentinel idiom as NodeKind.
type nodeActionString string

type NodeAction = *nodeActionString

func newNodeAction(s string) NodeAction { v := nodeActionString(s); return &v }

var (
	NodeActionChange  = newNodeAction("change")
	NodeActionAdd     = newNodeAction("add")
	NodeActionDelete  = newNodeAction("delete")
	NodeActionReplace = newNodeAction("replace")
)

var nodeActions = map[string]NodeAction{
	"change":  NodeActionChange,
	"add":     NodeActionAdd,
	"delete":  NodeActionDelete,
	"replace": NodeActionReplace,
}

// GetNodeAction resolves the Node-action header's literal value to a
// NodeAction.
func GetNodeAction(act string) (NodeAction, error) {
	if na, ok := nodeActions[act]; ok {
		return na, nil
	}
	return nil, fmt.Errorf("%w: unknown node action %q", ErrMalformedHeader, act)
}

// String renders the on-disk Node-action value.
func (a *nodeActionString) String() string {
	if a == nil {
		return ""
	}
	return string(*a)
}

// Node is one Node-path record within a revision: a header block, an
// optional property block, and optional raw text content. Grounded on the
// teacher's lib/node.go, restructured to keep the parsed Headers/Properties
// around (rather than discarding them after a field-by-field scan) since the
// Matcher, Untangler and Emitter all need to inspect and rewrite them later
// in the pipeline.
type Node struct {
	Headers    *Headers
	Properties *PropertyBlock // nil if the node carries no property block
	Content    []byte         // nil if the node carries no text content

	Path   string
	Kind   NodeKind   // nil for delete actions, which carry no Node-kind
	Action NodeAction

	CopyFromRev  int
	CopyFromPath string
	HasCopyFrom  bool
}

// Synthesized reports whether this node was manufactured by this tool
// (dependent-directory synthesis or untangling) rather than read verbatim
// from the input stream.
func (n *Node) Synthesized() bool {
	return n.Properties != nil && n.Properties.HasMarker()
}

// Revision is one Revision-number record: its headers, its own property
// block, and the node records it contains. Grounded on the teacher's
// lib/revision.go, generalized so Number survives renumbering independently
// of the original revision's position in the input (OriginalNumber keeps
// that for the Renumber Map and for -n range filtering).
type Revision struct {
	Headers    *Headers
	Properties *PropertyBlock
	Nodes      []*Node

	// OriginalNumber is the revision number as it appeared in the source
	// stream; Headers[Revision-number] carries the (possibly renumbered)
	// output value once the Driver assigns it.
	OriginalNumber int
}

// Number returns the revision number currently recorded in Headers.
func (r *Revision) Number() int {
	n, _ := r.Headers.Int(RevisionNumberHeader)
	return n
}

// SetNumber rewrites the Revision-number header, used when renumbering.
func (r *Revision) SetNumber(n int) {
	r.Headers.Set(RevisionNumberHeader, fmt.Sprintf("%d", n))
}

// Empty reports whether the revision retained no nodes, the trigger for the
// "preserve empty revisions" policy decision (spec section 4.9).
func (r *Revision) Empty() bool {
	return len(r.Nodes) == 0
}
