package dump

// PropertyRewriter applies the mergeinfo-strip and marker-add policies to a
// node's property block (spec section 4.10). It is a thin collaborator over
// PropertyBlock's own StripMergeinfo method (properties.go);
// split out as its own type because the spec names it as a distinct
// pipeline stage the Driver invokes between the Untangler and the
// Dependent-Directory Synthesizer (spec section 4.9 step 2b).
type PropertyRewriter struct {
	StripMergeinfo bool
}

// NewPropertyRewriter constructs a PropertyRewriter honoring the -x policy.
func NewPropertyRewriter(stripMergeinfo bool) *PropertyRewriter {
	return &PropertyRewriter{StripMergeinfo: stripMergeinfo}
}

// Apply rewrites node's property block in place: it strips svn:mergeinfo
// when configured to, and leaves every other entry, including any marker
// property, untouched. It never itself adds the marker — that is the
// Untangler's/Synthesizer's responsibility, since only they know whether a
// record is genuinely synthetic.
func (p *PropertyRewriter) Apply(node *Node) {
	if node.Properties == nil {
		return
	}
	if p.StripMergeinfo {
		node.Properties.StripMergeinfo()
	}
}
