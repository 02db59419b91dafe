package dump

import (
	"errors"
	"fmt"
	"io"
)

// Logger is the narrow interface the Driver reports progress through.
// Logging itself is out of the core's scope (spec section 1); the core only
// needs somewhere to send it. Modeled on the teacher's bare Log/Info
// wrapper (main.go) rather than a structured-logging library — see
// DESIGN.md for why no such library earns a place here.
type Logger interface {
	Logf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Logf(string, ...any) {}

// Options configures a Driver run (spec section 6 CLI surface, minus the
// argument-parsing mechanics themselves, which live in args.go).
type Options struct {
	Matcher        *Matcher
	Probe          RepositoryProbe
	PreserveEmpty  bool // -k
	StopRenumber   bool // -s
	StripMergeinfo bool // -x
	StartRevision  int  // --start-revision / -n
	Logger         Logger
}

// Stats summarizes a completed run, the data --report renders as YAML
// (SPEC_FULL.md section 4.13).
type Stats struct {
	RevisionsEmitted int
	RevisionsDropped int
	NodesUntangled   int
	DirsSynthesized  int
}

// Driver owns the streaming revision lifecycle (spec section 4.9): pulling
// records from the Parser, consulting the Matcher/Untangler/Synthesizer,
// and pushing survivors to the Emitter. It bundles the run's process-wide
// mutable state — the Renumber Map and the emitted-directories set — as
// spec section 9's "Global state" note recommends; no output position
// counter is kept.
type Driver struct {
	opts      Options
	renumber  *RenumberMap
	synth     *DirSynthesizer
	untangler *Untangler
	propwrite *PropertyRewriter
	logger    Logger
	stats     Stats
}

// NewDriver validates opts and constructs a Driver (spec section 7
// ConfigError: empty path set or a missing collaborator is fatal before
// streaming begins).
func NewDriver(opts Options) (*Driver, error) {
	if opts.Matcher == nil || opts.Matcher.Empty() {
		return nil, fmt.Errorf("%w: empty path set", ErrConfig)
	}
	if opts.Probe == nil {
		return nil, fmt.Errorf("%w: no repository probe configured", ErrConfig)
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Driver{
		opts:      opts,
		renumber:  NewRenumberMap(opts.PreserveEmpty, opts.StopRenumber),
		synth:     NewDirSynthesizer(),
		untangler: NewUntangler(opts.Probe),
		propwrite: NewPropertyRewriter(opts.StripMergeinfo),
		logger:    logger,
	}, nil
}

// Run executes the full carve: reads records from parser, writes the
// filtered stream to w, and returns run statistics.
func (d *Driver) Run(parser *Parser, w io.Writer) (Stats, error) {
	if err := parser.ReadPreamble(); err != nil {
		return d.stats, err
	}

	emitter := NewEmitter(w)
	emitter.WritePreamble(parser.Version, parser.UUID)

	for {
		rev, err := parser.NextRevision()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			_ = emitter.Close()
			return d.stats, err
		}

		if err := d.processRevision(parser, rev, emitter); err != nil {
			_ = emitter.Close()
			return d.stats, err
		}
	}

	if err := emitter.Close(); err != nil {
		return d.stats, err
	}
	return d.stats, nil
}

func (d *Driver) processRevision(parser *Parser, rev *Revision, emitter *Emitter) error {
	var buffered []*Node

	for parser.PeekIsNode() {
		node, err := parser.NextNode()
		if err != nil {
			return fmt.Errorf("r%d: %w", rev.OriginalNumber, err)
		}

		records, err := d.processNode(node, rev.OriginalNumber)
		if err != nil {
			return err
		}
		buffered = append(buffered, records...)
	}

	willEmit := rev.OriginalNumber >= d.opts.StartRevision
	outputRev, keep := d.renumber.CloseRevision(rev.OriginalNumber, len(buffered) > 0)

	if !keep || !willEmit {
		d.stats.RevisionsDropped++
		return nil
	}

	for _, node := range buffered {
		if node.HasCopyFrom {
			translated, err := d.renumber.TranslateCopyfrom(node.CopyFromRev)
			if err != nil {
				return fmt.Errorf("%s: %w", node.Path, err)
			}
			node.Headers.Set(NodeCopyfromRevHeader, fmt.Sprintf("%d", translated))
		}
	}

	rev.SetNumber(outputRev)
	emitter.WriteRevision(rev)
	for _, node := range buffered {
		emitter.WriteNode(node, node.Synthesized())
	}
	d.stats.RevisionsEmitted++
	d.logger.Logf("r%d -> r%d: %d node(s)", rev.OriginalNumber, outputRev, len(buffered))
	return nil
}

// processNode classifies one input node and returns the records that
// should be buffered for emission in its place: nil if dropped, the node
// itself (possibly with its copyfrom untouched, to be translated at
// revision close), or the Untangler's/Synthesizer's expansion.
func (d *Driver) processNode(node *Node, inputRev int) ([]*Node, error) {
	if !d.opts.Matcher.IsIncluded(node.Path) {
		return nil, nil
	}

	records := []*Node{node}

	if node.HasCopyFrom {
		if d.needsUntangle(node) {
			untangled, err := d.untangler.Untangle(node, inputRev)
			if err != nil {
				return nil, err
			}
			records = untangled
			d.stats.NodesUntangled += len(untangled)
		}
	}

	for _, n := range records {
		d.propwrite.Apply(n)
	}

	triggering := records[0]
	var out []*Node
	if triggering.Action == NodeActionAdd {
		for _, dep := range d.synth.Dependents(triggering.Path) {
			d.synth.MarkEmitted(dep.Path)
			out = append(out, dep)
			d.stats.DirsSynthesized++
		}
	}
	for _, n := range records {
		if n.Kind == NodeKindDir {
			d.synth.MarkEmitted(n.Path)
		}
		out = append(out, n)
	}

	return out, nil
}

// needsUntangle reports whether node's copyfrom source is not addressable
// in the output: the source path is excluded, or it IS included but its
// source revision was dropped by renumbering (spec section 4.7, and the
// Open Question decision recorded in DESIGN.md).
func (d *Driver) needsUntangle(node *Node) bool {
	if !d.opts.Matcher.IsIncluded(node.CopyFromPath) {
		return true
	}
	return d.renumber.WasDropped(node.CopyFromRev)
}
