package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
)

// Command-line surface (spec section 6). Positional arguments (dump path,
// include|exclude, path list) are not flags and are parsed separately in
// parseCommandLine; everything else follows the teacher's args.go idiom of
// one package-level flag.* var per option.
var (
	repoPath = flag.String("r", "", "repository root for the probe")
	outPath  = flag.String("o", "", "output path (default: stdout)")

	preserveEmpty  = flag.Bool("k", false, "preserve empty revisions")
	stopRenumber   = flag.Bool("s", false, "stop renumbering; output revision numbers match input")
	stripMergeinfo = flag.Bool("x", false, "strip svn:mergeinfo properties")

	fileList = flag.String("file", "", "read path list from file, one per line")
	scanMode = flag.Bool("scan", false, "scan mode: report findings and exit without emitting")

	startRevision  = flag.Int("start-revision", 0, "begin emitting at this input revision")
	startRevisionN = flag.Int("n", -1, "alias for -start-revision, from the original tool's -n/--revisions flag")

	reportPath = flag.String("report", "", "write a YAML run summary to this path")

	quiet = flag.Bool("q", false, "suppress informational output")
	debug = flag.Bool("d", false, "enable debug-level logging")
)

// parsedArgs is what parseCommandLine resolves the flag/positional surface
// into for main to act on.
type parsedArgs struct {
	dumpPath string
	mode     string // "include" or "exclude"
	paths    []string
}

func parseCommandLine() (*parsedArgs, error) {
	flag.Parse()

	if *quiet && *debug {
		return nil, fmt.Errorf("-q and -d are mutually exclusive")
	}
	if startRevisionN != nil && *startRevisionN >= 0 {
		*startRevision = *startRevisionN
	}

	args := flag.Args()
	if *scanMode {
		// --scan still needs a dump path and an inclusion rule, but never
		// writes output, so -o/-r are optional.
		if len(args) < 1 {
			return nil, fmt.Errorf("usage: %s [-scan] <dump> [include|exclude <path>...]", os.Args[0])
		}
	} else if len(args) < 2 {
		return nil, fmt.Errorf("usage: %s <dump> <include|exclude> <path>... [-file <list>]", os.Args[0])
	}

	parsed := &parsedArgs{dumpPath: args[0]}
	if len(args) >= 2 {
		parsed.mode = args[1]
		parsed.paths = append(parsed.paths, args[2:]...)
	}

	if *fileList != "" {
		extra, err := readPathFile(*fileList)
		if err != nil {
			return nil, fmt.Errorf("-file %s: %w", *fileList, err)
		}
		parsed.paths = append(parsed.paths, extra...)
	}

	if parsed.mode == "" {
		parsed.mode = "include"
	}
	if parsed.mode != "include" && parsed.mode != "exclude" {
		return nil, fmt.Errorf("invalid mode %q: must be include or exclude", parsed.mode)
	}
	if len(parsed.paths) == 0 {
		return nil, fmt.Errorf("no paths given")
	}

	return parsed, nil
}

// readPathFile reads one path per line, as
// original_source/svndumpfilter.py's MatchFiles.read_matches_from_file
// does, skipping blank lines.
func readPathFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths, scanner.Err()
}

// stderrLogger is the Logger the Driver is wired to (dump/driver.go). It
// is silenced by -q, the way the teacher's Log/Info wrappers honor -quiet
// (main.go), printing to stderr since stdout carries the dump stream when
// -o is not given. -d does not affect it; debug output goes through debugf.
type stderrLogger struct{}

func (stderrLogger) Logf(format string, args ...any) {
	if *quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "-- "+format+"\n", args...)
}

func debugf(format string, args ...any) {
	if *debug {
		fmt.Fprintf(os.Stderr, "++ "+format+"\n", args...)
	}
}
