package main

import (
	"fmt"
	"os"

	"github.com/cairn-tools/svncarve/dump"
	"github.com/cairn-tools/svncarve/internal/svnlook"
)

func main() {
	args, err := parseCommandLine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(args); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("error: %w", err))
		os.Exit(1)
	}
}

func run(args *parsedArgs) error {
	reader, err := dump.NewReaderFromFile(args.dumpPath)
	if err != nil {
		return fmt.Errorf("%s: %w", args.dumpPath, err)
	}
	defer reader.Close()

	mode := dump.Include
	if args.mode == "exclude" {
		mode = dump.Exclude
	}
	matcher := dump.NewMatcher(mode, args.paths)
	parser := dump.NewParser(reader)

	if *scanMode {
		return runScan(parser, matcher, args)
	}
	return runEmit(parser, matcher, args)
}

func runScan(parser *dump.Parser, matcher *dump.Matcher, args *parsedArgs) error {
	findings, err := dump.Scan(parser, matcher, *preserveEmpty, *stopRenumber)
	if err != nil {
		return err
	}

	for _, f := range findings {
		fmt.Println(f.String())
	}
	debugf("scan complete: %d finding(s)", len(findings))

	if *reportPath != "" {
		report := RunReport{
			Mode: args.mode, Paths: args.paths,
			PreserveEmpty: *preserveEmpty, StopRenumber: *stopRenumber,
			StripMergeinfo: *stripMergeinfo,
			Findings:       findingsToYAML(findings),
		}
		if err := writeReport(*reportPath, report); err != nil {
			return fmt.Errorf("-report %s: %w", *reportPath, err)
		}
	}
	return nil
}

func runEmit(parser *dump.Parser, matcher *dump.Matcher, args *parsedArgs) error {
	if *repoPath == "" {
		return fmt.Errorf("-r <repo_path> is required unless -scan is given")
	}
	probe := svnlook.New(*repoPath)

	driver, err := dump.NewDriver(dump.Options{
		Matcher:        matcher,
		Probe:          probe,
		PreserveEmpty:  *preserveEmpty,
		StopRenumber:   *stopRenumber,
		StripMergeinfo: *stripMergeinfo,
		StartRevision:  *startRevision,
		Logger:         stderrLogger{},
	})
	if err != nil {
		return err
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("%s: %w", *outPath, err)
		}
		defer f.Close()
		out = f
	}

	stats, err := driver.Run(parser, out)
	if err != nil {
		return err
	}
	debugf("run complete: %+v", stats)

	if *reportPath != "" {
		report := RunReport{
			Mode: args.mode, Paths: args.paths,
			PreserveEmpty: *preserveEmpty, StopRenumber: *stopRenumber,
			StripMergeinfo:   *stripMergeinfo,
			RevisionsEmitted: stats.RevisionsEmitted,
			RevisionsDropped: stats.RevisionsDropped,
			NodesUntangled:   stats.NodesUntangled,
			DirsSynthesized:  stats.DirsSynthesized,
		}
		if err := writeReport(*reportPath, report); err != nil {
			return fmt.Errorf("-report %s: %w", *reportPath, err)
		}
	}
	return nil
}
