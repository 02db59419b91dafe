package main

import (
	"os"

	yml "gopkg.in/yaml.v3"

	"github.com/cairn-tools/svncarve/dump"
)

// RunReport is the --report YAML document (SPEC_FULL.md section 4.13),
// shaped like the teacher's report.go YamlStatus: a small top-level struct
// with omitempty fields, encoded with an indented yaml.v3 encoder rather
// than hand-built text.
type RunReport struct {
	Mode           string   `yaml:"mode"`
	Paths          []string `yaml:"paths"`
	PreserveEmpty  bool     `yaml:"preserve_empty,omitempty"`
	StopRenumber   bool     `yaml:"stop_renumber,omitempty"`
	StripMergeinfo bool     `yaml:"strip_mergeinfo,omitempty"`

	RevisionsEmitted int `yaml:"revisions_emitted"`
	RevisionsDropped int `yaml:"revisions_dropped"`
	NodesUntangled   int `yaml:"nodes_untangled"`
	DirsSynthesized  int `yaml:"dirs_synthesized,omitempty"`

	SynthesizedDirs []string        `yaml:"synthesized_dirs,omitempty"`
	Findings        []ScanFindingYA `yaml:"findings,omitempty"`
}

// ScanFindingYA is the YAML-friendly shape of a dump.Finding (renamed
// fields rather than tagging dump.Finding itself, keeping dump/ free of any
// YAML dependency).
type ScanFindingYA struct {
	Revision     int    `yaml:"revision"`
	Path         string `yaml:"path"`
	CopyFromRev  int    `yaml:"copyfrom_revision"`
	CopyFromPath string `yaml:"copyfrom_path"`
}

func findingsToYAML(findings []dump.Finding) []ScanFindingYA {
	out := make([]ScanFindingYA, len(findings))
	for i, f := range findings {
		out[i] = ScanFindingYA{
			Revision: f.Rev, Path: f.Path,
			CopyFromRev: f.CopyFromRev, CopyFromPath: f.CopyFromPath,
		}
	}
	return out
}

// writeReport renders report as YAML to path, mirroring the teacher's
// report.go writeReport (open file, SetIndent(2), Encode, Close).
func writeReport(path string, report RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
