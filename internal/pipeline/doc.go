// Package pipeline drives a conversion run: expand the command-line paths
// into files, group them into studies and series, and convert each series
// into one NIFTI file.
//
// Processing is sequential. The first collaborator error stops the run;
// only unreadable directories during expansion are tolerated.
//
// Files:
//   - discover.go: directory walker, visited set, Windows glob expansion
//   - collaborators.go: reader/converter/writer interfaces and defaults
//   - runner.go: single and batch mode, per-series conversion
//   - list.go: --list study/series table
//   - manifest.go: --manifest YAML run record
//   - stats.go: run counters
package pipeline
