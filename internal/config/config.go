// Package config holds runtime configuration: defaults, environment and
// config-file overrides, CLI flag parsing, and validation. Defaults match the
// original dicomtonifti command line.
package config

import (
	"errors"
	"os"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stderr is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// [LoadEnvironment] and [ParseFlags], validated once, and then passed (by
// pointer) read-only to every package that needs it.
type Config struct {
	// Paths.
	Inputs []string // Files and directories, in command-line order.
	Output string   // NIFTI file, or directory in batch mode.

	// Conversion behavior.
	Compress           bool // -z: write .nii.gz.
	Recurse            bool // -r: descend below the directories named on the command line.
	FollowSymlinks     bool // -L: descend into symlinked directories when recursing.
	Batch              bool // -b: one output file per series, names from metadata.
	NoSliceReordering  bool // Keep on-disk slice order (qfac = -1 when needed).
	NoRowReordering    bool
	NoColumnReordering bool
	NoQForm            bool
	NoSForm            bool

	// Run modes.
	DryRun   bool   // Resolve and plan everything, write nothing.
	ListOnly bool   // Print the study/series table and exit.
	Manifest string // Optional YAML run record.

	// Display and logging.
	Silent    bool // -s: do not echo output filenames.
	Verbose   bool // -v: debug-level diagnostics.
	ColorMode ColorMode
	LogFile   string
}

// DefaultConfig returns a Config with every option off, as the original tool.
func DefaultConfig() Config {
	return Config{
		ColorMode: ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and that the required arguments are present.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Output == "" && !c.ListOnly {
		return errors.New("no output file was specified ('-o' <filename>)")
	}
	if len(c.Inputs) == 0 {
		return errors.New("no input files were specified")
	}
	return nil
}

// ValidateOutput checks the output argument against the filesystem: batch
// mode needs an existing directory, single mode needs a file path.
func (c *Config) ValidateOutput() error {
	if c.ListOnly {
		return nil
	}
	fi, err := os.Stat(c.Output)
	isDir := err == nil && fi.IsDir()
	if c.Batch {
		if !isDir {
			return errors.New("in batch mode, -o must give an existing directory")
		}
		return nil
	}
	if isDir || hasTrailingSeparator(c.Output) {
		return errors.New("the -o option must give a file, not a directory")
	}
	return nil
}

// hasTrailingSeparator accepts either slash so Windows-style arguments are
// rejected the same way on every platform.
func hasTrailingSeparator(p string) bool {
	return strings.HasSuffix(p, "/") || strings.HasSuffix(p, `\`)
}
