package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into conversion, orientation, run-mode, display and utility.
// Clustered short options (-brz, -ofile.nii) are split before parsing, and
// positional inputs may appear between flags.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrHelp and ErrVersion are returned by ParseFlags when the user asked for
// help or the version string; the caller prints and exits 0.
var (
	ErrHelp    = errors.New("help requested")
	ErrVersion = errors.New("version requested")
)

// ParseFlags parses args (without the program name) into cfg.
// On error it returns non-nil (e.g. unknown flag, missing -o value).
func ParseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("dicomtonifti", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var negated negatedFlags

	defineConversionFlags(fs, cfg)
	defineOrientationFlags(fs, cfg)
	defineRunModeFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	inputs, err := parseInterleaved(fs, expandShortFlags(args))
	if err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		return ErrHelp
	}
	if negated.showVersion {
		return ErrVersion
	}

	cfg.Inputs = append(cfg.Inputs, inputs...)
	if cfg.Batch && cfg.Output != "" {
		cfg.Output = NormalizeDirArg(cfg.Output)
	}
	return nil
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either override another setting (noColor) or trigger exit (showHelp, showVersion).
type negatedFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineConversionFlags registers -o, -z, -r, -b, -L.
func defineConversionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Output, "output", cfg.Output, "Output file (or directory, with --batch)")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "Same as --output")
	fs.BoolVar(&cfg.Compress, "compress", cfg.Compress, "Compress output files")
	fs.BoolVar(&cfg.Compress, "z", cfg.Compress, "Same as --compress")
	fs.BoolVar(&cfg.Recurse, "recurse", cfg.Recurse, "Recurse into subdirectories")
	fs.BoolVar(&cfg.Recurse, "r", cfg.Recurse, "Same as --recurse")
	fs.BoolVar(&cfg.Batch, "batch", cfg.Batch, "Do multiple series at once")
	fs.BoolVar(&cfg.Batch, "b", cfg.Batch, "Same as --batch")
	fs.BoolVar(&cfg.FollowSymlinks, "follow-symlinks", cfg.FollowSymlinks, "Follow symbolic links when recursing")
	fs.BoolVar(&cfg.FollowSymlinks, "L", cfg.FollowSymlinks, "Same as --follow-symlinks")
}

// defineOrientationFlags registers the reordering and qform/sform switches.
func defineOrientationFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.NoSliceReordering, "no-slice-reordering", cfg.NoSliceReordering, "Never reorder the slices")
	fs.BoolVar(&cfg.NoRowReordering, "no-row-reordering", cfg.NoRowReordering, "Never reorder the rows")
	fs.BoolVar(&cfg.NoColumnReordering, "no-column-reordering", cfg.NoColumnReordering, "Never reorder the columns")
	fs.BoolVar(&cfg.NoQForm, "no-qform", cfg.NoQForm, "Don't include a qform in the NIFTI file")
	fs.BoolVar(&cfg.NoSForm, "no-sform", cfg.NoSForm, "Don't include an sform in the NIFTI file")
}

// defineRunModeFlags registers --dry-run, --list, --manifest.
func defineRunModeFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Resolve output names without writing")
	fs.BoolVar(&cfg.ListOnly, "list", cfg.ListOnly, "List studies and series, do not convert")
	fs.StringVar(&cfg.Manifest, "manifest", cfg.Manifest, "Write a YAML record of the run")
}

// defineDisplayFlags registers -s, -v, --color, --no-color, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.Silent, "silent", cfg.Silent, "Do not echo output filenames")
	fs.BoolVar(&cfg.Silent, "s", cfg.Silent, "Same as --silent")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose error reporting")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
}

// defineUtilityFlags registers --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print the version and exit")
	fs.BoolVar(&n.showHelp, "help", false, "Documentation for dicomtonifti")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parseInterleaved runs fs.Parse repeatedly so positional arguments may sit
// between flags. Everything after "--" is positional.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		rem := fs.Args()
		if len(rem) == 0 {
			return positional, nil
		}
		consumed := len(rest) - len(rem)
		if consumed > 0 && rest[consumed-1] == "--" {
			return append(positional, rem...), nil
		}
		positional = append(positional, rem[0])
		rest = rem[1:]
	}
}

// shortBoolFlags are the single-letter switches that may be clustered.
var shortBoolFlags = map[rune]bool{
	'z': true, 'r': true, 'b': true, 's': true, 'v': true, 'L': true,
}

// expandShortFlags splits clusters such as "-brz" into "-b -r -z". An 'o'
// inside a cluster takes the remainder as its value ("-ofile.nii",
// "-bzo out"). Arguments that are not pure clusters ("-verbose") are left
// for the flag package.
func expandShortFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for i, a := range args {
		if a == "--" {
			return append(out, args[i:]...)
		}
		if len(a) < 3 || a[0] != '-' || a[1] == '-' || strings.HasPrefix(a, "-o=") || !isShortCluster(a[1:]) {
			out = append(out, a)
			continue
		}
		out = append(out, splitShortCluster(a[1:])...)
	}
	return out
}

func isShortCluster(s string) bool {
	for _, ch := range s {
		if ch == 'o' {
			return true
		}
		if !shortBoolFlags[ch] {
			return false
		}
	}
	return true
}

func splitShortCluster(s string) []string {
	var out []string
	for idx, ch := range s {
		if ch == 'o' {
			out = append(out, "-o")
			if v := s[idx+1:]; v != "" {
				out = append(out, v)
			}
			return out
		}
		out = append(out, "-"+string(ch))
	}
	return out
}

// PrintVersion writes the one-line version string.
func PrintVersion(w io.Writer, prog, version, commit string) {
	fmt.Fprintf(w, "%s %s (%s)\n", filepath.Base(prog), version, commit)
}

// PrintUsage writes the usage summary. Column-aligned for readability.
func PrintUsage(w io.Writer, prog string) {
	const col1 = 26 // width of "  -o <output.nii[.gz]>    "
	name := filepath.Base(prog)
	lines := []struct {
		flags string
		desc  string
	}{
		{"usage: " + name + " -o file.nii file1.dcm [file2.dcm ...]", ""},
		{"       " + name + " -o directory --batch file1.dcm [file2.dcm ...]", ""},
		{"options:", ""},
		{"  -o <output.nii[.gz]>", "The output file (or directory, if --batch)."},
		{"  -z --compress", "Compress output files."},
		{"  -r --recurse", "Recurse into subdirectories."},
		{"  -b --batch", "Do multiple series at once."},
		{"  -s --silent", "Do not echo output filenames."},
		{"  -v --verbose", "Verbose error reporting."},
		{"  -L --follow-symlinks", "Follow symbolic links when recursing."},
		{"  --no-slice-reordering", "Never reorder the slices."},
		{"  --no-row-reordering", "Never reorder the rows."},
		{"  --no-column-reordering", "Never reorder the columns."},
		{"  --no-qform", "Don't include a qform in the NIFTI file."},
		{"  --no-sform", "Don't include an sform in the NIFTI file."},
		{"  --dry-run", "Show output names, write nothing."},
		{"  --list", "List studies and series, do not convert."},
		{"  --manifest <file>", "Write a YAML record of the run."},
		{"  --log <file>", "Append logs to file."},
		{"  --color, --no-color", "Force or disable colored logs."},
		{"  --version", "Print the version and exit."},
		{"  --help", "Documentation for dicomtonifti."},
	}
	for _, l := range lines {
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// PrintHelp writes the usage summary followed by the long description.
func PrintHelp(w io.Writer, prog string) {
	PrintUsage(w, prog)
	fmt.Fprint(w, `
This program will convert a DICOM series into a NIfTI file.

It reads the DICOM Position and Orientation metadata, and uses this
information to generate qform and sform entries for the NIfTI header,
after doing a conversion from the DICOM coordinate system to the NIfTI
coordinate system.

By default, it will also reorder the columns of the image so that
columns with higher indices are further to the patient's right (or
in the case of sagittal images, further anterior).  Likewise, rows
will be rearranged so that rows with higher indices are superior (or
anterior for axial images).  Finally, it will reorder the slices
so that the column direction, row direction, and slice direction
follow the right-hand rule.

If batch mode is enabled, then the filenames will automatically be
generated from the series description in the DICOM meta data:
"PatientName/StudyDescription-ID/SeriesDescription_N.nii.gz".

Here is an example of batch mode that recurses into subdirectories
and compresses the output files, putting the results in the current
directory:

`)
	fmt.Fprintf(w, "%s -brz -o . /path/to/dicom/files\n\n", filepath.Base(prog))
	fmt.Fprintln(w, "Options may also be set with DICOMTONIFTI_<OPTION> environment variables")
	fmt.Fprintln(w, "(e.g. DICOMTONIFTI_COMPRESS=true) or a config file named by DICOMTONIFTI_CONFIG.")
}
