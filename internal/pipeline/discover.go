package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/dicomtonifti/internal/logging"
)

// hiddenPrefix marks directory entries the walker never lists.
const hiddenPrefix = "."

// WalkOptions controls how far [Expand] descends.
type WalkOptions struct {
	Recurse        bool // descend below directories named on the command line
	FollowSymlinks bool // descend into symlinked directories when recursing
}

// VisitedSet holds the canonical real paths of directories already
// expanded. It is owned by the caller and grows monotonically across calls,
// so a directory reachable by several routes (or through a symlink cycle)
// is listed once.
type VisitedSet map[string]struct{}

// NewVisitedSet returns an empty set.
func NewVisitedSet() VisitedSet { return make(VisitedSet) }

// Claim records dir and reports whether it was new.
func (v VisitedSet) Claim(dir string) bool {
	rp := realPath(dir)
	if _, seen := v[rp]; seen {
		return false
	}
	v[rp] = struct{}{}
	return true
}

// realPath resolves symlinks; an unresolvable path falls back to its
// cleaned absolute form so it can still be deduplicated.
func realPath(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	if rp, err := filepath.EvalSymlinks(abs); err == nil {
		return rp
	}
	return abs
}

type walkItem struct {
	path  string
	depth int
}

// Expand turns command-line paths into a flat list of files.
//
// Files pass through unchanged. Directories named on the command line are
// always listed; their subdirectories only with opts.Recurse, and symlinked
// ones only with opts.FollowSymlinks as well. At each level the files come
// first, then each subdirectory in listing order. A directory that cannot
// be read is logged and skipped.
func Expand(paths []string, opts WalkOptions, visited VisitedSet, log *logging.Logger) []string {
	var (
		out   []string
		seen  = make(map[string]bool)
		stack []walkItem
	)
	addFile := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	// Directories are pushed in reverse so they pop in listing order.
	pushDirs := func(dirs []string, depth int) {
		for i := len(dirs) - 1; i >= 0; i-- {
			stack = append(stack, walkItem{path: dirs[i], depth: depth})
		}
	}

	var topDirs []string
	for _, p := range paths {
		if isDirArg(p) {
			topDirs = append(topDirs, p)
		} else {
			addFile(p)
		}
	}
	pushDirs(topDirs, 0)

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visited.Claim(item.path) {
			log.Debug("Already visited %s", item.path)
			continue
		}
		log.Debug("Listing %s (depth %d)", item.path, item.depth)
		entries, err := os.ReadDir(item.path)
		if err != nil {
			log.Warn("Could not open directory %s", item.path)
			continue
		}

		var subdirs []string
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, hiddenPrefix) {
				continue
			}
			full := filepath.Join(item.path, name)
			isLink := e.Type()&os.ModeSymlink != 0
			isDir := e.IsDir()
			if isLink {
				if fi, err := os.Stat(full); err == nil {
					isDir = fi.IsDir()
				}
			}
			if !isDir {
				addFile(full)
				continue
			}
			if opts.Recurse && (opts.FollowSymlinks || !isLink) {
				subdirs = append(subdirs, full)
			}
		}
		pushDirs(subdirs, item.depth+1)
	}
	return out
}

// isDirArg reports whether a command-line path names a directory: it ends
// in a separator or the filesystem says so.
func isDirArg(p string) bool {
	if len(p) > 1 && (strings.HasSuffix(p, "/") || strings.HasSuffix(p, `\`)) {
		return true
	}
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// ExpandPatterns expands wildcard arguments on platforms whose shell does
// not (Windows). Elsewhere the arguments are returned as given. A pattern
// that matches nothing is an error.
func ExpandPatterns(args []string, goos string) ([]string, error) {
	if goos != "windows" {
		return args, nil
	}
	var out []string
	for _, a := range args {
		if !strings.ContainsAny(a, "*?[") {
			out = append(out, a)
			continue
		}
		matches, err := filepath.Glob(a)
		if err != nil || len(matches) == 0 {
			return nil, fmt.Errorf("could not match pattern: %s", a)
		}
		out = append(out, matches...)
	}
	return out, nil
}
