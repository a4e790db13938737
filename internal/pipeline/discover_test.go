package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/dicomtonifti/internal/config"
	"github.com/backmassage/dicomtonifti/internal/logging"
)

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(p, 0o755))
	return p
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func expand(paths []string, opts WalkOptions) []string {
	return Expand(paths, opts, NewVisitedSet(), logging.Nop())
}

func TestExpand_FilesPassThrough(t *testing.T) {
	got := expand([]string{"b.dcm", "a.dcm", "b.dcm"}, WalkOptions{})
	assert.Equal(t, []string{"b.dcm", "a.dcm"}, got, "order kept, duplicates dropped")
}

func TestExpand_NoRecurseListsTopLevelOnly(t *testing.T) {
	dir := t.TempDir()
	f1 := touch(t, dir, "img1.dcm")
	touch(t, dir, "sub", "img2.dcm")

	got := expand([]string{dir}, WalkOptions{})
	assert.Equal(t, []string{f1}, got)
}

func TestExpand_RecurseOrder(t *testing.T) {
	dir := t.TempDir()
	b := touch(t, dir, "b.dcm")
	a := touch(t, dir, "a.dcm")
	x := touch(t, dir, "sub1", "x.dcm")
	deep := touch(t, dir, "sub1", "deeper", "d.dcm")
	y := touch(t, dir, "sub2", "y.dcm")

	got := expand([]string{dir}, WalkOptions{Recurse: true})
	assert.Equal(t, []string{a, b, x, deep, y}, got, "files first, then subdirectories depth-first")
}

func TestExpand_SkipsHidden(t *testing.T) {
	dir := t.TempDir()
	keep := touch(t, dir, "img.dcm")
	touch(t, dir, ".DS_Store")
	touch(t, dir, ".git", "config")

	got := expand([]string{dir}, WalkOptions{Recurse: true})
	assert.Equal(t, []string{keep}, got)
}

func TestExpand_SymlinkCycle(t *testing.T) {
	root := t.TempDir()
	a := mkdir(t, root, "A")
	b := mkdir(t, root, "B")
	fa := touch(t, a, "a.dcm")
	touch(t, b, "b.dcm")
	symlink(t, b, filepath.Join(a, "toB"))
	symlink(t, a, filepath.Join(b, "toA"))

	visited := NewVisitedSet()
	got := Expand([]string{a}, WalkOptions{Recurse: true, FollowSymlinks: true}, visited, logging.Nop())

	assert.Equal(t, []string{fa, filepath.Join(a, "toB", "b.dcm")}, got)
	assert.Len(t, visited, 2, "each real directory is processed once")
}

func TestExpand_SymlinkedDirNotFollowed(t *testing.T) {
	root := t.TempDir()
	a := mkdir(t, root, "A")
	b := mkdir(t, root, "B")
	fa := touch(t, a, "a.dcm")
	touch(t, b, "b.dcm")
	symlink(t, b, filepath.Join(a, "toB"))

	got := expand([]string{a}, WalkOptions{Recurse: true})
	assert.Equal(t, []string{fa}, got)
}

func TestExpand_SymlinkNamedOnCommandLine(t *testing.T) {
	root := t.TempDir()
	b := mkdir(t, root, "B")
	touch(t, b, "b.dcm")
	link := filepath.Join(root, "link")
	symlink(t, b, link)

	got := expand([]string{link}, WalkOptions{})
	assert.Equal(t, []string{filepath.Join(link, "b.dcm")}, got, "top-level directories are always expanded")
}

func TestExpand_VisitedSharedAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	f := touch(t, dir, "img.dcm")
	visited := NewVisitedSet()

	first := Expand([]string{dir, dir + string(filepath.Separator)}, WalkOptions{}, visited, logging.Nop())
	assert.Equal(t, []string{f}, first)

	second := Expand([]string{dir}, WalkOptions{}, visited, logging.Nop())
	assert.Empty(t, second)
}

func TestExpand_UnopenableDirectoryWarns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	var buf bytes.Buffer
	log, err := logging.NewLoggerTo(&cfg, &buf)
	require.NoError(t, err)

	dir := t.TempDir()
	f := touch(t, dir, "img.dcm")
	missing := filepath.Join(dir, "gone") + "/"

	got := Expand([]string{missing, dir}, WalkOptions{}, NewVisitedSet(), log)
	log.Close()

	assert.Equal(t, []string{f}, got, "the walk continues past the failure")
	assert.Contains(t, buf.String(), "Could not open directory "+missing)
}

func TestExpandPatterns(t *testing.T) {
	args := []string{"*.dcm", "x"}
	got, err := ExpandPatterns(args, "linux")
	require.NoError(t, err)
	assert.Equal(t, args, got, "the shell already expanded wildcards")

	dir := t.TempDir()
	a := touch(t, dir, "a.dcm")
	b := touch(t, dir, "b.dcm")
	touch(t, dir, "c.txt")
	got, err = ExpandPatterns([]string{filepath.Join(dir, "*.dcm"), "plain"}, "windows")
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, "plain"}, got)

	pattern := filepath.Join(dir, "*.nii")
	_, err = ExpandPatterns([]string{pattern}, "windows")
	assert.EqualError(t, err, "could not match pattern: "+pattern)
}
