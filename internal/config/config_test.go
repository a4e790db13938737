package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/data/nifti", "/data/nifti"},
		{"single trailing slash", "/data/nifti/", "/data/nifti"},
		{"multiple trailing slashes", "/data/nifti///", "/data/nifti"},
		{"root path", "/", "/"},
		{"relative path", "output", "output"},
		{"relative with slash", "output/", "output"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDirArg(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate_ColorMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    ColorMode
		wantErr bool
	}{
		{"auto is valid", ColorAuto, false},
		{"always is valid", ColorAlways, false},
		{"never is valid", ColorNever, false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "rainbow", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Output = "out.nii"
			cfg.Inputs = []string{"a.dcm"}
			cfg.ColorMode = tt.mode
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RequiresOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inputs = []string{"a.dcm"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output file")

	cfg.ListOnly = true
	assert.NoError(t, cfg.Validate(), "--list does not need -o")
}

func TestValidate_RequiresInputs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "out.nii"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestValidateOutput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "out.nii")

	tests := []struct {
		name    string
		batch   bool
		output  string
		wantErr bool
	}{
		{"batch into directory", true, dir, false},
		{"batch into missing directory", true, filepath.Join(dir, "missing"), true},
		{"batch into file path", true, file, true},
		{"single into file", false, file, false},
		{"single into directory", false, dir, true},
		{"single with trailing slash", false, filepath.Join(dir, "new") + "/", true},
		{"single with trailing backslash", false, `C:\out\`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Batch = tt.batch
			cfg.Output = tt.output
			err := cfg.ValidateOutput()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestDefaultConfig_AllOptionsOff(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Compress)
	assert.False(t, cfg.Recurse)
	assert.False(t, cfg.FollowSymlinks)
	assert.False(t, cfg.Batch)
	assert.False(t, cfg.NoSliceReordering)
	assert.False(t, cfg.NoQForm)
	assert.False(t, cfg.NoSForm)
	assert.Equal(t, ColorAuto, cfg.ColorMode)
}

func TestLoadEnvironment_EnvVars(t *testing.T) {
	t.Setenv("DICOMTONIFTI_COMPRESS", "true")
	t.Setenv("DICOMTONIFTI_NO_SLICE_REORDERING", "1")
	t.Setenv("DICOMTONIFTI_OUTPUT", "/tmp/out")

	cfg := DefaultConfig()
	require.NoError(t, LoadEnvironment(&cfg))
	assert.True(t, cfg.Compress)
	assert.True(t, cfg.NoSliceReordering)
	assert.False(t, cfg.Recurse)
	assert.Equal(t, "/tmp/out", cfg.Output)
	assert.Equal(t, ColorAuto, cfg.ColorMode)
}

func TestLoadEnvironment_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dicomtonifti.yaml")
	content := "recurse: true\nbatch: true\nfollow-symlinks: true\ncolor: never\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("DICOMTONIFTI_CONFIG", path)

	cfg := DefaultConfig()
	require.NoError(t, LoadEnvironment(&cfg))
	assert.True(t, cfg.Recurse)
	assert.True(t, cfg.Batch)
	assert.True(t, cfg.FollowSymlinks)
	assert.Equal(t, ColorNever, cfg.ColorMode)
}

func TestLoadEnvironment_List(t *testing.T) {
	t.Setenv("DICOMTONIFTI_LIST", "true")
	cfg := DefaultConfig()
	require.NoError(t, LoadEnvironment(&cfg))
	assert.True(t, cfg.ListOnly)

	path := filepath.Join(t.TempDir(), "dicomtonifti.yaml")
	require.NoError(t, os.WriteFile(path, []byte("list: true\n"), 0o644))
	t.Setenv("DICOMTONIFTI_LIST", "")
	t.Setenv("DICOMTONIFTI_CONFIG", path)
	cfg = DefaultConfig()
	require.NoError(t, LoadEnvironment(&cfg))
	assert.True(t, cfg.ListOnly, "config file key")
}

func TestLoadEnvironment_MissingConfigFile(t *testing.T) {
	t.Setenv("DICOMTONIFTI_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	cfg := DefaultConfig()
	assert.Error(t, LoadEnvironment(&cfg))
}

func TestLoadEnvironment_FlagsWin(t *testing.T) {
	t.Setenv("DICOMTONIFTI_OUTPUT", "/env/out.nii")
	cfg := DefaultConfig()
	require.NoError(t, LoadEnvironment(&cfg))
	require.NoError(t, ParseFlags(&cfg, []string{"-o", "/flag/out.nii", "a.dcm"}))
	assert.Equal(t, "/flag/out.nii", cfg.Output)
}
