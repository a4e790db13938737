package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML record written by --manifest.
type Manifest struct {
	RunID    string         `yaml:"run_id"`
	Started  time.Time      `yaml:"started"`
	Mode     string         `yaml:"mode"`
	DryRun   bool           `yaml:"dry_run,omitempty"`
	Inputs   []string       `yaml:"inputs"`
	Output   string         `yaml:"output"`
	Series   []SeriesRecord `yaml:"series"`
	Error    string         `yaml:"error,omitempty"`
	Finished time.Time      `yaml:"finished"`
}

// SeriesRecord describes one converted series.
type SeriesRecord struct {
	Study           int     `yaml:"study"`
	Series          int     `yaml:"series"`
	Output          string  `yaml:"output"`
	Files           int     `yaml:"files"`
	Dims            [3]int  `yaml:"dims,flow"`
	QFac            float64 `yaml:"qfac"`
	SlicesReordered bool    `yaml:"slices_reordered"`
	Bytes           int64   `yaml:"bytes,omitempty"`
}

// Save writes the manifest to path, creating the parent directory.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
