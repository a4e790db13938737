package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. DICOMTONIFTI_COMPRESS.
const EnvPrefix = "DICOMTONIFTI"

// boolKeys maps config keys (the long flag names) to their Config fields.
func boolKeys(cfg *Config) map[string]*bool {
	return map[string]*bool{
		"compress":             &cfg.Compress,
		"recurse":              &cfg.Recurse,
		"follow-symlinks":      &cfg.FollowSymlinks,
		"batch":                &cfg.Batch,
		"no-slice-reordering":  &cfg.NoSliceReordering,
		"no-row-reordering":    &cfg.NoRowReordering,
		"no-column-reordering": &cfg.NoColumnReordering,
		"no-qform":             &cfg.NoQForm,
		"no-sform":             &cfg.NoSForm,
		"dry-run":              &cfg.DryRun,
		"list":                 &cfg.ListOnly,
		"silent":               &cfg.Silent,
		"verbose":              &cfg.Verbose,
	}
}

// LoadEnvironment layers environment variables and an optional config file
// (named by DICOMTONIFTI_CONFIG; YAML, TOML or JSON by extension) over cfg.
// Call it before [ParseFlags] so command-line flags win.
func LoadEnvironment(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	bools := boolKeys(cfg)
	for key, p := range bools {
		v.SetDefault(key, *p)
	}
	v.SetDefault("output", cfg.Output)
	v.SetDefault("manifest", cfg.Manifest)
	v.SetDefault("log", cfg.LogFile)
	v.SetDefault("color", string(cfg.ColorMode))

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	for key, p := range bools {
		*p = v.GetBool(key)
	}
	cfg.Output = v.GetString("output")
	cfg.Manifest = v.GetString("manifest")
	cfg.LogFile = v.GetString("log")
	cfg.ColorMode = ColorMode(strings.ToLower(v.GetString("color")))
	return nil
}
