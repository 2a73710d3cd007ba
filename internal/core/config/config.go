package config

import (
	"strings"
	"time"
)

type Config struct {
	Version       int                 `toml:"version"`
	Paths         Paths               `toml:"paths"`
	Languages     map[string]Language `toml:"languages"`
	Detectors     Detectors           `toml:"detectors"`
	Exclude       Exclude             `toml:"exclude"`
	Limits        Limits              `toml:"limits"`
	History       History             `toml:"history"`
	Watch         Watch               `toml:"watch"`
	Observability Observability       `toml:"observability"`
}

type Paths struct {
	StateDir string `toml:"state_dir"`
	// BundlePaths lists task bundle files analyzed in once mode and
	// watched in watch mode.
	BundlePaths []string `toml:"bundle_paths"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
	Filenames  []string `toml:"filenames"`
}

type Detectors struct {
	ImportRemoval     *bool `toml:"import_removal"`
	FunctionRename    *bool `toml:"function_rename"`
	TypeChange        *bool `toml:"type_change"`
	VariableRename    *bool `toml:"variable_rename"`
	InferRenameTarget bool  `toml:"infer_rename_target"`
}

type Exclude struct {
	Files []string `toml:"files"` // Glob patterns matched against bundle file paths
	// TestFiles skips files matching the enabled languages' test-file
	// naming conventions (_test.go, _test.py, .test.js, ...).
	TestFiles bool `toml:"test_files"`
}

type Limits struct {
	MaxFileBytes       int64   `toml:"max_file_bytes"`
	AnalysesPerSecond  float64 `toml:"analyses_per_second"`
	Burst              int     `toml:"burst"`
	ExtractionParallel int     `toml:"extraction_parallel"`
}

type History struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
	Retention   int           `toml:"retention"`
}

type Watch struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}

	if cfg.Limits.MaxFileBytes <= 0 {
		cfg.Limits.MaxFileBytes = 2 << 20
	}
	if cfg.Limits.AnalysesPerSecond <= 0 {
		cfg.Limits.AnalysesPerSecond = 10
	}
	if cfg.Limits.Burst <= 0 {
		cfg.Limits.Burst = 5
	}
	if cfg.Limits.ExtractionParallel <= 0 {
		cfg.Limits.ExtractionParallel = 8
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "history.db"
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}
	if cfg.History.Retention <= 0 {
		cfg.History.Retention = 200
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "crosscheck"
	}
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// Toggles resolves the optional detector switches against their defaults:
// every detector on, rename-target inference off.
func (d Detectors) Toggles() (importRemoval, functionRename, typeChange, variableRename bool) {
	return boolOr(d.ImportRemoval, true),
		boolOr(d.FunctionRename, true),
		boolOr(d.TypeChange, true),
		boolOr(d.VariableRename, true)
}
