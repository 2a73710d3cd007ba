package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crosscheck/internal/core/config"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{
		"-bundle", "bundles/run.json",
		"-format", "json",
		"-out", "report.json",
		"-verbose",
	})
	if err != nil {
		t.Fatal(err)
	}
	if opts.bundle != "bundles/run.json" || opts.format != "json" || opts.out != "report.json" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if !opts.verbose {
		t.Error("verbose should be set")
	}
	if opts.watch || opts.ui {
		t.Error("watch/ui should default off")
	}
}

func TestParseOptions_RejectsUnknownFlag(t *testing.T) {
	if _, err := parseOptions([]string{"-no-such-flag"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateModeCompatibility(t *testing.T) {
	if err := validateModeCompatibility(cliOptions{format: "summary"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := validateModeCompatibility(cliOptions{format: "xml"})
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("unexpected error: %v", err)
	}

	err = validateModeCompatibility(cliOptions{format: "summary", ui: true, watch: true})
	if err == nil || !strings.Contains(err.Error(), "cannot be combined") {
		t.Fatalf("unexpected error: %v", err)
	}

	err = validateModeCompatibility(cliOptions{format: "summary", ui: true, out: "x.md"})
	if err == nil {
		t.Fatal("expected error for --ui with --out")
	}
}

func TestBundlePaths_FlagOverridesConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Paths.BundlePaths = []string{"a.json", "b.json"}

	got := bundlePaths(cliOptions{bundle: "override.json"}, cfg)
	if len(got) != 1 || got[0] != "override.json" {
		t.Fatalf("unexpected bundles: %v", got)
	}

	got = bundlePaths(cliOptions{}, cfg)
	if len(got) != 2 {
		t.Fatalf("unexpected bundles: %v", got)
	}
}

func TestHistoryPath(t *testing.T) {
	cfg := &config.Config{}
	cfg.Paths.StateDir = "data/state"
	cfg.History.Path = "runs.db"
	if got := historyPath(cfg); got != filepath.Join("data/state", "runs.db") {
		t.Fatalf("unexpected history path: %q", got)
	}

	cfg.History.Path = "/var/lib/crosscheck/runs.db"
	if got := historyPath(cfg); got != cfg.History.Path {
		t.Fatalf("absolute path should pass through: %q", got)
	}
}

func TestLoadConfig_FallsBackToDefaults(t *testing.T) {
	tmp := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, path, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("defaults should load without a file: %v", err)
	}
	if path != "(defaults)" {
		t.Errorf("unexpected source: %q", path)
	}
	if cfg.Version != 1 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestRunOnceEndToEnd(t *testing.T) {
	dir := t.TempDir()
	bundlePath := filepath.Join(dir, "bundle.json")
	bundle := map[string]any{
		"version": 1,
		"files": []map[string]any{{
			"path": "service.py",
			"tasks": map[string]any{
				"task-a": map[string]any{
					"before": "from helpers import List\n\ndef foo() -> List[int]:\n    return [1]\n",
					"after":  "def bar() -> List[int]:\n    return [1]\n",
				},
				"task-b": map[string]any{
					"before": "from helpers import List\n\ndef foo() -> List[int]:\n    return [1]\n",
					"after":  "result = foo()\n",
				},
			},
		}},
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bundlePath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(dir, "report.json")
	code := Run([]string{"-bundle", bundlePath, "-format", "json", "-out", outPath})
	if code != 3 {
		t.Fatalf("conflicts should exit 3, got %d", code)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var doc struct {
		Files []struct {
			Regions []map[string]any `json:"regions"`
		} `json:"files"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(doc.Files) != 1 || len(doc.Files[0].Regions) != 2 {
		t.Fatalf("expected 2 regions in report: %s", raw)
	}
}
