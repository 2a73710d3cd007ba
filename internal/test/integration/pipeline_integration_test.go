package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscheck/internal/core/app"
	"crosscheck/internal/core/config"
	"crosscheck/internal/data/history"
	"crosscheck/internal/ui/report"
)

func writeTestBundle(t *testing.T, dir string) string {
	bundle := `{
  "version": 1,
  "files": [
    {
      "path": "service.py",
      "tasks": {
        "task-a": {
          "before": "from helpers import List\n\ndef foo() -> List[int]:\n    return [1]\n",
          "after": "def bar() -> List[int]:\n    return [1]\n"
        },
        "task-b": {
          "before": "from helpers import List\n\ndef foo() -> List[int]:\n    return [1]\n",
          "after_path": "task_b_after.py"
        }
      }
    }
  ]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "task_b_after.py"),
		[]byte("def consume(items: List[int]) -> None:\n    pass\n\nresult = foo()\n"), 0o644))

	path := filepath.Join(dir, "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(bundle), 0o644))
	return path
}

func TestPipeline_BundleToReportAndHistory(t *testing.T) {
	dir := t.TempDir()
	bundlePath := writeTestBundle(t, dir)

	cfg, err := config.Parse("")
	require.NoError(t, err)

	application, err := app.New(cfg)
	require.NoError(t, err)

	store, err := history.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()
	application.History = store

	req, err := application.LoadBundle(bundlePath)
	require.NoError(t, err)
	require.Len(t, req.Files, 1)

	ctx := context.Background()
	result, err := application.Analyze(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalConflicts)
	assert.False(t, result.Degraded)

	regions := result.Files[0].Regions
	require.Len(t, regions, 2)
	assert.Equal(t, "critical", regions[0].Severity)
	assert.False(t, regions[0].CanAutoMerge)
	assert.Equal(t, "human_required", regions[0].MergeStrategy)
	assert.Contains(t, regions[0].Reason, "[semantic: import_removal]")
	assert.Equal(t, "high", regions[1].Severity)
	assert.Contains(t, regions[1].Reason, "[semantic: function_rename]")

	// The run was persisted with its findings.
	runs, err := store.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, history.OutcomeConflicts, runs[0].Outcome)
	assert.Len(t, runs[0].Findings, 2)

	// Every renderer accepts the same result.
	md, err := report.NewMarkdownGenerator().Generate(result, report.MarkdownOptions{})
	require.NoError(t, err)
	assert.Contains(t, md, "`service.py`")

	tsv, err := report.NewTSVGenerator().Generate(result)
	require.NoError(t, err)
	assert.Contains(t, tsv, "human_required")

	jsonOut, err := report.NewJSONGenerator().Generate(result)
	require.NoError(t, err)
	assert.Contains(t, jsonOut, result.RunID)
}

func TestPipeline_DegradedRunPersistsOutcome(t *testing.T) {
	dir := t.TempDir()
	bundle := `{
  "version": 1,
  "files": [
    {
      "path": "service.py",
      "tasks": {
        "task-a": {"before": "x = 1\n", "after": "y = 1\n"},
        "task-b": {"before": "x = 1\n", "after": "z = x\n"},
        "task-c": {"before": "x = 1\n", "after": "def broken(:\n"}
      }
    }
  ]
}`
	bundlePath := filepath.Join(dir, "bundle.json")
	require.NoError(t, os.WriteFile(bundlePath, []byte(bundle), 0o644))

	cfg, err := config.Parse("")
	require.NoError(t, err)
	application, err := app.New(cfg)
	require.NoError(t, err)

	store, err := history.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()
	application.History = store

	ctx := context.Background()
	req, err := application.LoadBundle(bundlePath)
	require.NoError(t, err)
	result, err := application.Analyze(ctx, req)
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Contains(t, result.Files[0].Unavailable, "task-c")

	runs, err := store.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, history.OutcomeDegraded, runs[0].Outcome)
}
