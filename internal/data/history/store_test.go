package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_OpenInitializesSchemaAndSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	first := Run{
		ID:            "run-1",
		StartedAt:     base,
		Duration:      120 * time.Millisecond,
		BundlePath:    "bundles/run.json",
		FileCount:     2,
		ConflictCount: 2,
		Outcome:       OutcomeConflicts,
		Findings: []Finding{
			{
				FilePath: "service.py",
				Kind:     "import_removal",
				Severity: "critical",
				Symbol:   "List",
				Line:     4,
				Tasks:    []string{"task-a", "task-b"},
				Reason:   "Task task-a removed import of 'List'",
			},
			{
				FilePath: "service.py",
				Kind:     "function_rename",
				Severity: "high",
				Symbol:   "foo",
				Line:     6,
				Tasks:    []string{"task-a", "task-b"},
			},
		},
	}
	second := Run{
		ID:        "run-2",
		StartedAt: base.Add(time.Hour),
		FileCount: 1,
		Outcome:   OutcomeClean,
	}

	if err := store.SaveRun(ctx, first); err != nil {
		t.Fatalf("save first run: %v", err)
	}
	if err := store.SaveRun(ctx, second); err != nil {
		t.Fatalf("save second run: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" {
		t.Fatalf("expected newest run first, got %q", runs[0].ID)
	}

	got := runs[1]
	if got.ConflictCount != 2 || got.Outcome != OutcomeConflicts {
		t.Fatalf("run did not roundtrip: %+v", got)
	}
	if got.Duration != 120*time.Millisecond {
		t.Fatalf("duration did not roundtrip: %v", got.Duration)
	}
	if !got.StartedAt.Equal(base) {
		t.Fatalf("timestamp did not roundtrip: %v", got.StartedAt)
	}
	if len(got.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %+v", got.Findings)
	}
	if got.Findings[0].Kind != "function_rename" {
		t.Fatalf("findings should be sorted by kind: %+v", got.Findings)
	}
	f := got.Findings[1]
	if f.Symbol != "List" || len(f.Tasks) != 2 || f.Tasks[0] != "task-a" {
		t.Fatalf("finding did not roundtrip: %+v", f)
	}
}

func TestStore_SaveRunValidation(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveRun(ctx, Run{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
	if err := store.SaveRun(ctx, Run{ID: "run-x", SchemaVersion: 99}); err == nil {
		t.Fatal("expected error for unsupported schema version")
	}
	if err := store.SaveRun(ctx, Run{ID: "run-x"}); err != nil {
		t.Fatalf("minimal run should save with defaults: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Outcome != OutcomeClean {
		t.Fatalf("expected defaulted clean outcome: %+v", runs)
	}
}

func TestStore_PruneKeepsNewestRuns(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	for i := range 5 {
		run := Run{
			ID:        "run-" + string(rune('a'+i)),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Findings: []Finding{
				{FilePath: "service.py", Kind: "import_removal", Severity: "critical", Symbol: "List"},
			},
		}
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}

	if err := store.Prune(ctx, 0); err == nil {
		t.Fatal("expected error for non-positive retention")
	}
	if err := store.Prune(ctx, 2); err != nil {
		t.Fatalf("prune: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs after prune, got %d", len(runs))
	}
	if runs[0].ID != "run-e" || runs[1].ID != "run-d" {
		t.Fatalf("expected newest runs to survive, got %q %q", runs[0].ID, runs[1].ID)
	}

	var orphaned int
	if err := store.db.QueryRow(
		`SELECT COUNT(*) FROM findings WHERE run_id NOT IN (SELECT id FROM runs)`,
	).Scan(&orphaned); err != nil {
		t.Fatalf("count orphaned findings: %v", err)
	}
	if orphaned != 0 {
		t.Fatalf("expected findings to cascade, found %d orphans", orphaned)
	}
}

func TestStore_OpenRejectsDirectory(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected error when path is a directory")
	}
}
