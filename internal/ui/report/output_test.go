package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"crosscheck/internal/core/ports"
	"crosscheck/internal/engine/detect"
)

func sampleResult() ports.AnalyzeResult {
	conflict := detect.SemanticConflict{
		Kind:          detect.KindImportRemoval,
		Severity:      detect.SeverityCritical,
		FilePath:      "service.py",
		Location:      "import:List",
		TasksInvolved: []string{"task-a", "task-b"},
		Symbol:        "List",
		Line:          4,
		Reason:        "Task task-a removed import of 'List', but task task-b uses it at line(s) 4 without importing it",
		Suggestion:    "Task task-b should import 'List' explicitly",
	}
	return ports.AnalyzeResult{
		RunID:          "run-123",
		StartedAt:      time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC),
		Duration:       80 * time.Millisecond,
		TotalConflicts: 1,
		Degraded:       true,
		Files: []ports.FileResult{{
			Path:        "service.py",
			Conflicts:   []detect.SemanticConflict{conflict},
			Regions:     detect.ToRegions([]detect.SemanticConflict{conflict}),
			Unavailable: map[string]string{"task-c": "parse error at line 2"},
		}},
	}
}

func TestMarkdownGenerator(t *testing.T) {
	md, err := NewMarkdownGenerator().Generate(sampleResult(), MarkdownOptions{
		GeneratedAt: time.Date(2026, 8, 21, 10, 0, 1, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"run_id: run-123",
		"## `service.py`",
		"| critical | import_removal | `List` | 4 | task-a, task-b |",
		"- **List**: Task task-b should import 'List' explicitly",
		"### Skipped tasks",
		"- `task-c`: parse error at line 2",
		"Coverage: degraded",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownGeneratorCleanRun(t *testing.T) {
	md, err := NewMarkdownGenerator().Generate(ports.AnalyzeResult{RunID: "run-0"}, MarkdownOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "No semantic conflicts detected.") {
		t.Errorf("clean run should say so:\n%s", md)
	}
}

func TestTSVGenerator(t *testing.T) {
	tsv, err := NewTSVGenerator().Generate(sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(tsv, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	fields := strings.Split(lines[1], "\t")
	if len(fields) != 9 {
		t.Fatalf("expected 9 columns, got %d: %q", len(fields), lines[1])
	}
	if fields[0] != "service.py" || fields[1] != "critical" || fields[2] != "remove_import" {
		t.Errorf("unexpected row prefix: %q", lines[1])
	}
	if fields[6] != "false" || fields[7] != "human_required" {
		t.Errorf("merge columns wrong: %q", lines[1])
	}
}

func TestJSONGenerator(t *testing.T) {
	out, err := NewJSONGenerator().Generate(sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc["run_id"] != "run-123" || doc["degraded"] != true {
		t.Errorf("unexpected top-level fields: %v", doc)
	}

	files := doc["files"].([]any)
	file := files[0].(map[string]any)
	regions := file["regions"].([]any)
	region := regions[0].(map[string]any)
	if region["can_auto_merge"] != false {
		t.Errorf("region must not be auto-mergeable: %v", region)
	}
	if !strings.HasPrefix(region["reason"].(string), "[semantic: import_removal] ") {
		t.Errorf("reason missing prefix: %v", region["reason"])
	}
}

func TestSummary(t *testing.T) {
	out := Summary(sampleResult())
	if !strings.Contains(out, "1 critical") {
		t.Errorf("summary missing severity counts: %q", out)
	}
	if !strings.Contains(out, "coverage degraded") {
		t.Errorf("summary missing degradation note: %q", out)
	}

	clean := Summary(ports.AnalyzeResult{RunID: "run-0"})
	if !strings.Contains(clean, "No semantic conflicts") {
		t.Errorf("clean summary wrong: %q", clean)
	}
}
