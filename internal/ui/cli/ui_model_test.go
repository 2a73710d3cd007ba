package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"crosscheck/internal/core/ports"
	"crosscheck/internal/engine/detect"
)

func reviewResult() ports.AnalyzeResult {
	conflicts := []detect.SemanticConflict{
		{
			Kind:          detect.KindImportRemoval,
			Severity:      detect.SeverityCritical,
			FilePath:      "service.py",
			Location:      "import:List",
			TasksInvolved: []string{"task-a", "task-b"},
			Symbol:        "List",
			Line:          4,
			Reason:        "Task task-a removed import of 'List'",
			Suggestion:    "Task task-b should import 'List' explicitly",
		},
		{
			Kind:          detect.KindFunctionRename,
			Severity:      detect.SeverityHigh,
			FilePath:      "service.py",
			Location:      "function:foo",
			TasksInvolved: []string{"task-a", "task-b"},
			Symbol:        "foo",
			Line:          6,
			Reason:        "Task task-a removed or renamed function 'foo'",
		},
	}
	return ports.AnalyzeResult{
		RunID:          "run-ui",
		TotalConflicts: len(conflicts),
		Files: []ports.FileResult{{
			Path:      "service.py",
			Conflicts: conflicts,
			Regions:   detect.ToRegions(conflicts),
		}},
	}
}

func TestReviewModel_ListAndDetailFlow(t *testing.T) {
	m := newReviewModel(reviewResult())
	if len(m.conflictList.Items()) != 2 {
		t.Fatalf("expected 2 items, got %d", len(m.conflictList.Items()))
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	state := updated.(reviewModel)
	if !state.showDetail {
		t.Fatal("enter should open the detail pane")
	}

	view := state.View()
	if !strings.Contains(view, "import:List") {
		t.Errorf("detail pane should show the selected location:\n%s", view)
	}
	if !strings.Contains(view, "Task task-b should import 'List' explicitly") {
		t.Errorf("detail pane should show the suggestion:\n%s", view)
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyEsc})
	state = updated.(reviewModel)
	if state.showDetail {
		t.Fatal("esc should close the detail pane")
	}

	_, cmd := state.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
}

func TestConflictItemStrings(t *testing.T) {
	item := conflictItem{conflict: reviewResult().Files[0].Conflicts[0]}
	if got := item.Title(); got != "[critical] import_removal: List" {
		t.Errorf("title = %q", got)
	}
	if !strings.Contains(item.Description(), "service.py:4") {
		t.Errorf("description = %q", item.Description())
	}
	if !strings.Contains(item.FilterValue(), "import_removal") {
		t.Errorf("filter value = %q", item.FilterValue())
	}
}
