package detect

import (
	"fmt"
	"sort"

	"crosscheck/internal/shared/util"
)

// ImportRemovalDetector reports imports that task A deleted while task B's
// surviving code still reads the binding without importing it itself.
type ImportRemovalDetector struct{}

func (d *ImportRemovalDetector) Name() string { return string(KindImportRemoval) }

func (d *ImportRemovalDetector) Detect(in PairInput) []SemanticConflict {
	if in.ABefore == nil || in.AAfter == nil || in.BAfter == nil {
		return nil
	}

	removed := make([]string, 0)
	for name := range in.ABefore.Imports {
		if !in.AAfter.HasImport(name) {
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)

	var conflicts []SemanticConflict
	for _, name := range removed {
		usageLines := in.BAfter.Usages[name]
		if len(usageLines) == 0 {
			// B removed or never used the symbol: no usage, no obligation.
			continue
		}
		if in.BAfter.HasImport(name) {
			// B supplies its own binding.
			continue
		}
		conflicts = append(conflicts, SemanticConflict{
			Kind:          KindImportRemoval,
			Severity:      SeverityCritical,
			FilePath:      in.FilePath,
			Location:      "import:" + name,
			TasksInvolved: []string{in.TaskA, in.TaskB},
			Symbol:        name,
			Line:          usageLines[0],
			Reason: fmt.Sprintf(
				"Task %s removed import of '%s', but task %s uses it at line(s) %s without importing it",
				in.TaskA, name, in.TaskB, util.JoinInts(usageLines, ", ")),
			Suggestion: fmt.Sprintf("Task %s should import '%s' explicitly", in.TaskB, name),
		})
	}
	return conflicts
}
