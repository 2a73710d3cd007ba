package detect

import (
	"fmt"
	"sort"

	"crosscheck/internal/engine/symbols"
	"crosscheck/internal/shared/util"
)

// FunctionRenameDetector reports functions that disappeared from task A's
// after state while task B still calls them under the old name.
//
// The new name is not inferred by default; this detector reports the
// break, not the rename target. With InferTarget enabled it names a
// candidate only when exactly one newly added function carries the same
// return annotation as the removed one.
type FunctionRenameDetector struct {
	InferTarget bool
}

func (d *FunctionRenameDetector) Name() string { return string(KindFunctionRename) }

func (d *FunctionRenameDetector) Detect(in PairInput) []SemanticConflict {
	if in.ABefore == nil || in.AAfter == nil || in.BAfter == nil {
		return nil
	}

	removed := make([]string, 0)
	for name, def := range in.ABefore.Definitions {
		if def.Kind != symbols.KindFunction {
			continue
		}
		if _, stillThere := in.AAfter.Definitions[name]; !stillThere {
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)

	var conflicts []SemanticConflict
	for _, name := range removed {
		callLines := in.BAfter.Calls[name]
		if len(callLines) == 0 {
			continue
		}
		if in.BAfter.DefinesFunction(name) {
			// B (re)defines the function itself; its calls resolve locally.
			continue
		}

		suggestion := fmt.Sprintf("Update calls to '%s' in task %s to the function's new name", name, in.TaskB)
		reason := fmt.Sprintf(
			"Task %s removed or renamed function '%s', but task %s still calls it at line(s) %s",
			in.TaskA, name, in.TaskB, util.JoinInts(callLines, ", "))
		if d.InferTarget {
			if target, ok := d.inferTarget(in, name); ok {
				reason = fmt.Sprintf(
					"Task %s renamed function '%s' to '%s', but task %s still calls '%s' at line(s) %s",
					in.TaskA, name, target, in.TaskB, name, util.JoinInts(callLines, ", "))
				suggestion = fmt.Sprintf("Update function calls from '%s' to '%s' in task %s", name, target, in.TaskB)
			}
		}

		conflicts = append(conflicts, SemanticConflict{
			Kind:          KindFunctionRename,
			Severity:      SeverityHigh,
			FilePath:      in.FilePath,
			Location:      "function:" + name,
			TasksInvolved: []string{in.TaskA, in.TaskB},
			Symbol:        name,
			Line:          callLines[0],
			Reason:        reason,
			Suggestion:    suggestion,
		})
	}
	return conflicts
}

// inferTarget looks for exactly one function added by task A whose return
// annotation matches the removed function's. Anything ambiguous yields no
// guess.
func (d *FunctionRenameDetector) inferTarget(in PairInput, removed string) (string, bool) {
	oldSig, ok := in.ABefore.Signatures[removed]
	if !ok {
		return "", false
	}

	var candidates []string
	for name, def := range in.AAfter.Definitions {
		if def.Kind != symbols.KindFunction {
			continue
		}
		if _, existed := in.ABefore.Definitions[name]; existed {
			continue
		}
		if in.AAfter.Signatures[name] == oldSig {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) != 1 {
		return "", false
	}
	return candidates[0], true
}
