package detect

import (
	"fmt"
	"sort"
	"strings"

	"crosscheck/internal/shared/util"
)

// TypeChangeDetector reports functions whose return annotation changed in
// task A while task B still calls them and may rely on the old contract.
type TypeChangeDetector struct{}

func (d *TypeChangeDetector) Name() string { return string(KindTypeChange) }

func (d *TypeChangeDetector) Detect(in PairInput) []SemanticConflict {
	if in.ABefore == nil || in.AAfter == nil || in.BAfter == nil {
		return nil
	}

	changed := make([]string, 0)
	for name, oldSig := range in.ABefore.Signatures {
		newSig, ok := in.AAfter.Signatures[name]
		if !ok || newSig == oldSig {
			continue
		}
		changed = append(changed, name)
	}
	sort.Strings(changed)

	var conflicts []SemanticConflict
	for _, name := range changed {
		callLines := in.BAfter.Calls[name]
		if len(callLines) == 0 {
			continue
		}

		oldSig := renderAnnotation(in.ABefore.Signatures[name])
		newSig := renderAnnotation(in.AAfter.Signatures[name])
		reason := fmt.Sprintf(
			"Task %s changed the return type of '%s' from %s to %s, but task %s calls it at line(s) %s",
			in.TaskA, name, oldSig, newSig, in.TaskB, util.JoinInts(callLines, ", "))
		if introducesNullability(in.ABefore.Signatures[name], in.AAfter.Signatures[name]) {
			reason += "; the new type admits a null value the callers may not handle"
		}

		conflicts = append(conflicts, SemanticConflict{
			Kind:          KindTypeChange,
			Severity:      SeverityMedium,
			FilePath:      in.FilePath,
			Location:      "function:" + name,
			TasksInvolved: []string{in.TaskA, in.TaskB},
			Symbol:        name,
			Line:          callLines[0],
			Reason:        reason,
			Suggestion: fmt.Sprintf(
				"Review call sites of '%s' in task %s against the new return type %s",
				name, in.TaskB, newSig),
		})
	}
	return conflicts
}

func renderAnnotation(sig string) string {
	if sig == "" {
		return "(untyped)"
	}
	return "'" + sig + "'"
}

// introducesNullability is a coarse textual check: the new annotation
// mentions a null-ish type the old one did not.
func introducesNullability(oldSig, newSig string) bool {
	for _, tok := range []string{"None", "Optional", "null", "undefined"} {
		if strings.Contains(newSig, tok) && !strings.Contains(oldSig, tok) {
			return true
		}
	}
	return false
}
