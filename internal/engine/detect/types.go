package detect

import (
	"crosscheck/internal/engine/symbols"
)

type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	}
	return "unknown"
}

type Kind string

const (
	KindImportRemoval  Kind = "import_removal"
	KindFunctionRename Kind = "function_rename"
	KindTypeChange     Kind = "type_change"
	KindVariableRename Kind = "variable_rename"
)

// SemanticConflict is one reported incompatibility between two tasks'
// changes that line-based diffing cannot see. Values are immutable once
// produced; the aggregator owns them only until hand-off.
type SemanticConflict struct {
	Kind     Kind
	Severity Severity
	FilePath string
	// Location is a stable "<kind>:<symbol>" anchor, e.g. "import:List".
	Location string
	// TasksInvolved lists the causing task first, then the affected task.
	TasksInvolved []string
	Symbol        string
	// Line is the first affected line in the using task's version.
	Line       int
	Reason     string
	Suggestion string
}

// CanAutoMerge is always false: semantic findings are advisory/blocking,
// never silently resolved.
func (c SemanticConflict) CanAutoMerge() bool { return false }

// MergeStrategy is always human-required for this engine's output.
func (c SemanticConflict) MergeStrategy() string { return MergeStrategyHumanRequired }

// PairInput is one directional comparison: task A's before/after delta
// inspected against task B's after state. Both directions of a task pair
// are evaluated independently.
type PairInput struct {
	FilePath string
	TaskA    string
	TaskB    string
	ABefore  *symbols.Table
	AAfter   *symbols.Table
	BAfter   *symbols.Table
}

// Detector is one pure pairwise check. Implementations must be stateless
// and safe for concurrent use.
type Detector interface {
	Name() string
	Detect(in PairInput) []SemanticConflict
}

// Options toggles individual detectors and their optional heuristics.
type Options struct {
	ImportRemoval  bool
	FunctionRename bool
	TypeChange     bool
	VariableRename bool
	// InferRenameTarget names the likely new function in rename findings
	// when exactly one candidate matches. Off by default: a wrong guess is
	// worse than no guess.
	InferRenameTarget bool
}

func DefaultOptions() Options {
	return Options{
		ImportRemoval:  true,
		FunctionRename: true,
		TypeChange:     true,
		VariableRename: true,
	}
}

// DefaultDetectors builds the detector set in evaluation order.
func DefaultDetectors(opts Options) []Detector {
	var out []Detector
	if opts.ImportRemoval {
		out = append(out, &ImportRemovalDetector{})
	}
	if opts.FunctionRename {
		out = append(out, &FunctionRenameDetector{InferTarget: opts.InferRenameTarget})
	}
	if opts.TypeChange {
		out = append(out, &TypeChangeDetector{})
	}
	if opts.VariableRename {
		out = append(out, &VariableRenameDetector{})
	}
	return out
}
