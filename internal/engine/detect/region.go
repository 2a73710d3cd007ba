package detect

// MergeStrategyHumanRequired marks a region that must be resolved by a
// person; the engine never emits any other strategy.
const MergeStrategyHumanRequired = "human_required"

// ChangeType is the external vocabulary for what each involved task did.
type ChangeType string

const (
	ChangeRemoveImport   ChangeType = "remove_import"
	ChangeRenameFunction ChangeType = "rename_function"
	ChangeModifyFunction ChangeType = "modify_function"
	ChangeModifyVariable ChangeType = "modify_variable"
	ChangeUnknown        ChangeType = "unknown"
)

// ConflictRegion is the interchange shape consumed by merge tooling.
// It flattens a SemanticConflict into the fields merge planners already
// understand, always with auto-merge disabled.
type ConflictRegion struct {
	FilePath      string       `json:"file_path"`
	Location      string       `json:"location"`
	TasksInvolved []string     `json:"tasks_involved"`
	ChangeTypes   []ChangeType `json:"change_types"`
	Severity      string       `json:"severity"`
	CanAutoMerge  bool         `json:"can_auto_merge"`
	MergeStrategy string       `json:"merge_strategy"`
	Reason        string       `json:"reason"`
	LineNumber    int          `json:"line_number"`
}

func changeTypeFor(kind Kind) ChangeType {
	switch kind {
	case KindImportRemoval:
		return ChangeRemoveImport
	case KindFunctionRename:
		return ChangeRenameFunction
	case KindTypeChange:
		return ChangeModifyFunction
	case KindVariableRename:
		return ChangeModifyVariable
	}
	return ChangeUnknown
}

// ToRegion converts a conflict to the external region shape. The reason
// keeps a "[semantic: <kind>]" prefix so mixed reports can tell these
// findings apart from textual overlaps.
func ToRegion(c SemanticConflict) ConflictRegion {
	reason := "[semantic: " + string(c.Kind) + "] " + c.Reason
	if c.Suggestion != "" {
		reason += " Suggestion: " + c.Suggestion
	}

	ct := changeTypeFor(c.Kind)
	changeTypes := make([]ChangeType, len(c.TasksInvolved))
	for i := range c.TasksInvolved {
		changeTypes[i] = ct
	}

	return ConflictRegion{
		FilePath:      c.FilePath,
		Location:      c.Location,
		TasksInvolved: append([]string(nil), c.TasksInvolved...),
		ChangeTypes:   changeTypes,
		Severity:      c.Severity.String(),
		CanAutoMerge:  c.CanAutoMerge(),
		MergeStrategy: c.MergeStrategy(),
		Reason:        reason,
		LineNumber:    c.Line,
	}
}

// ToRegions maps a slice of conflicts preserving order.
func ToRegions(conflicts []SemanticConflict) []ConflictRegion {
	regions := make([]ConflictRegion, 0, len(conflicts))
	for _, c := range conflicts {
		regions = append(regions, ToRegion(c))
	}
	return regions
}
