package detect

// VariableRenameDetector is an extension point for flagging module-level
// variables renamed by one task while another still reads the old name.
// Plain variable reads are too noisy to report without data-flow
// tracking, so it currently yields nothing; the registration keeps the
// detector toggle and kind stable for when the heuristic lands.
type VariableRenameDetector struct{}

func (d *VariableRenameDetector) Name() string { return string(KindVariableRename) }

func (d *VariableRenameDetector) Detect(in PairInput) []SemanticConflict {
	return nil
}
