package history

import "time"

// Run is one persisted analysis run over a task bundle.
type Run struct {
	ID            string
	SchemaVersion int
	StartedAt     time.Time
	Duration      time.Duration
	BundlePath    string
	FileCount     int
	ConflictCount int
	// Outcome is "clean", "conflicts" or "degraded".
	Outcome  string
	Findings []Finding
}

// Finding is one conflict row attached to a run.
type Finding struct {
	FilePath string
	Kind     string
	Severity string
	Symbol   string
	Line     int
	Tasks    []string
	Reason   string
}

const (
	OutcomeClean     = "clean"
	OutcomeConflicts = "conflicts"
	OutcomeDegraded  = "degraded"
)
