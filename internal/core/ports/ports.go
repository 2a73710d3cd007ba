package ports

import (
	"context"
	"time"

	"crosscheck/internal/data/history"
	"crosscheck/internal/engine/detect"
)

// TaskChange is one task's before/after text for a single file.
type TaskChange struct {
	Before string
	After  string
}

// FileChangeSet groups every task's versions of one file.
type FileChangeSet struct {
	Path  string
	Tasks map[string]TaskChange
}

// AnalyzeRequest is one full analysis run over a set of files.
type AnalyzeRequest struct {
	// BundlePath records where the request was loaded from, if anywhere.
	BundlePath string
	Files      []FileChangeSet
}

// FileResult carries one file's findings plus any tasks whose versions
// could not be analyzed.
type FileResult struct {
	Path        string
	Conflicts   []detect.SemanticConflict
	Regions     []detect.ConflictRegion
	Unavailable map[string]string
}

// AnalyzeResult summarizes a completed run.
type AnalyzeResult struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	Files          []FileResult
	TotalConflicts int
	// Degraded is true when at least one task version was skipped.
	Degraded bool
}

// AnalysisService is the driving port over bundle loading and semantic
// analysis use cases.
type AnalysisService interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResult, error)
	LoadBundle(path string) (AnalyzeRequest, error)
	SupportedExtensions() []string
}

// HistoryStore abstracts run persistence for trend and review workflows.
type HistoryStore interface {
	SaveRun(ctx context.Context, run history.Run) error
	RecentRuns(ctx context.Context, limit int) ([]history.Run, error)
	Prune(ctx context.Context, keep int) error
	Close() error
}

// BundleWatcher notifies when a watched bundle file settles after a
// burst of writes.
type BundleWatcher interface {
	Start(ctx context.Context) error
	Close() error
}
