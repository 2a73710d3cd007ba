package detect

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"crosscheck/internal/engine/symbols"
	"crosscheck/internal/shared/observability"
	"crosscheck/internal/shared/util"
)

// TaskTables holds one task's extracted before/after tables for the file
// under analysis. Err records why extraction was unavailable; a task with
// a non-nil Err is excluded from pairing rather than failing the run.
type TaskTables struct {
	Before *symbols.Table
	After  *symbols.Table
	Err    error
}

// Result is the aggregated outcome for one file across all task pairs.
type Result struct {
	Conflicts []SemanticConflict
	// Unavailable maps task IDs to the reason their versions could not be
	// analyzed, so callers can surface degraded coverage.
	Unavailable map[string]string
}

// Aggregator runs every detector over every ordered task pair and merges
// the findings into one deduplicated, deterministically ordered slice.
type Aggregator struct {
	detectors []Detector
}

func NewAggregator(detectors []Detector) *Aggregator {
	return &Aggregator{detectors: detectors}
}

type orderedPair struct {
	taskA, taskB string
}

// Analyze evaluates all ordered pairs of usable tasks concurrently. Pair
// evaluation is pure, so each goroutine writes into its own preallocated
// slot and no lock is needed.
func (a *Aggregator) Analyze(ctx context.Context, filePath string, tasks map[string]TaskTables) (Result, error) {
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())
	}()

	unavailable := make(map[string]string)
	usable := make([]string, 0, len(tasks))
	for _, id := range util.SortedStringKeys(tasks) {
		tt := tasks[id]
		if tt.Err != nil {
			unavailable[id] = tt.Err.Error()
			continue
		}
		if tt.Before == nil || tt.After == nil {
			unavailable[id] = "missing before or after version"
			continue
		}
		usable = append(usable, id)
	}

	var pairs []orderedPair
	for _, taskA := range usable {
		for _, taskB := range usable {
			if taskA != taskB {
				pairs = append(pairs, orderedPair{taskA, taskB})
			}
		}
	}
	skipped := len(tasks)*(len(tasks)-1) - len(pairs)
	if skipped > 0 {
		observability.PairsSkippedTotal.Add(float64(skipped))
	}

	slots := make([][]SemanticConflict, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	for i, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in := PairInput{
				FilePath: filePath,
				TaskA:    pair.taskA,
				TaskB:    pair.taskB,
				ABefore:  tasks[pair.taskA].Before,
				AAfter:   tasks[pair.taskA].After,
				BAfter:   tasks[pair.taskB].After,
			}
			for _, det := range a.detectors {
				slots[i] = append(slots[i], det.Detect(in)...)
			}
			observability.PairEvaluationsTotal.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var all []SemanticConflict
	for _, found := range slots {
		all = append(all, found...)
	}
	conflicts := dedupe(all)
	sortConflicts(conflicts)

	for _, c := range conflicts {
		observability.ConflictsDetectedTotal.WithLabelValues(string(c.Kind), c.Severity.String()).Inc()
	}
	return Result{Conflicts: conflicts, Unavailable: unavailable}, nil
}

// dedupKey identifies a finding regardless of which direction of the pair
// produced it: same kind, same symbol, same task set.
func dedupKey(c SemanticConflict) string {
	tasks := append([]string(nil), c.TasksInvolved...)
	sort.Strings(tasks)
	return string(c.Kind) + "\x00" + c.Symbol + "\x00" + strings.Join(tasks, "\x00")
}

func dedupe(conflicts []SemanticConflict) []SemanticConflict {
	seen := make(map[string]struct{}, len(conflicts))
	out := make([]SemanticConflict, 0, len(conflicts))
	for _, c := range conflicts {
		key := dedupKey(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// sortConflicts orders findings for stable output: most severe first,
// then by the tasks and symbol involved.
func sortConflicts(conflicts []SemanticConflict) {
	sort.Slice(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if at, bt := taskAt(a, 0), taskAt(b, 0); at != bt {
			return at < bt
		}
		if at, bt := taskAt(a, 1), taskAt(b, 1); at != bt {
			return at < bt
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Symbol < b.Symbol
	})
}

func taskAt(c SemanticConflict, i int) string {
	if i < len(c.TasksInvolved) {
		return c.TasksInvolved[i]
	}
	return ""
}
