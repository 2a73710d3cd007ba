package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"crosscheck/internal/core/errors"
	"crosscheck/internal/core/ports"
	"crosscheck/internal/data/history"
	"crosscheck/internal/engine/detect"
	"crosscheck/internal/engine/symbols"
	"crosscheck/internal/shared/observability"
	"crosscheck/internal/shared/util"
)

// Analyze runs the full pipeline for one request: per-task symbol table
// extraction, pairwise detection, region conversion and optional history
// persistence. Broken task versions degrade their file's coverage
// instead of failing the run.
func (a *App) Analyze(ctx context.Context, req ports.AnalyzeRequest) (ports.AnalyzeResult, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return ports.AnalyzeResult{}, err
	}

	ctx, span := observability.Tracer.Start(ctx, "analyze")
	defer span.End()

	result := ports.AnalyzeResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	span.SetAttributes(observability.SpanAttrs(
		"run_id", result.RunID,
		"files", fmt.Sprintf("%d", len(req.Files)),
	)...)

	for _, file := range req.Files {
		if a.excluded(file.Path) {
			slog.Debug("file excluded", "path", file.Path)
			continue
		}

		fileResult, err := a.analyzeFile(ctx, file)
		if err != nil {
			observability.AnalysisRunsTotal.WithLabelValues("error").Inc()
			return ports.AnalyzeResult{}, err
		}
		result.Files = append(result.Files, fileResult)
		result.TotalConflicts += len(fileResult.Conflicts)
		if len(fileResult.Unavailable) > 0 {
			result.Degraded = true
		}
	}

	result.Duration = time.Since(result.StartedAt)

	outcome := history.OutcomeClean
	switch {
	case result.Degraded:
		outcome = history.OutcomeDegraded
	case result.TotalConflicts > 0:
		outcome = history.OutcomeConflicts
	}
	observability.AnalysisRunsTotal.WithLabelValues(outcome).Inc()

	if a.History != nil {
		if err := a.History.SaveRun(ctx, buildRun(result, req.BundlePath, outcome)); err != nil {
			// Persistence is best effort; the findings already exist.
			slog.Warn("failed to persist run", "run_id", result.RunID, "error", err)
		} else if err := a.History.Prune(ctx, a.Config.History.Retention); err != nil {
			slog.Warn("failed to prune history", "error", err)
		}
	}

	slog.Info("analysis complete",
		"run_id", result.RunID,
		"files", len(result.Files),
		"conflicts", result.TotalConflicts,
		"degraded", result.Degraded,
		"duration", result.Duration)

	return result, nil
}

func (a *App) analyzeFile(ctx context.Context, file ports.FileChangeSet) (ports.FileResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "analyze_file")
	defer span.End()
	span.SetAttributes(observability.SpanAttrs(
		"path", file.Path,
		"language", a.Parser.Language(file.Path),
	)...)

	taskIDs := util.SortedStringKeys(file.Tasks)
	tables := make([]detect.TaskTables, len(taskIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.Limits.ExtractionParallel)
	for i, taskID := range taskIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tt, err := a.extractTask(file.Path, file.Tasks[taskID])
			if err != nil {
				return err
			}
			tables[i] = tt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ports.FileResult{}, err
	}

	byTask := make(map[string]detect.TaskTables, len(taskIDs))
	for i, taskID := range taskIDs {
		byTask[taskID] = tables[i]
	}

	res, err := a.aggregator.Analyze(ctx, file.Path, byTask)
	if err != nil {
		return ports.FileResult{}, err
	}

	return ports.FileResult{
		Path:        file.Path,
		Conflicts:   res.Conflicts,
		Regions:     detect.ToRegions(res.Conflicts),
		Unavailable: res.Unavailable,
	}, nil
}

// extractTask builds both symbol tables for one task. Recoverable
// failures are folded into TaskTables.Err so the aggregator skips the
// task; invariant and internal errors abort the run.
func (a *App) extractTask(path string, change ports.TaskChange) (detect.TaskTables, error) {
	before, err := a.extractVersion(path, change.Before)
	if err != nil {
		return degradeOrFail(err)
	}
	after, err := a.extractVersion(path, change.After)
	if err != nil {
		return degradeOrFail(err)
	}
	return detect.TaskTables{Before: before, After: after}, nil
}

func degradeOrFail(err error) (detect.TaskTables, error) {
	if errors.Recoverable(err) {
		return detect.TaskTables{Err: err}, nil
	}
	return detect.TaskTables{}, err
}

func (a *App) extractVersion(path, content string) (*symbols.Table, error) {
	if int64(len(content)) > a.Config.Limits.MaxFileBytes {
		return nil, errors.AddContext(
			errors.New(errors.CodeValidationError,
				fmt.Sprintf("file version exceeds %d bytes", a.Config.Limits.MaxFileBytes)),
			errors.CtxPath, path)
	}
	return a.Parser.ExtractTable(path, []byte(content))
}

func buildRun(result ports.AnalyzeResult, bundlePath, outcome string) history.Run {
	run := history.Run{
		ID:            result.RunID,
		StartedAt:     result.StartedAt,
		Duration:      result.Duration,
		BundlePath:    bundlePath,
		FileCount:     len(result.Files),
		ConflictCount: result.TotalConflicts,
		Outcome:       outcome,
	}
	for _, file := range result.Files {
		for _, c := range file.Conflicts {
			run.Findings = append(run.Findings, history.Finding{
				FilePath: c.FilePath,
				Kind:     string(c.Kind),
				Severity: c.Severity.String(),
				Symbol:   c.Symbol,
				Line:     c.Line,
				Tasks:    c.TasksInvolved,
				Reason:   c.Reason,
			})
		}
	}
	return run
}
