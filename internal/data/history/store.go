package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) SaveRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.SchemaVersion == 0 {
		run.SchemaVersion = SchemaVersion
	}
	if run.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported run schema version %d", run.SchemaVersion)
	}
	if strings.TrimSpace(run.Outcome) == "" {
		run.Outcome = OutcomeClean
	}

	return s.withRetry("save run", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, schema_version, started_at_utc, duration_ms, bundle_path, file_count, conflict_count, outcome)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
			run.ID,
			run.SchemaVersion,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.Duration.Milliseconds(),
			run.BundlePath,
			run.FileCount,
			run.ConflictCount,
			run.Outcome,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, f := range run.Findings {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO findings (run_id, file_path, kind, severity, symbol, line, tasks, reason)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
				run.ID, f.FilePath, f.Kind, f.Severity, f.Symbol, f.Line,
				strings.Join(f.Tasks, ","), f.Reason,
			); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

// Prune deletes all but the newest keep runs. Findings cascade through
// the run_id foreign key.
func (s *Store) Prune(ctx context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep <= 0 {
		return fmt.Errorf("retention count must be positive, got %d", keep)
	}

	return s.withRetry("prune runs", func() error {
		_, err := s.db.ExecContext(ctx, `
DELETE FROM runs
WHERE id NOT IN (
  SELECT id FROM runs ORDER BY started_at_utc DESC, id DESC LIMIT ?
)
`, keep)
		return err
	})
}

// RecentRuns returns up to limit runs, newest first, findings attached.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT id, schema_version, started_at_utc, duration_ms, bundle_path, file_count, conflict_count, outcome
FROM runs
ORDER BY started_at_utc DESC, id DESC
LIMIT ?
`, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var (
			run        Run
			startedRaw string
			durationMS int64
		)
		if err := rows.Scan(
			&run.ID,
			&run.SchemaVersion,
			&startedRaw,
			&durationMS,
			&run.BundlePath,
			&run.FileCount,
			&run.ConflictCount,
			&run.Outcome,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
		}
		run.StartedAt = started.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	for i := range runs {
		findings, err := s.loadFindings(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Findings = findings
	}
	return runs, nil
}

func (s *Store) loadFindings(ctx context.Context, runID string) ([]Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT file_path, kind, severity, symbol, line, tasks, reason
FROM findings
WHERE run_id = ?
ORDER BY file_path ASC, kind ASC, symbol ASC
`, runID)
	if err != nil {
		return nil, fmt.Errorf("load findings for run %q: %w", runID, err)
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var (
			f        Finding
			tasksRaw string
		)
		if err := rows.Scan(&f.FilePath, &f.Kind, &f.Severity, &f.Symbol, &f.Line, &tasksRaw, &f.Reason); err != nil {
			return nil, fmt.Errorf("scan finding row: %w", err)
		}
		if tasksRaw != "" {
			f.Tasks = strings.Split(tasksRaw, ",")
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate finding rows: %w", err)
	}
	return findings, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
