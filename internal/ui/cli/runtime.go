package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	coreapp "crosscheck/internal/core/app"
	"crosscheck/internal/core/config"
	"crosscheck/internal/core/ports"
	"crosscheck/internal/core/watcher"
	"crosscheck/internal/data/history"
	"crosscheck/internal/shared/observability"
	"crosscheck/internal/ui/report"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("crosscheck v%s\n", versionString)
		return 0
	}

	if err := validateModeCompatibility(opts); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	slog.Debug("config loaded", "path", cfgPath)

	if cfg.Watch.Enabled && !opts.ui {
		opts.watch = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	if addr := strings.TrimSpace(cfg.Observability.MetricsAddr); addr != "" {
		obsServer := NewObservabilityServer(addr)
		if err := obsServer.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = obsServer.Stop(shutdownCtx)
		}()
	}

	application, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		return 1
	}

	if cfg.History.Enabled {
		store, err := history.Open(historyPath(cfg))
		if err != nil {
			slog.Error("failed to open history store", "error", err)
			return 1
		}
		defer store.Close()
		application.History = store

		if opts.showHistory {
			return printRecentRuns(ctx, store, opts.historyLimit)
		}
	} else if opts.showHistory {
		fmt.Fprintln(os.Stderr, "--history requires history.enabled=true in the config")
		return 1
	}

	bundles := bundlePaths(opts, cfg)
	if len(bundles) == 0 {
		fmt.Fprintln(os.Stderr, "no bundle to analyze: pass --bundle or set paths.bundle_paths")
		return 1
	}

	if opts.watch {
		return runWatch(ctx, application, cfg, opts, bundles)
	}
	return runOnce(ctx, application, opts, bundles)
}

func validateModeCompatibility(opts cliOptions) error {
	switch opts.format {
	case "summary", "json", "markdown", "tsv":
	default:
		return fmt.Errorf("unknown format %q; use summary, json, markdown or tsv", opts.format)
	}
	if opts.ui && opts.watch {
		return fmt.Errorf("--ui and --watch cannot be combined")
	}
	if opts.ui && opts.out != "" {
		return fmt.Errorf("--ui writes no report; drop --out")
	}
	return nil
}

func runOnce(ctx context.Context, application *coreapp.App, opts cliOptions, bundles []string) int {
	exit := 0
	for _, bundle := range bundles {
		result, err := analyzeBundle(ctx, application, bundle)
		if err != nil {
			slog.Error("analysis failed", "bundle", bundle, "error", err)
			return 1
		}

		if opts.ui {
			if err := runReviewUI(result); err != nil {
				slog.Error("terminal UI failed", "error", err)
				return 1
			}
			continue
		}

		if err := emitReport(result, opts); err != nil {
			slog.Error("failed to write report", "error", err)
			return 1
		}
		if result.TotalConflicts > 0 {
			exit = 3
		}
	}
	return exit
}

func runWatch(ctx context.Context, application *coreapp.App, cfg *config.Config, opts cliOptions, bundles []string) int {
	onChange := func(paths []string) {
		for _, bundle := range paths {
			result, err := analyzeBundle(ctx, application, bundle)
			if err != nil {
				slog.Error("analysis failed", "bundle", bundle, "error", err)
				continue
			}
			if err := emitReport(result, opts); err != nil {
				slog.Error("failed to write report", "error", err)
			}
		}
	}

	w, err := watcher.New(bundles, cfg.Watch.Debounce, onChange)
	if err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}
	defer w.Close()

	// Initial pass before settling into watch mode.
	onChange(bundles)

	slog.Info("watching bundles", "count", len(bundles), "debounce", cfg.Watch.Debounce)
	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		slog.Error("watcher stopped", "error", err)
		return 1
	}
	return 0
}

func analyzeBundle(ctx context.Context, application *coreapp.App, bundle string) (ports.AnalyzeResult, error) {
	req, err := application.LoadBundle(bundle)
	if err != nil {
		return ports.AnalyzeResult{}, err
	}
	return application.Analyze(ctx, req)
}

func emitReport(result ports.AnalyzeResult, opts cliOptions) error {
	var (
		out string
		err error
	)
	switch opts.format {
	case "json":
		out, err = report.NewJSONGenerator().Generate(result)
	case "markdown":
		out, err = report.NewMarkdownGenerator().Generate(result, report.MarkdownOptions{})
	case "tsv":
		out, err = report.NewTSVGenerator().Generate(result)
	default:
		out = report.Summary(result)
	}
	if err != nil {
		return err
	}

	if opts.out == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(opts.out, []byte(out), 0o644)
}

func printRecentRuns(ctx context.Context, store *history.Store, limit int) int {
	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		slog.Error("failed to load run history", "error", err)
		return 1
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return 0
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  files=%d conflicts=%d outcome=%s\n",
			run.StartedAt.Format(time.RFC3339), run.ID, run.FileCount, run.ConflictCount, run.Outcome)
		for _, f := range run.Findings {
			fmt.Printf("    [%s] %s %s:%d %s\n", f.Severity, f.Kind, f.FilePath, f.Line, f.Symbol)
		}
	}
	return 0
}

func bundlePaths(opts cliOptions, cfg *config.Config) []string {
	if strings.TrimSpace(opts.bundle) != "" {
		return []string{opts.bundle}
	}
	return cfg.Paths.BundlePaths
}

func historyPath(cfg *config.Config) string {
	if filepath.IsAbs(cfg.History.Path) {
		return cfg.History.Path
	}
	return filepath.Join(cfg.Paths.StateDir, cfg.History.Path)
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != defaultConfigPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	candidates := []string{defaultConfigPath, "./crosscheck.toml"}
	for _, candidate := range candidates {
		cfg, err := config.Load(candidate)
		if err == nil {
			return cfg, candidate, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", err
		}
	}

	// No config file: run on defaults.
	cfg, err := config.Parse("")
	if err != nil {
		return nil, "", err
	}
	return cfg, "(defaults)", nil
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
				closeFn = func() { _ = f.Close() }
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "crosscheck", "crosscheck.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "crosscheck", "crosscheck.log")
	}
	return filepath.Join(os.TempDir(), "crosscheck.log")
}
