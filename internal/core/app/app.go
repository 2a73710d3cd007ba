package app

import (
	"log/slog"

	"crosscheck/internal/core/config"
	"crosscheck/internal/core/ports"
	"crosscheck/internal/engine/detect"
	"crosscheck/internal/engine/parser"
	"crosscheck/internal/shared/util"
)

// App wires the parser, detectors and rate limiting behind the
// AnalysisService port. History persistence is optional and attached by
// the caller.
type App struct {
	Config     *config.Config
	Parser     *parser.Parser
	aggregator *detect.Aggregator
	limiter    *util.Limiter
	excluded   func(path string) bool
	History    ports.HistoryStore
}

func New(cfg *config.Config) (*App, error) {
	registry, err := buildParserRegistry(cfg)
	if err != nil {
		return nil, err
	}
	loader, err := parser.NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		return nil, err
	}

	p := parser.NewParser(loader)
	if err := p.RegisterDefaultExtractors(); err != nil {
		return nil, err
	}

	matcher, err := cfg.Exclude.Matcher()
	if err != nil {
		return nil, err
	}
	excluded := matcher
	if cfg.Exclude.TestFiles {
		excluded = func(path string) bool {
			return matcher(path) || p.IsTestPath(path)
		}
	}

	importRemoval, functionRename, typeChange, variableRename := cfg.Detectors.Toggles()
	opts := detect.Options{
		ImportRemoval:     importRemoval,
		FunctionRename:    functionRename,
		TypeChange:        typeChange,
		VariableRename:    variableRename,
		InferRenameTarget: cfg.Detectors.InferRenameTarget,
	}

	slog.Debug("app initialized",
		"languages", len(loader.LanguageRegistry()),
		"rate", cfg.Limits.AnalysesPerSecond)

	return &App{
		Config:     cfg,
		Parser:     p,
		aggregator: detect.NewAggregator(detect.DefaultDetectors(opts)),
		limiter:    util.NewLimiter(cfg.Limits.AnalysesPerSecond, cfg.Limits.Burst),
		excluded:   excluded,
	}, nil
}

func buildParserRegistry(cfg *config.Config) (map[string]parser.LanguageSpec, error) {
	overrides := make(map[string]parser.LanguageOverride, len(cfg.Languages))
	for name, lang := range cfg.Languages {
		overrides[name] = parser.LanguageOverride{
			Enabled:    lang.Enabled,
			Extensions: lang.Extensions,
			Filenames:  lang.Filenames,
		}
	}
	return parser.BuildLanguageRegistry(overrides)
}

func (a *App) SupportedExtensions() []string {
	return a.Parser.SupportedExtensions()
}
