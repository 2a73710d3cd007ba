package parser

import (
	"fmt"
	"strings"
)

type LanguageSpec struct {
	Name             string
	Extensions       []string
	Filenames        []string
	TestFileSuffixes []string
	Enabled          bool
	ExtractorReady   bool
}

type LanguageOverride struct {
	Enabled    *bool
	Extensions []string
	Filenames  []string
}

// DefaultLanguageRegistry lists every grammar the binary links. Only
// languages with a symbol-table extractor ship enabled; the rest stay
// registered so a config override can light them up once an extractor
// exists.
func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"css": {
			Name:       "css",
			Extensions: []string{".css"},
			Enabled:    false,
		},
		"go": {
			Name:             "go",
			Extensions:       []string{".go"},
			TestFileSuffixes: []string{"_test.go"},
			Enabled:          true,
			ExtractorReady:   true,
		},
		"html": {
			Name:       "html",
			Extensions: []string{".html", ".htm"},
			Enabled:    false,
		},
		"java": {
			Name:       "java",
			Extensions: []string{".java"},
			Enabled:    false,
		},
		"javascript": {
			Name:             "javascript",
			Extensions:       []string{".js", ".cjs", ".mjs", ".jsx"},
			TestFileSuffixes: []string{".test.js", ".spec.js", ".test.jsx"},
			Enabled:          true,
			ExtractorReady:   true,
		},
		"python": {
			Name:             "python",
			Extensions:       []string{".py"},
			TestFileSuffixes: []string{"_test.py"},
			Enabled:          true,
			ExtractorReady:   true,
		},
		"rust": {
			Name:       "rust",
			Extensions: []string{".rs"},
			Enabled:    false,
		},
		"tsx": {
			Name:             "tsx",
			Extensions:       []string{".tsx"},
			TestFileSuffixes: []string{".test.tsx", ".spec.tsx"},
			Enabled:          true,
			ExtractorReady:   true,
		},
		"typescript": {
			Name:             "typescript",
			Extensions:       []string{".ts", ".mts", ".cts"},
			TestFileSuffixes: []string{".test.ts", ".spec.ts"},
			Enabled:          true,
			ExtractorReady:   true,
		},
	}
}

// BuildLanguageRegistry applies config overrides on top of the defaults.
// Overrides may toggle languages and replace extension/filename lists, but
// cannot invent languages the binary has no grammar for.
func BuildLanguageRegistry(overrides map[string]LanguageOverride) (map[string]LanguageSpec, error) {
	registry := DefaultLanguageRegistry()

	for langID, override := range overrides {
		langID = strings.ToLower(strings.TrimSpace(langID))
		spec, ok := registry[langID]
		if !ok {
			return nil, fmt.Errorf("unknown language in config: %q", langID)
		}
		if override.Enabled != nil {
			if *override.Enabled && !spec.ExtractorReady {
				return nil, fmt.Errorf("language %q has no extractor and cannot be enabled", langID)
			}
			spec.Enabled = *override.Enabled
		}
		if len(override.Extensions) > 0 {
			spec.Extensions = normalizeExtensions(override.Extensions)
		}
		if len(override.Filenames) > 0 {
			spec.Filenames = append([]string(nil), override.Filenames...)
		}
		registry[langID] = spec
	}

	return registry, nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func cloneLanguageRegistry(registry map[string]LanguageSpec) map[string]LanguageSpec {
	out := make(map[string]LanguageSpec, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}
