package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"crosscheck/internal/core/errors"
	"crosscheck/internal/engine/symbols"
	"crosscheck/internal/shared/observability"
	"crosscheck/internal/shared/util"
)

// Extractor walks a parsed syntax tree for one file version and populates a
// symbol table. One implementation per supported source language.
type Extractor interface {
	Language() string
	Extract(root *sitter.Node, source []byte, scope string) (*symbols.Table, error)
}

type Parser struct {
	loader       *GrammarLoader
	extractors   map[string]Extractor // language -> extractor
	extensions   map[string]string
	filenames    map[string]string
	testSuffixes []string
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
		extensions: make(map[string]string),
		filenames:  make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		for _, name := range spec.Filenames {
			p.filenames[strings.ToLower(filepath.Base(name))] = lang
		}
		for _, suffix := range spec.TestFileSuffixes {
			p.testSuffixes = append(p.testSuffixes, strings.ToLower(suffix))
		}
	}
	return p
}

func (p *Parser) RegisterExtractor(e Extractor) {
	p.extractors[e.Language()] = e
}

// RegisterDefaultExtractors wires the built-in extractor for every enabled
// language; enabling a language without one is a registry defect.
func (p *Parser) RegisterDefaultExtractors() error {
	for lang, spec := range p.loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		switch lang {
		case "python":
			p.RegisterExtractor(&PythonExtractor{})
		case "go":
			p.RegisterExtractor(&GoExtractor{})
		case "javascript", "typescript", "tsx":
			p.RegisterExtractor(&JSExtractor{Lang: lang})
		default:
			return errors.New(errors.CodeNotSupported,
				fmt.Sprintf("no default extractor for enabled language: %s", lang))
		}
	}
	return nil
}

// ExtractTable builds the symbol table for one file version.
//
// Failure modes are typed so callers can degrade per task instead of
// aborting the run: NOT_SUPPORTED when no language/extractor matches the
// path, PARSE_ERROR when the source is syntactically invalid, INVARIANT
// when the extractor produced an inconsistent table.
func (p *Parser) ExtractTable(path string, content []byte) (*symbols.Table, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "unsupported language"),
			errors.CtxPath, path)
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, fmt.Sprintf("no extractor for: %s", lang)),
			errors.CtxPath, path)
	}

	grammar := p.loader.Grammar(lang)
	if grammar == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	start := time.Now()

	pool := p.loader.Pool(lang)
	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		observability.ExtractionFailuresTotal.WithLabelValues(lang, string(errors.CodeParseError)).Inc()
		return nil, errors.AddContext(
			errors.New(errors.CodeParseError, "parse failed"),
			errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		observability.ExtractionFailuresTotal.WithLabelValues(lang, string(errors.CodeParseError)).Inc()
		return nil, errors.AddContext(
			errors.New(errors.CodeParseError,
				fmt.Sprintf("syntax error near line %d", firstErrorLine(root))),
			errors.CtxPath, path)
	}

	table, err := extractor.Extract(root, content, symbols.ScopeModule)
	if err != nil {
		observability.ExtractionFailuresTotal.WithLabelValues(lang, string(errors.CodeInternal)).Inc()
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	if err := table.Validate(); err != nil {
		observability.ExtractionFailuresTotal.WithLabelValues(lang, string(errors.CodeInvariant)).Inc()
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}

	observability.ExtractionDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	return table, nil
}

func (p *Parser) detectLanguage(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if lang, ok := p.filenames[base]; ok {
		return lang
	}
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := p.extensions[ext]; ok {
		return lang
	}
	return ""
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.detectLanguage(filePath) != ""
}

// Language names the language a path maps to, or "" when unsupported.
func (p *Parser) Language(path string) string {
	return p.detectLanguage(path)
}

// IsTestPath matches the path against the enabled languages' test-file
// naming conventions.
func (p *Parser) IsTestPath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range p.testSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}
