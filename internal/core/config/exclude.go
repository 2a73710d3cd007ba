package config

import (
	"github.com/gobwas/glob"

	"crosscheck/internal/shared/util"
)

// Matcher compiles the exclude patterns into a path predicate. Patterns
// are matched against slash-normalized paths with '/' as separator.
func (e Exclude) Matcher() (func(path string) bool, error) {
	globs := make([]glob.Glob, 0, len(e.Files))
	for _, pattern := range e.Files {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return func(path string) bool {
		normalized := util.NormalizePatternPath(path)
		for _, g := range globs {
			if g.Match(normalized) {
				return true
			}
		}
		return false
	}, nil
}
