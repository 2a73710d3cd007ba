package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"crosscheck/internal/engine/symbols"
)

// ExtractionContext carries shared state/helpers used by all extractors.
type ExtractionContext struct {
	Source []byte
	Table  *symbols.Table
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// firstErrorLine locates the first ERROR or MISSING node so parse failures
// can name a line.
func firstErrorLine(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	if node.IsError() || node.IsMissing() {
		return int(node.StartPosition().Row) + 1
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if !child.HasError() {
			continue
		}
		if line := firstErrorLine(child); line > 0 {
			return line
		}
	}
	return 0
}

// normalizeAnnotation collapses whitespace in a raw annotation so that
// formatting-only differences don't register as type changes.
func normalizeAnnotation(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
