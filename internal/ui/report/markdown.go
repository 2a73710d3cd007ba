package report

import (
	"fmt"
	"strings"
	"time"

	"crosscheck/internal/core/ports"
	"crosscheck/internal/shared/util"
)

type MarkdownOptions struct {
	Title       string
	GeneratedAt time.Time
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(result ports.AnalyzeResult, opts MarkdownOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Semantic Conflict Report"
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + title + "\n")
	b.WriteString("run_id: " + result.RunID + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# " + title + "\n\n")
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Files analyzed: %d\n", len(result.Files))
	fmt.Fprintf(&b, "- Conflicts: %d\n", result.TotalConflicts)
	fmt.Fprintf(&b, "- Duration: %s\n", result.Duration.Round(time.Millisecond))
	if result.Degraded {
		b.WriteString("- Coverage: degraded (some task versions could not be analyzed)\n")
	}
	b.WriteString("\n")

	if result.TotalConflicts == 0 {
		b.WriteString("No semantic conflicts detected.\n")
	}

	for _, file := range result.Files {
		if len(file.Conflicts) == 0 && len(file.Unavailable) == 0 {
			continue
		}
		b.WriteString("## `" + file.Path + "`\n\n")

		if len(file.Conflicts) > 0 {
			b.WriteString("| Severity | Kind | Symbol | Line | Tasks | Reason |\n")
			b.WriteString("|---|---|---|---|---|---|\n")
			for _, c := range file.Conflicts {
				fmt.Fprintf(&b, "| %s | %s | `%s` | %d | %s | %s |\n",
					c.Severity, c.Kind, c.Symbol, c.Line,
					strings.Join(c.TasksInvolved, ", "),
					escapeMarkdownCell(c.Reason))
			}
			b.WriteString("\n")
			for _, c := range file.Conflicts {
				if c.Suggestion != "" {
					fmt.Fprintf(&b, "- **%s**: %s\n", c.Symbol, c.Suggestion)
				}
			}
			b.WriteString("\n")
		}

		if len(file.Unavailable) > 0 {
			b.WriteString("### Skipped tasks\n\n")
			for _, taskID := range util.SortedStringKeys(file.Unavailable) {
				fmt.Fprintf(&b, "- `%s`: %s\n", taskID, file.Unavailable[taskID])
			}
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", "\\|"), "\n", " ")
}
