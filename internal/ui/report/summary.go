package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"crosscheck/internal/core/ports"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3B82F6")).
				Bold(true)

	criticalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	highStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FB923C")).
			Bold(true)

	mediumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	cleanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// Summary renders a short severity-colored terminal summary of one run.
func Summary(result ports.AnalyzeResult) string {
	counts := map[string]int{}
	for _, file := range result.Files {
		for _, c := range file.Conflicts {
			counts[c.Severity.String()]++
		}
	}

	var b strings.Builder
	b.WriteString(summaryTitleStyle.Render("Semantic Conflict Check"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s | %d files | %s",
		result.RunID, len(result.Files), result.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	if result.TotalConflicts == 0 {
		b.WriteString(cleanStyle.Render("No semantic conflicts"))
	} else {
		parts := make([]string, 0, 4)
		if n := counts["critical"]; n > 0 {
			parts = append(parts, criticalStyle.Render(fmt.Sprintf("%d critical", n)))
		}
		if n := counts["high"]; n > 0 {
			parts = append(parts, highStyle.Render(fmt.Sprintf("%d high", n)))
		}
		if n := counts["medium"]; n > 0 {
			parts = append(parts, mediumStyle.Render(fmt.Sprintf("%d medium", n)))
		}
		if n := counts["low"]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d low", n))
		}
		b.WriteString(strings.Join(parts, " | "))
	}
	if result.Degraded {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("coverage degraded: some task versions were skipped"))
	}
	b.WriteString("\n")
	return b.String()
}
