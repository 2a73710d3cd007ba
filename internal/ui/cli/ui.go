package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crosscheck/internal/core/ports"
	"crosscheck/internal/engine/detect"
)

var (
	uiTitleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	uiDocStyle = lipgloss.NewStyle().Margin(1, 2)

	uiCriticalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	uiCleanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	uiStatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	uiDetailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

type conflictItem struct {
	conflict detect.SemanticConflict
}

func (i conflictItem) Title() string {
	return fmt.Sprintf("[%s] %s: %s", i.conflict.Severity, i.conflict.Kind, i.conflict.Symbol)
}

func (i conflictItem) Description() string {
	return fmt.Sprintf("%s:%d  tasks: %s",
		i.conflict.FilePath, i.conflict.Line, strings.Join(i.conflict.TasksInvolved, ", "))
}

func (i conflictItem) FilterValue() string {
	return i.conflict.FilePath + " " + i.conflict.Symbol + " " + string(i.conflict.Kind)
}

type reviewModel struct {
	conflictList list.Model
	result       ports.AnalyzeResult
	showDetail   bool
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.conflictList.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.showDetail = !m.showDetail
			return m, nil
		case "esc":
			if m.showDetail {
				m.showDetail = false
				return m, nil
			}
		}
	case tea.WindowSizeMsg:
		h, v := uiDocStyle.GetFrameSize()
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		m.conflictList.SetSize(msg.Width-h, height)
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)
	return m, cmd
}

func (m reviewModel) View() string {
	var status string
	if m.result.TotalConflicts == 0 {
		status = uiCleanStyle.Render("No semantic conflicts")
	} else {
		status = uiCriticalStyle.Render(fmt.Sprintf("%d conflicts", m.result.TotalConflicts))
	}
	header := fmt.Sprintf("%s\n%s | %s\n",
		uiTitleStyle("Semantic Conflict Review"),
		uiStatusStyle.Render(fmt.Sprintf("run %s | %d files", m.result.RunID, len(m.result.Files))),
		status)

	body := m.conflictList.View()
	if m.showDetail {
		if item, ok := m.conflictList.SelectedItem().(conflictItem); ok {
			body += "\n" + uiDetailStyle.Render(renderConflictDetail(item.conflict))
		}
	}

	help := uiStatusStyle.Render("enter: toggle detail | /: filter | q: quit")
	return uiDocStyle.Render(header + "\n" + help + "\n\n" + body)
}

func renderConflictDetail(c detect.SemanticConflict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s (%s:%d)\n", c.Location, c.FilePath, c.Line)
	fmt.Fprintf(&b, "Tasks:    %s\n", strings.Join(c.TasksInvolved, ", "))
	fmt.Fprintf(&b, "Reason:   %s", c.Reason)
	if c.Suggestion != "" {
		fmt.Fprintf(&b, "\nFix:      %s", c.Suggestion)
	}
	return b.String()
}

func newReviewModel(result ports.AnalyzeResult) reviewModel {
	items := make([]list.Item, 0, result.TotalConflicts)
	for _, file := range result.Files {
		for _, c := range file.Conflicts {
			items = append(items, conflictItem{conflict: c})
		}
	}

	conflictList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	conflictList.Title = "Detected Conflicts"
	conflictList.SetShowStatusBar(false)
	conflictList.SetFilteringEnabled(true)

	return reviewModel{
		conflictList: conflictList,
		result:       result,
	}
}

func runReviewUI(result ports.AnalyzeResult) error {
	p := tea.NewProgram(newReviewModel(result), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
