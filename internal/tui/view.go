package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the explorer
func (m Model) View() string {
	var content string
	switch {
	case m.err != nil:
		content = m.renderError()
	case m.accounts.Result() == nil:
		content = m.renderLoading()
	default:
		content = m.renderTab()
	}
	return AppStyle.Render(m.renderApp(content))
}

// renderApp wraps content with the title bar, tabs and status bar
func (m Model) renderApp(content string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Render(m.title()),
		m.renderTabs(),
		content,
		m.renderStatusBar(),
	)
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, t := range []Tab{TabAccounts, TabSensitivity} {
		label := t.String()
		if t == TabSensitivity && m.sweepOn {
			label += " " + m.spinner.View()
		}
		if t == m.tab {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (m Model) renderTab() string {
	switch m.tab {
	case TabSensitivity:
		return m.sensitivity.View()
	default:
		return m.accounts.View()
	}
}

// renderStatusBar shows warnings and the key help
func (m Model) renderStatusBar() string {
	status := m.help.View(m.keys)
	if n := len(m.warnings); n > 0 {
		status = InfoStyle.Render(fmt.Sprintf("%d validation warning(s)", n)) + "  " + status
	}
	return StatusBarStyle.Width(max(20, m.width-2)).Render(status)
}

// renderLoading shows the spinner and the stage panel
func (m Model) renderLoading() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.spinner.View()+" costing "+m.inputPath,
		"",
		m.stages.Render(),
	)
}

// renderError renders the error and the input warnings, if any
func (m Model) renderError() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s", m.err)
	b.WriteString("\n\nPress r to re-run or q to quit.")
	return ErrorStyle.Render(b.String())
}
