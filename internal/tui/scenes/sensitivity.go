package scenes

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/tui/components"
	"github.com/rgehrsitz/fecons/internal/tui/tuimsg"
	"github.com/rgehrsitz/fecons/internal/tui/tuistyles"
)

// SensitivityModel shows the ranked sweep and the selected entry's details
type SensitivityModel struct {
	result   *domain.SensitivityResult
	table    table.Model
	progress *components.ProgressBar
	width    int
	height   int
}

// NewSensitivityModel creates a new sensitivity scene model
func NewSensitivityModel() *SensitivityModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 3},
			{Title: "Parameter", Width: 32},
			{Title: "Elasticity", Width: 11},
			{Title: "", Width: 2},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return &SensitivityModel{table: t}
}

// SetProgress records sweep progress while it is running
func (m *SensitivityModel) SetProgress(done, total int, path string) {
	m.progress = components.NewProgressBar(done, total).WithCurrent(path)
}

// SetResult loads a finished sweep
func (m *SensitivityModel) SetResult(res *domain.SensitivityResult) {
	m.result = res
	m.progress = nil
	if res == nil {
		m.table.SetRows(nil)
		return
	}
	rows := make([]table.Row, 0, len(res.Entries))
	for i, e := range res.Entries {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			truncateText(e.DisplayName, 32),
			fmt.Sprintf("%+.4f", e.Elasticity),
			tuistyles.DirectionIndicator(e.Elasticity),
		})
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// Result returns the sweep being shown
func (m *SensitivityModel) Result() *domain.SensitivityResult {
	return m.result
}

// Selected returns the entry under the cursor
func (m *SensitivityModel) Selected() (domain.SensitivityEntry, bool) {
	if m.result == nil {
		return domain.SensitivityEntry{}, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.result.Entries) {
		return domain.SensitivityEntry{}, false
	}
	return m.result.Entries[i], true
}

// SetSize updates the scene dimensions
func (m *SensitivityModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(5, height-12))
}

// Update moves the cursor and reports the newly selected entry
func (m *SensitivityModel) Update(msg tea.Msg) (*SensitivityModel, tea.Cmd) {
	before := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if after := m.table.Cursor(); after != before {
		return m, tea.Batch(cmd, func() tea.Msg { return tuimsg.EntrySelectedMsg{Index: after} })
	}
	return m, cmd
}

// View renders the sensitivity scene
func (m *SensitivityModel) View() string {
	if m.progress != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			tuistyles.TitleStyle.Render("Sensitivity sweep running"),
			"",
			m.progress.WithWidth(min(50, max(10, m.width-20))).Render(),
		)
	}
	if m.result == nil {
		return tuistyles.SubtitleStyle.Render("No sensitivity sweep yet.")
	}

	res := m.result
	header := tuistyles.SubtitleStyle.Render(fmt.Sprintf(
		"baseline LCOE $%.2f/MWh  step %.1f%%  %d parameters analyzed  %d skipped at zero  %d failed",
		res.BaselineLCOE, res.DeltaFraction*100, res.ParametersAnalyzed, len(res.SkippedZero), len(res.Failures)))
	if res.Interrupted {
		header += "  " + lipgloss.NewStyle().Foreground(tuistyles.ColorDanger).Render("interrupted")
	}

	bars := components.NewElasticityBars(res.Entries)
	bars.Selected = m.table.Cursor()
	bars.Width = 20

	left := lipgloss.JoinVertical(lipgloss.Left,
		tuistyles.TitleStyle.Render("Ranked by |elasticity|"),
		m.table.View(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		tuistyles.TitleStyle.Render("Selected parameter"),
		m.renderDetail(),
		"",
		bars.Render(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right),
	)
}

func (m *SensitivityModel) renderDetail() string {
	e, ok := m.Selected()
	if !ok {
		return tuistyles.SubtitleStyle.Render("nothing selected")
	}
	lines := []string{
		detailLine("Name", e.DisplayName),
		detailLine("Path", e.Path),
		detailLine("Baseline value", fmt.Sprintf("%g", e.BaselineValue)),
		detailLine("Perturbed LCOE", fmt.Sprintf("$%.4f/MWh", e.PerturbedLCOE)),
		detailLine("dLCOE/dparam", fmt.Sprintf("%+.6g", e.Derivative)),
		detailLine("Elasticity", tuistyles.ElasticityStyle(e.Elasticity).Render(fmt.Sprintf("%+.6f", e.Elasticity))),
	}
	if e.Elasticity != 0 {
		verb := "raises"
		if e.Elasticity < 0 {
			verb = "lowers"
		}
		lines = append(lines, tuistyles.SubtitleStyle.Render(
			fmt.Sprintf("a 1%% increase %s LCOE by about %.3f%%", verb, math.Abs(e.Elasticity))))
	}
	return tuistyles.BorderStyle.Render(strings.Join(lines, "\n"))
}

func detailLine(label, value string) string {
	return tuistyles.MetricLabelStyle.Render(fmt.Sprintf("%-15s", label)) + " " + value
}
