package scenes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/tui/components"
	"github.com/rgehrsitz/fecons/internal/tui/tuistyles"
)

// AccountsModel shows the cost-account table next to the power balance
type AccountsModel struct {
	result *domain.EconomicsResult
	table  table.Model
	width  int
	height int
}

// NewAccountsModel creates a new accounts scene model
func NewAccountsModel() *AccountsModel {
	t := table.New(
		table.WithColumns(accountColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return &AccountsModel{table: t}
}

func accountColumns() []table.Column {
	return []table.Column{
		{Title: "Account", Width: 8},
		{Title: "Description", Width: 36},
		{Title: "M USD", Width: 11},
		{Title: "Share", Width: 7},
	}
}

// SetResult loads a pipeline result into the table
func (m *AccountsModel) SetResult(res *domain.EconomicsResult) {
	m.result = res
	if res == nil {
		m.table.SetRows(nil)
		return
	}

	accounts := append([]domain.CostAccountResult(nil), res.Accounts...)
	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })

	rows := make([]table.Row, 0, len(accounts))
	for _, a := range accounts {
		share := "-"
		if res.TotalCapitalCost > 0 {
			share = fmt.Sprintf("%.1f%%", a.Total/res.TotalCapitalCost*100)
		}
		label := a.Label
		if a.ModuleScaled && res.NMod > 1 {
			label = fmt.Sprintf("%s (x%d)", label, res.NMod)
		}
		rows = append(rows, table.Row{a.Code, label, fmt.Sprintf("%.2f", a.Total), share})
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// Result returns the result being shown
func (m *AccountsModel) Result() *domain.EconomicsResult {
	return m.result
}

// SelectedAccount returns the account under the cursor
func (m *AccountsModel) SelectedAccount() *domain.CostAccountResult {
	row := m.table.SelectedRow()
	if m.result == nil || row == nil {
		return nil
	}
	return m.result.Account(row[0])
}

// SetSize updates the scene dimensions
func (m *AccountsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	// cards, detail and chrome take roughly 16 lines
	m.table.SetHeight(max(5, height-16))
}

// Update moves the cursor through the accounts
func (m *AccountsModel) Update(msg tea.Msg) (*AccountsModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// compactWidth is the terminal width below which the headline cards collapse
// to a single line
const compactWidth = 80

// View renders the accounts scene
func (m *AccountsModel) View() string {
	if m.result == nil {
		return tuistyles.SubtitleStyle.Render("No costing result yet.")
	}
	res := m.result
	pt := res.PowerTable

	cards := []*components.MetricCard{
		components.NewMetricCard("LCOE", fmt.Sprintf("$%.2f/MWh", res.LCOE)).
			WithDescription("%.2f c/kWh", res.LCOECentsPerKWh),
		components.NewMetricCard("Overnight cost", tuistyles.FormatMUSD(res.OvernightCost)).
			WithDescription("total capital %s", tuistyles.FormatMUSD(res.TotalCapitalCost)),
		components.NewMetricCard("NPV", tuistyles.FormatMUSD(res.NPV)),
		components.NewMetricCard("Net power", fmt.Sprintf("%.1f MW", pt.PNet*float64(res.NMod))).
			WithDescription("%d module(s)", res.NMod),
	}
	dashboard := components.MetricGrid(cards, 4)
	switch {
	case m.width > 0 && m.width < compactWidth:
		dashboard = components.MetricRow(cards)
	case m.width > 0 && m.width < 110:
		dashboard = components.MetricGrid(cards, 2)
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		tuistyles.TitleStyle.Render("Cost accounts"),
		m.table.View(),
		m.renderItems(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		tuistyles.TitleStyle.Render("Power balance (per module)"),
		renderPowerSummary(pt),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		dashboard,
		lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right),
	)
}

func (m *AccountsModel) renderItems() string {
	a := m.SelectedAccount()
	if a == nil || len(a.Items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, it := range a.Items {
		if i == 6 {
			fmt.Fprintf(&b, "  … %d more", len(a.Items)-i)
			break
		}
		fmt.Fprintf(&b, "  %-9s %-30s %10.2f\n", it.Code, truncateText(it.Label, 30), it.Value)
	}
	return tuistyles.SubtitleStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderPowerSummary(pt domain.PowerTable) string {
	rows := []struct {
		label string
		value string
	}{
		{"Fusion power", fmt.Sprintf("%.1f MW", pt.PNRL)},
		{"Thermal power", fmt.Sprintf("%.1f MW", pt.PTh)},
		{"Gross electric", fmt.Sprintf("%.1f MW", pt.PET)},
		{"Recirculating", fmt.Sprintf("%.1f MW", pt.PRecirc)},
		{"Net electric", fmt.Sprintf("%.1f MW", pt.PNet)},
		{"Q scientific", fmt.Sprintf("%.2f", pt.QSci)},
		{"Q engineering", fmt.Sprintf("%.2f", pt.QEng)},
		{"Recirc. fraction", fmt.Sprintf("%.1f%%", pt.RecFrac*100)},
	}
	if pt.GainE > 0 {
		rows = append(rows, struct {
			label string
			value string
		}{"Target gain", fmt.Sprintf("%.1f", pt.GainE)})
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(tuistyles.MetricLabelStyle.Render(fmt.Sprintf("%-17s", r.label)))
		b.WriteString(tuistyles.MetricValueStyle.Render(fmt.Sprintf("%12s", r.value)))
		b.WriteString("\n")
	}
	return tuistyles.BorderStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = tuistyles.TableHeaderStyle
	s.Selected = tuistyles.TableSelectedStyle
	return s
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
