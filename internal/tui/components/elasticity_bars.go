package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/tui/tuistyles"
)

// ElasticityBars draws one horizontal bar per ranked sensitivity entry,
// scaled to the largest |elasticity|
type ElasticityBars struct {
	Entries    []domain.SensitivityEntry
	Width      int // bar width in cells
	LabelWidth int
	Selected   int
}

// NewElasticityBars creates a bar chart for entries
func NewElasticityBars(entries []domain.SensitivityEntry) *ElasticityBars {
	return &ElasticityBars{Entries: entries, Width: 30, LabelWidth: 28, Selected: -1}
}

// Render returns the chart, one line per entry
func (c *ElasticityBars) Render() string {
	if len(c.Entries) == 0 {
		return tuistyles.InfoStyle.Render("No sensitivity entries")
	}

	peak := 0.0
	for _, e := range c.Entries {
		peak = math.Max(peak, math.Abs(e.Elasticity))
	}

	lines := make([]string, 0, len(c.Entries))
	for i, e := range c.Entries {
		n := 0
		if peak > 0 {
			n = int(math.Round(math.Abs(e.Elasticity) / peak * float64(c.Width)))
		}
		if n == 0 && e.Elasticity != 0 {
			n = 1
		}

		label := fmt.Sprintf("%-*s", c.LabelWidth, truncate(e.DisplayName, c.LabelWidth))
		if i == c.Selected {
			label = tuistyles.TableSelectedStyle.Render(label)
		}
		bar := tuistyles.ElasticityStyle(e.Elasticity).Render(strings.Repeat("■", n))
		pad := strings.Repeat(" ", c.Width-n)
		lines = append(lines, fmt.Sprintf("%s %s%s %s %+.4f", label, bar, pad,
			tuistyles.DirectionIndicator(e.Elasticity), e.Elasticity))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
