package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/fecons/internal/tui/tuistyles"
)

// ProgressBar shows how far a sensitivity sweep has run
type ProgressBar struct {
	Done    int
	Total   int
	Width   int
	Current string // parameter path last measured
}

// NewProgressBar creates a new progress bar
func NewProgressBar(done, total int) *ProgressBar {
	return &ProgressBar{Done: done, Total: total, Width: 40}
}

// WithWidth sets the bar width
func (p *ProgressBar) WithWidth(width int) *ProgressBar {
	p.Width = width
	return p
}

// WithCurrent sets the parameter shown under the bar
func (p *ProgressBar) WithCurrent(path string) *ProgressBar {
	p.Current = path
	return p
}

// Fraction returns completion in [0, 1]
func (p *ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Done) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// Render returns the styled progress bar
func (p *ProgressBar) Render() string {
	filled := int(float64(p.Width) * p.Fraction())
	empty := p.Width - filled

	barStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorSuccess)
	emptyStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorBorder)

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(barStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", empty)))
	b.WriteString("] ")
	b.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorPrimary).Bold(true).
		Render(fmt.Sprintf("%.0f%%", p.Fraction()*100)))
	b.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf(" %d/%d", p.Done, p.Total)))

	if p.Current != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Italic(true).Render(p.Current))
	}
	return b.String()
}

// Stage states
const (
	StagePending  = "pending"
	StageRunning  = "running"
	StageComplete = "complete"
	StageError    = "error"
)

// Stage is one step of an explorer run (validation, pipeline, sweep)
type Stage struct {
	Label    string
	Status   string
	Progress *ProgressBar
	Message  string
}

// StagePanel lists the stages of a run with their status
type StagePanel struct {
	Title  string
	Stages []Stage
	Width  int
}

// NewStagePanel creates a new stage panel
func NewStagePanel(title string, labels ...string) *StagePanel {
	p := &StagePanel{Title: title, Width: 60}
	for _, l := range labels {
		p.Stages = append(p.Stages, Stage{Label: l, Status: StagePending})
	}
	return p
}

// Set updates the stage with the given label
func (p *StagePanel) Set(label, status, message string) {
	for i := range p.Stages {
		if p.Stages[i].Label == label {
			p.Stages[i].Status = status
			p.Stages[i].Message = message
			return
		}
	}
}

// Render returns the styled panel
func (p *StagePanel) Render() string {
	var b strings.Builder
	if p.Title != "" {
		b.WriteString(tuistyles.TitleStyle.Render(p.Title))
		b.WriteString("\n\n")
	}
	for _, s := range p.Stages {
		b.WriteString(statusStyle(s.Status).Render(statusIcon(s.Status)))
		b.WriteString(" ")
		b.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorForeground).Render(s.Label))
		if s.Progress != nil {
			b.WriteString("\n  ")
			b.WriteString(s.Progress.Render())
		}
		if s.Message != "" {
			b.WriteString("\n  ")
			b.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Italic(true).Render(s.Message))
		}
		b.WriteString("\n")
	}
	return tuistyles.BorderStyle.Width(p.Width).Render(b.String())
}

func statusIcon(status string) string {
	switch status {
	case StageRunning:
		return "◐"
	case StageComplete:
		return "●"
	case StageError:
		return "✗"
	default:
		return "○"
	}
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case StageRunning:
		return lipgloss.NewStyle().Foreground(tuistyles.ColorInfo)
	case StageComplete:
		return lipgloss.NewStyle().Foreground(tuistyles.ColorSuccess)
	case StageError:
		return lipgloss.NewStyle().Foreground(tuistyles.ColorDanger)
	default:
		return lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	}
}
