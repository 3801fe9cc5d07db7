package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/tui/components"
	"github.com/rgehrsitz/fecons/internal/tui/scenes"
)

// Stage labels shown while a run is in progress
const (
	stageValidate = "Validate input"
	stagePipeline = "Costing pipeline"
	stageSweep    = "Sensitivity sweep"
)

// Model represents the entire explorer state
type Model struct {
	// Navigation
	tab Tab

	// Terminal dimensions
	width  int
	height int

	// Input and engine
	inputPath string
	inputs    *domain.Inputs
	warnings  []config.FieldError
	engine    *calculation.CalculationEngine
	options   domain.SensitivityOptions

	// Scenes
	accounts    *scenes.AccountsModel
	sensitivity *scenes.SensitivityModel
	stages      *components.StagePanel

	// Widgets
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	// Run state; run increments on every (re)start
	run         int
	pipelineOn  bool
	sweepOn     bool
	cancelSweep context.CancelFunc
	progress    chan SweepProgressMsg

	err error
}

// NewModel creates an explorer for the input model at inputPath
func NewModel(inputPath string, engine *calculation.CalculationEngine, opts domain.SensitivityOptions) Model {
	if engine == nil {
		engine = calculation.NewCalculationEngine()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = TitleStyle
	stages := newStages()
	stages.Set(stageValidate, components.StageRunning, inputPath)

	return Model{
		tab:         TabAccounts,
		inputPath:   inputPath,
		engine:      engine.Quiet(),
		options:     opts,
		accounts:    scenes.NewAccountsModel(),
		sensitivity: scenes.NewSensitivityModel(),
		stages:      stages,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		run:         1,
		pipelineOn:  true,
		sweepOn:     true,
		width:       100,
		height:      30,
	}
}

func newStages() *components.StagePanel {
	return components.NewStagePanel("Running", stageValidate, stagePipeline, stageSweep)
}

// Init starts the spinner and loads the input file
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadInputsCmd(m.run, m.inputPath))
}

// Busy reports whether a pipeline run or sweep is in flight
func (m Model) Busy() bool {
	return m.pipelineOn || m.sweepOn
}

// loadInputsCmd reads and validates the input file
func loadInputsCmd(run int, path string) tea.Cmd {
	return func() tea.Msg {
		in, warnings, err := config.NewInputParser().LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return InputsLoadedMsg{Run: run, Inputs: in, Warnings: warnings}
	}
}

// runEconomicsCmd runs the costing pipeline once
func runEconomicsCmd(run int, engine *calculation.CalculationEngine, in *domain.Inputs) tea.Cmd {
	return func() tea.Msg {
		res, err := engine.Run(context.Background(), in)
		return EconomicsCompleteMsg{Run: run, Result: res, Err: err}
	}
}

// startSweep launches the sensitivity sweep in the background. Progress is
// streamed over a channel that waitForProgress drains one message at a time.
func (m *Model) startSweep() tea.Cmd {
	if m.cancelSweep != nil {
		m.cancelSweep()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelSweep = cancel
	ch := make(chan SweepProgressMsg, 64)
	m.progress = ch

	run, engine, in, opts := m.run, m.engine, m.inputs, m.options
	sweep := func() tea.Msg {
		defer close(ch)
		sa := calculation.NewSensitivityAnalyzer(engine)
		sa.Progress = func(done, total int, path string) {
			select {
			case ch <- SweepProgressMsg{Run: run, Done: done, Total: total, Path: path}:
			default:
			}
		}
		res, err := sa.Analyze(ctx, in, opts)
		return SweepCompleteMsg{Run: run, Result: res, Err: err}
	}
	return tea.Batch(sweep, waitForProgress(run, ch))
}

func waitForProgress(run int, ch <-chan SweepProgressMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return progressClosedMsg{run: run}
		}
		return msg
	}
}

// restart cancels any in-flight sweep and reloads the input file
func (m *Model) restart() tea.Cmd {
	if m.cancelSweep != nil {
		m.cancelSweep()
		m.cancelSweep = nil
	}
	m.run++
	m.err = nil
	m.pipelineOn, m.sweepOn = true, true
	m.stages = newStages()
	m.stages.Set(stageValidate, components.StageRunning, m.inputPath)
	return tea.Batch(m.spinner.Tick, loadInputsCmd(m.run, m.inputPath))
}

func (m Model) title() string {
	name := m.inputPath
	if m.inputs != nil && m.inputs.Name != "" {
		name = m.inputs.Name
	}
	return fmt.Sprintf("FECONS - Fusion Plant Cost Explorer  %s", SubtitleStyle.Render(name))
}
