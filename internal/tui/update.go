package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/fecons/internal/tui/components"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.accounts.SetSize(msg.Width, msg.Height)
		m.sensitivity.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ErrorMsg:
		m.err = msg.Err
		m.pipelineOn, m.sweepOn = false, false
		m.stages.Set(stageValidate, components.StageError, "")
		return m, nil

	case InputsLoadedMsg:
		if msg.Run != m.run {
			return m, nil
		}
		m.inputs = msg.Inputs
		m.warnings = msg.Warnings
		m.stages.Set(stageValidate, components.StageComplete, fmt.Sprintf("%d warning(s)", len(msg.Warnings)))
		m.stages.Set(stagePipeline, components.StageRunning, "")
		m.stages.Set(stageSweep, components.StageRunning, "")
		return m, tea.Batch(runEconomicsCmd(m.run, m.engine, m.inputs), m.startSweep())

	case EconomicsCompleteMsg:
		if msg.Run != m.run {
			return m, nil
		}
		m.pipelineOn = false
		if msg.Err != nil {
			m.err = msg.Err
			m.stages.Set(stagePipeline, components.StageError, msg.Err.Error())
			return m, nil
		}
		m.stages.Set(stagePipeline, components.StageComplete, fmt.Sprintf("LCOE $%.2f/MWh", msg.Result.LCOE))
		m.accounts.SetResult(msg.Result)
		return m, nil

	case SweepProgressMsg:
		if msg.Run != m.run || !m.sweepOn {
			return m, nil
		}
		m.sensitivity.SetProgress(msg.Done, msg.Total, msg.Path)
		return m, waitForProgress(m.run, m.progress)

	case progressClosedMsg:
		return m, nil

	case SweepCompleteMsg:
		if msg.Run != m.run {
			return m, nil
		}
		m.sweepOn = false
		m.cancelSweep = nil
		if msg.Result == nil {
			m.err = msg.Err
			m.stages.Set(stageSweep, components.StageError, errString(msg.Err))
			m.sensitivity.SetResult(nil)
			return m, nil
		}
		m.stages.Set(stageSweep, components.StageComplete, fmt.Sprintf("%d parameters", msg.Result.ParametersAnalyzed))
		m.sensitivity.SetResult(msg.Result)
		return m, nil

	case EntrySelectedMsg:
		return m, nil
	}

	return m.updateCurrentTab(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancelSweep != nil {
			m.cancelSweep()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		m.tab = m.tab.next()
		return m, nil

	case key.Matches(msg, m.keys.Rerun):
		cmd := m.restart()
		return m, cmd

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// up/down and friends go to the active table
	return m.updateCurrentTab(msg)
}

// updateCurrentTab delegates to the active scene
func (m Model) updateCurrentTab(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.tab {
	case TabAccounts:
		m.accounts, cmd = m.accounts.Update(msg)
	case TabSensitivity:
		m.sensitivity, cmd = m.sensitivity.Update(msg)
	}
	return m, cmd
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
