package tui

import (
	"github.com/rgehrsitz/fecons/internal/tui/tuimsg"
)

// Tab represents the explorer's two views
type Tab int

const (
	TabAccounts Tab = iota
	TabSensitivity
)

func (t Tab) String() string {
	switch t {
	case TabAccounts:
		return "Cost accounts"
	case TabSensitivity:
		return "Sensitivity"
	default:
		return "Unknown"
	}
}

// next cycles forward through the tabs
func (t Tab) next() Tab {
	return (t + 1) % 2
}

// Messages shared with the scenes
type (
	InputsLoadedMsg      = tuimsg.InputsLoadedMsg
	ErrorMsg             = tuimsg.ErrorMsg
	EconomicsCompleteMsg = tuimsg.EconomicsCompleteMsg
	SweepProgressMsg     = tuimsg.SweepProgressMsg
	SweepCompleteMsg     = tuimsg.SweepCompleteMsg
	EntrySelectedMsg     = tuimsg.EntrySelectedMsg
)

// progressClosedMsg is sent when a sweep's progress stream ends
type progressClosedMsg struct {
	run int
}
