// Package tuimsg holds the Bubble Tea messages shared by the explorer and
// its scenes.
package tuimsg

import (
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
)

// Run numbers tag the messages of one explorer run so that results of a
// superseded run are dropped.

// InputsLoadedMsg signals the input model has been read and validated
type InputsLoadedMsg struct {
	Run      int
	Inputs   *domain.Inputs
	Warnings []config.FieldError
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// EconomicsCompleteMsg signals a pipeline run has finished
type EconomicsCompleteMsg struct {
	Run    int
	Result *domain.EconomicsResult
	Err    error
}

// SweepProgressMsg reports one completed perturbation run
type SweepProgressMsg struct {
	Run   int
	Done  int
	Total int
	Path  string
}

// SweepCompleteMsg signals a sensitivity sweep has finished
type SweepCompleteMsg struct {
	Run    int
	Result *domain.SensitivityResult
	Err    error
}

// EntrySelectedMsg signals the highlighted sensitivity entry changed
type EntrySelectedMsg struct {
	Index int
}
