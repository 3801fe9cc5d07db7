package breakeven

import (
	"errors"
	"math"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// ErrNotBracketed is returned when the target LCOE is not reached anywhere in
// the search interval
var ErrNotBracketed = errors.New("target LCOE is not bracketed by the search interval")

// DefaultLevers are the inputs a plant designer most often trades against
// LCOE; SolveAll uses them when no paths are given
var DefaultLevers = []string{
	"basic.p_nrl",
	"basic.plant_availability",
	"basic.construction_time",
	"basic.n_mod",
	"power_input.eta_th",
	"financial.interest_rate",
}

// Request asks for the value of one input at which LCOE equals TargetLCOE
type Request struct {
	Baseline   *domain.Inputs
	Path       string  // dotted path of a numeric leaf
	TargetLCOE float64 // USD/MWh

	// Search interval; defaults to baseline ± SolverOptions.Span
	Min *float64
	Max *float64

	MaxIterations int
	Tolerance     float64 // USD/MWh
}

// Validate checks that the request is internally consistent
func (r *Request) Validate() error {
	if r.Baseline == nil {
		return &BreakEvenError{Operation: "validate_request", Message: "a baseline design is required"}
	}
	if r.Path == "" {
		return &BreakEvenError{Operation: "validate_request", Message: "parameter path is required"}
	}
	if !(r.TargetLCOE > 0) || math.IsInf(r.TargetLCOE, 0) {
		return &BreakEvenError{Operation: "validate_request", Message: "target LCOE must be a positive number"}
	}
	if r.Min != nil && r.Max != nil && *r.Min >= *r.Max {
		return &BreakEvenError{Operation: "validate_request", Message: "min must be below max"}
	}
	return nil
}

// Evaluation is one pipeline run made while searching
type Evaluation struct {
	Value float64 `json:"value"`
	LCOE  float64 `json:"lcoe"`
}

// Result is the outcome of one solve
type Result struct {
	Path          string  `json:"path"`
	DisplayName   string  `json:"displayName"`
	BaselineValue float64 `json:"baselineValue"`
	BaselineLCOE  float64 `json:"baselineLcoe"`
	TargetLCOE    float64 `json:"targetLcoe"`
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`

	Value           float64      `json:"value"` // input value at the solution
	LCOE            float64      `json:"lcoe"`  // LCOE at Value
	Converged       bool         `json:"converged"`
	Iterations      int          `json:"iterations"`
	ConvergenceInfo string       `json:"convergenceInfo,omitempty"`
	Trace           []Evaluation `json:"trace,omitempty"`
}

// RelativeChange is the fractional move from the baseline value needed to hit
// the target
func (r *Result) RelativeChange() float64 {
	if r.BaselineValue == 0 {
		return math.Inf(1)
	}
	return r.Value/r.BaselineValue - 1
}

// Failure records a parameter that could not be solved
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// MultiResult collects the solutions for several parameters against one target,
// ordered by the smallest relative change first
type MultiResult struct {
	TargetLCOE      float64   `json:"targetLcoe"`
	BaselineLCOE    float64   `json:"baselineLcoe"`
	Results         []Result  `json:"results"`
	Failures        []Failure `json:"failures,omitempty"`
	Recommendations []string  `json:"recommendations"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	Span          float64 // default interval is baseline·(1 ± Span)
	Tolerance     float64 // convergence tolerance on LCOE, USD/MWh
	MaxIterations int
	Workers       int // parallel solves in SolveAll
	KeepTrace     bool
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Span:          0.5,
		Tolerance:     0.01,
		MaxIterations: 60,
		Workers:       1,
	}
}

// BreakEvenError represents errors from the break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
