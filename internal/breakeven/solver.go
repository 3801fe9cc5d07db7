package breakeven

import (
	"context"
	"fmt"
	"math"

	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
)

// Solver finds the input values at which a design reaches a target LCOE
type Solver struct {
	CalcEngine *calculation.CalculationEngine
	Options    SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(calcEngine *calculation.CalculationEngine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.CalculationEngine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// Solve bisects the value of req.Path until the LCOE is within the tolerance
// of req.TargetLCOE. LCOE must cross the target inside the search interval.
// Integer parameters are searched over whole numbers and report the nearest
// one.
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.CalcEngine == nil {
		return nil, &BreakEvenError{Operation: "solve", Message: "solver has no calculation engine"}
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance == 0 {
		req.Tolerance = s.Options.Tolerance
	}

	leaf, ok := findLeaf(req.Baseline, req.Path)
	if !ok {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message:   fmt.Sprintf("%s is not a numeric input of this design", req.Path),
		}
	}
	lo, hi, err := s.bounds(req, leaf)
	if err != nil {
		return nil, err
	}

	engine := s.CalcEngine.Quiet()
	res := &Result{
		Path:          req.Path,
		DisplayName:   calculation.DisplayName(req.Path),
		BaselineValue: leaf.Value,
		TargetLCOE:    req.TargetLCOE,
		Lower:         lo,
		Upper:         hi,
	}
	res.BaselineLCOE, err = engine.LCOE(ctx, req.Baseline.Clone())
	if err != nil {
		return nil, &BreakEvenError{Operation: "solve", Message: "baseline run failed", Cause: err}
	}

	eval := func(v float64) (float64, error) {
		lcoe, err := s.evaluate(ctx, engine, req.Baseline, req.Path, v)
		if err != nil {
			return 0, err
		}
		if s.Options.KeepTrace {
			res.Trace = append(res.Trace, Evaluation{Value: v, LCOE: lcoe})
		}
		return lcoe, nil
	}

	fLo, err := eval(lo)
	if err != nil {
		return nil, err
	}
	fHi, err := eval(hi)
	if err != nil {
		return nil, err
	}
	gLo, gHi := fLo-req.TargetLCOE, fHi-req.TargetLCOE

	switch {
	case math.Abs(gLo) <= req.Tolerance:
		return res.settle(lo, fLo, true, "target reached at the lower bound"), nil
	case math.Abs(gHi) <= req.Tolerance:
		return res.settle(hi, fHi, true, "target reached at the upper bound"), nil
	case math.Signbit(gLo) == math.Signbit(gHi):
		return nil, &BreakEvenError{
			Operation: "solve",
			Message: fmt.Sprintf("%s in [%g, %g] gives LCOE $%.2f to $%.2f/MWh, target $%.2f/MWh",
				req.Path, lo, hi, fLo, fHi, req.TargetLCOE),
			Cause: ErrNotBracketed,
		}
	}

	for res.Iterations < req.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mid := lo + (hi-lo)/2
		if leaf.IsInt {
			mid = math.Floor(mid)
			if mid <= lo {
				break
			}
		}
		fMid, err := eval(mid)
		if err != nil {
			return nil, err
		}
		res.Iterations++
		gMid := fMid - req.TargetLCOE
		if math.Abs(gMid) <= req.Tolerance {
			return res.settle(mid, fMid, true, fmt.Sprintf("converged in %d iterations", res.Iterations)), nil
		}
		if math.Signbit(gMid) == math.Signbit(gLo) {
			lo, gLo = mid, gMid
		} else {
			hi, gHi = mid, gMid
		}
	}

	// the closer bound is the best answer available
	value, gap := lo, gLo
	if math.Abs(gHi) < math.Abs(gLo) {
		value, gap = hi, gHi
	}
	info := fmt.Sprintf("stopped after %d iterations, $%.4f/MWh from target", res.Iterations, math.Abs(gap))
	if leaf.IsInt {
		info = "nearest whole value; " + info
	}
	return res.settle(value, gap+req.TargetLCOE, math.Abs(gap) <= req.Tolerance, info), nil
}

func (r *Result) settle(value, lcoe float64, converged bool, info string) *Result {
	r.Value = value
	r.LCOE = lcoe
	r.Converged = converged
	r.ConvergenceInfo = info
	return r
}

// bounds resolves the search interval. A zero baseline has no natural scale,
// so it needs explicit bounds.
func (s *Solver) bounds(req Request, leaf domain.Leaf) (float64, float64, error) {
	span := s.Options.Span
	if span <= 0 {
		span = DefaultSolverOptions().Span
	}
	if (req.Min == nil || req.Max == nil) && leaf.Value == 0 {
		return 0, 0, &BreakEvenError{
			Operation: "solve",
			Message:   fmt.Sprintf("%s is zero in the baseline; give both --min and --max", req.Path),
		}
	}
	a, b := leaf.Value*(1-span), leaf.Value*(1+span)
	lo, hi := math.Min(a, b), math.Max(a, b)
	if req.Min != nil {
		lo = *req.Min
	}
	if req.Max != nil {
		hi = *req.Max
	}
	if leaf.IsInt {
		lo, hi = math.Ceil(lo), math.Floor(hi)
	}
	if lo >= hi {
		return 0, 0, &BreakEvenError{
			Operation: "solve",
			Message:   fmt.Sprintf("empty search interval [%g, %g] for %s", lo, hi, req.Path),
		}
	}
	return lo, hi, nil
}

// evaluate costs an isolated copy of base with path set to value
func (s *Solver) evaluate(ctx context.Context, engine *calculation.CalculationEngine, base *domain.Inputs, path string, value float64) (float64, error) {
	in := base.Clone()
	if err := domain.SetLeaf(in, path, value); err != nil {
		return 0, &BreakEvenError{Operation: "evaluate", Message: "cannot set parameter", Cause: err}
	}
	if err := config.Validate(in).Err(); err != nil {
		return 0, &BreakEvenError{
			Operation: "evaluate",
			Message:   fmt.Sprintf("%s = %g is not a valid design", path, value),
			Cause:     err,
		}
	}
	lcoe, err := engine.LCOE(ctx, in)
	if err != nil {
		return 0, &BreakEvenError{
			Operation: "evaluate",
			Message:   fmt.Sprintf("pipeline failed at %s = %g", path, value),
			Cause:     err,
		}
	}
	return lcoe, nil
}

func findLeaf(in *domain.Inputs, path string) (domain.Leaf, bool) {
	for _, l := range domain.ScalarLeaves(in) {
		if l.Path == path {
			return l, true
		}
	}
	return domain.Leaf{}, false
}
