package breakeven

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rgehrsitz/fecons/internal/domain"
	"golang.org/x/sync/errgroup"
)

// SolveAll solves each path against the same target and ranks the levers by
// how little they must move. A path that cannot be solved becomes a Failure;
// only a failed baseline or a cancelled context aborts the whole run.
func (s *Solver) SolveAll(
	ctx context.Context,
	baseline *domain.Inputs,
	paths []string,
	targetLCOE float64,
) (*MultiResult, error) {
	if len(paths) == 0 {
		paths = DefaultLevers
	}
	if baseline == nil {
		return nil, &BreakEvenError{Operation: "solve_all", Message: "a baseline design is required"}
	}

	baseLCOE, err := s.CalcEngine.Quiet().LCOE(ctx, baseline.Clone())
	if err != nil {
		return nil, &BreakEvenError{Operation: "solve_all", Message: "baseline run failed", Cause: err}
	}

	results := make([]*Result, len(paths))
	failures := make([]error, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.Options.Workers))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], failures[i] = s.Solve(gctx, Request{
				Baseline:   baseline,
				Path:       path,
				TargetLCOE: targetLCOE,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("break-even search interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("break-even search interrupted: %w", err)
	}

	multi := &MultiResult{
		TargetLCOE:   targetLCOE,
		BaselineLCOE: baseLCOE,
		Results:      []Result{},
	}
	for i, path := range paths {
		if failures[i] != nil {
			multi.Failures = append(multi.Failures, Failure{Path: path, Error: failures[i].Error()})
			continue
		}
		multi.Results = append(multi.Results, *results[i])
	}
	sort.SliceStable(multi.Results, func(i, j int) bool {
		return math.Abs(multi.Results[i].RelativeChange()) < math.Abs(multi.Results[j].RelativeChange())
	})
	multi.Recommendations = generateRecommendations(multi)
	return multi, nil
}

func generateRecommendations(m *MultiResult) []string {
	recommendations := []string{}
	if len(m.Results) == 0 {
		return append(recommendations, "No parameter reaches the target LCOE within its search interval.")
	}

	best := m.Results[0]
	recommendations = append(recommendations, fmt.Sprintf(
		"Smallest change: %s from %g to %.4g (%+.1f%%)",
		best.DisplayName, best.BaselineValue, best.Value, best.RelativeChange()*100))

	for _, r := range m.Results {
		if !r.Converged {
			recommendations = append(recommendations, fmt.Sprintf(
				"%s only gets within $%.2f/MWh of the target", r.DisplayName, math.Abs(r.LCOE-r.TargetLCOE)))
		}
	}
	if len(m.Failures) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"%d parameter(s) cannot reach the target inside their default range; widen it with explicit bounds", len(m.Failures)))
	}
	return recommendations
}
