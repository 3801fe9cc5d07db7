package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
	"golang.org/x/sync/errgroup"
)

// CompareEngine orchestrates design comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
	Workers           int
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
		Workers:           4,
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Fuels            []string // alternative fuel types; the base fuel is skipped
	OppositeMaturity bool     // also cost the base fuel at the other maturity
	ConfigPath       string
}

// Variants expands the options into the alternative configurations of base,
// in option order and without duplicates
func (o CompareOptions) Variants(base Variant) ([]Variant, error) {
	seen := map[Variant]bool{base: true}
	var out []Variant
	add := func(v Variant) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, raw := range o.Fuels {
		fuel := domain.FuelType(domain.NormalizeEnum(raw, domain.AllowedFuelTypes))
		if !domain.Contains(domain.AllowedFuelTypes, string(fuel)) {
			return nil, fmt.Errorf("unknown fuel type %q (allowed: %v)", raw, domain.AllowedFuelTypes)
		}
		add(Variant{Fuel: fuel, NOAK: base.NOAK})
	}
	if o.OppositeMaturity {
		add(Variant{Fuel: base.Fuel, NOAK: !base.NOAK})
	}
	return out, nil
}

// Compare runs the base design and each alternative. An alternative that fails
// validation or the pipeline becomes a failure row; only a failed base run or a
// cancelled context aborts the comparison.
func (ce *CompareEngine) Compare(
	ctx context.Context,
	base *domain.Inputs,
	options CompareOptions,
) (*ComparisonSet, error) {
	if base == nil || base.Basic == nil {
		return nil, fmt.Errorf("comparison needs a base design with a basic section")
	}

	baseVariant := Variant{Fuel: base.Basic.FuelType, NOAK: base.Basic.NOAK}
	variants, err := options.Variants(baseVariant)
	if err != nil {
		return nil, err
	}

	baseName := scenarioName(base, baseVariant)
	baseRun, err := ce.CalcEngine.Run(ctx, base.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base design: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(baseName, baseVariant, baseRun)
	baseResult.Description = "base design"

	// Calculate alternatives into indexed slots
	alternatives := make([]ComparisonResult, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, ce.Workers))
	for i, v := range variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			alternatives[i] = ce.runVariant(gctx, base, v, baseResult)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("comparison interrupted: %w", err)
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   baseName,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
		ConfigPath:         options.ConfigPath,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet, nil
}

func (ce *CompareEngine) runVariant(ctx context.Context, base *domain.Inputs, v Variant, baseResult ComparisonResult) ComparisonResult {
	in := base.Clone()
	in.Basic.FuelType = v.Fuel
	in.Basic.NOAK = v.NOAK
	name := scenarioName(base, v)

	if err := config.Validate(in).Err(); err != nil {
		return ce.MetricsCalculator.Failure(name, v, err)
	}
	res, err := ce.CalcEngine.Run(ctx, in)
	if err != nil {
		return ce.MetricsCalculator.Failure(name, v, err)
	}
	row := ce.MetricsCalculator.CalculateMetrics(name, v, res)
	row.Description = describeChange(baseResult.Variant, v)
	return ce.MetricsCalculator.CalculateComparison(row, baseResult)
}

func scenarioName(in *domain.Inputs, v Variant) string {
	if in.Name == "" {
		return v.Label()
	}
	return in.Name + " [" + v.Label() + "]"
}

func describeChange(base, v Variant) string {
	switch {
	case base.Fuel != v.Fuel && base.NOAK != v.NOAK:
		return fmt.Sprintf("fuel %s, %s", v.Fuel, maturityLabel(v.NOAK))
	case base.Fuel != v.Fuel:
		return fmt.Sprintf("fuel %s instead of %s", v.Fuel, base.Fuel)
	default:
		return maturityLabel(v.NOAK) + " instead of " + maturityLabel(base.NOAK)
	}
}

func maturityLabel(noak bool) string {
	if noak {
		return "NOAK"
	}
	return "FOAK"
}
