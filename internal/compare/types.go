package compare

import (
	"errors"
	"fmt"

	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Variant is one alternative configuration of the base design
type Variant struct {
	Fuel domain.FuelType `json:"fuel"`
	NOAK bool            `json:"noak"`
}

// Label names the variant the way it appears in tables
func (v Variant) Label() string {
	m := "FOAK"
	if v.NOAK {
		m = "NOAK"
	}
	return string(v.Fuel) + "/" + m
}

// ComparisonResult is one run of the design with its key metrics. A run that
// failed carries Error (and Violations for validation failures) and no metrics.
type ComparisonResult struct {
	ScenarioName string                  `json:"scenarioName"`
	Description  string                  `json:"description"`
	Variant      Variant                 `json:"variant"`
	Result       *domain.EconomicsResult `json:"-"`

	// Key Metrics
	LCOE             decimal.Decimal `json:"lcoe"` // USD/MWh
	OvernightCost    decimal.Decimal `json:"overnightCost"`
	TotalCapitalCost decimal.Decimal `json:"totalCapitalCost"`
	NPV              decimal.Decimal `json:"npv"`
	NetPower         decimal.Decimal `json:"netPower"` // MW per module

	// Comparison to Base
	LCOEDiffFromBase      decimal.Decimal `json:"lcoeDiffFromBase"`
	LCOEPctFromBase       decimal.Decimal `json:"lcoePctFromBase"`
	OvernightDiffFromBase decimal.Decimal `json:"overnightDiffFromBase"`

	Error      string              `json:"error,omitempty"`
	Violations []config.FieldError `json:"violations,omitempty"`

	err error
}

// Failed reports whether the run produced no result
func (r *ComparisonResult) Failed() bool {
	return r.Error != ""
}

// ComparisonSet represents a collection of design comparisons
type ComparisonSet struct {
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	Cheapest           string             `json:"cheapest"`
	ConfigPath         string             `json:"configPath"`
}

// Err combines the errors of every failed alternative
func (cs *ComparisonSet) Err() error {
	var err error
	for i := range cs.AlternativeResults {
		alt := &cs.AlternativeResults[i]
		if alt.err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", alt.ScenarioName, alt.err))
		}
	}
	return err
}

// MetricsCalculator extracts key metrics from economics results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes all comparison metrics for one economics result
func (mc *MetricsCalculator) CalculateMetrics(name string, v Variant, res *domain.EconomicsResult) ComparisonResult {
	return ComparisonResult{
		ScenarioName:     name,
		Variant:          v,
		Result:           res,
		LCOE:             decimal.NewFromFloat(res.LCOE),
		OvernightCost:    decimal.NewFromFloat(res.OvernightCost),
		TotalCapitalCost: decimal.NewFromFloat(res.TotalCapitalCost),
		NPV:              decimal.NewFromFloat(res.NPV),
		NetPower:         decimal.NewFromFloat(res.PowerTable.PNet),
	}
}

// Failure builds the row for a run that could not complete
func (mc *MetricsCalculator) Failure(name string, v Variant, err error) ComparisonResult {
	row := ComparisonResult{ScenarioName: name, Variant: v, Error: err.Error(), err: err}
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		row.Violations = verr.Errors
	}
	return row
}

// CalculateComparison computes comparison metrics between a run and the base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	if scenario.Failed() || base.Failed() {
		return scenario
	}
	scenario.LCOEDiffFromBase = scenario.LCOE.Sub(base.LCOE)
	if !base.LCOE.IsZero() {
		scenario.LCOEPctFromBase = scenario.LCOEDiffFromBase.
			Div(base.LCOE).
			Mul(decimal.NewFromInt(100))
	}
	scenario.OvernightDiffFromBase = scenario.OvernightCost.Sub(base.OvernightCost)
	return scenario
}

// GenerateRecommendations names the cheapest configuration by LCOE and by
// overnight cost
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}
	base := compSet.BaseResult
	if base == nil || base.Failed() {
		return recommendations
	}

	cheapest := base
	lowestOvernight := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.Failed() {
			continue
		}
		if alt.LCOE.LessThan(cheapest.LCOE) {
			cheapest = alt
		}
		if alt.OvernightCost.LessThan(lowestOvernight.OvernightCost) {
			lowestOvernight = alt
		}
	}
	compSet.Cheapest = cheapest.ScenarioName

	if cheapest == base {
		recommendations = append(recommendations,
			"Lowest LCOE: the base design ("+base.Variant.Label()+") at $"+base.LCOE.StringFixed(2)+"/MWh")
	} else {
		savings := base.LCOE.Sub(cheapest.LCOE)
		recommendations = append(recommendations,
			"Lowest LCOE: "+cheapest.ScenarioName+" at $"+cheapest.LCOE.StringFixed(2)+
				"/MWh, $"+savings.StringFixed(2)+"/MWh below the base design")
	}

	if lowestOvernight != base {
		savings := base.OvernightCost.Sub(lowestOvernight.OvernightCost)
		recommendations = append(recommendations,
			"Lowest Overnight Cost: "+lowestOvernight.ScenarioName+" saves $"+savings.StringFixed(1)+"M")
	}

	failed := 0
	for _, alt := range compSet.AlternativeResults {
		if alt.Failed() {
			failed++
		}
	}
	if failed > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d alternative(s) could not be costed; see the failure rows", failed))
	}

	return recommendations
}
