package compare

import (
	"strings"
	"testing"

	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/shopspring/decimal"
)

func TestMetricsCalculator_CalculateMetrics(t *testing.T) {
	calc := NewMetricsCalculator()
	res := &domain.EconomicsResult{
		LCOE:             81.25,
		OvernightCost:    5100,
		TotalCapitalCost: 6200,
		NPV:              -35,
		PowerTable:       domain.PowerTable{PNet: 510},
	}

	result := calc.CalculateMetrics("Test Design", Variant{Fuel: domain.FuelDT, NOAK: true}, res)

	if result.ScenarioName != "Test Design" {
		t.Errorf("Expected scenario name 'Test Design', got %s", result.ScenarioName)
	}
	if result.Result != res {
		t.Error("Expected the economics result to be kept")
	}
	if !result.LCOE.Equal(decimal.NewFromFloat(81.25)) {
		t.Errorf("Expected LCOE 81.25, got %s", result.LCOE)
	}
	if !result.NetPower.Equal(decimal.NewFromInt(510)) {
		t.Errorf("Expected net power 510, got %s", result.NetPower)
	}
	if result.Failed() {
		t.Error("A computed result is not a failure")
	}
}

func TestMetricsCalculator_CalculateComparison(t *testing.T) {
	calc := NewMetricsCalculator()

	base := ComparisonResult{
		LCOE:          decimal.NewFromInt(80),
		OvernightCost: decimal.NewFromInt(5000),
	}
	scenario := ComparisonResult{
		LCOE:          decimal.NewFromInt(88),
		OvernightCost: decimal.NewFromInt(5400),
	}

	result := calc.CalculateComparison(scenario, base)

	if !result.LCOEDiffFromBase.Equal(decimal.NewFromInt(8)) {
		t.Errorf("Expected LCOE diff 8, got %s", result.LCOEDiffFromBase)
	}
	if !result.LCOEPctFromBase.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected LCOE change 10%%, got %s", result.LCOEPctFromBase)
	}
	if !result.OvernightDiffFromBase.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected overnight diff 400, got %s", result.OvernightDiffFromBase)
	}

	// zero base LCOE leaves the percentage at zero
	result = calc.CalculateComparison(scenario, ComparisonResult{})
	if !result.LCOEPctFromBase.IsZero() {
		t.Errorf("Expected zero percentage, got %s", result.LCOEPctFromBase)
	}

	failed := ComparisonResult{Error: "boom"}
	result = calc.CalculateComparison(failed, base)
	if !result.LCOEDiffFromBase.IsZero() {
		t.Error("Failed rows get no deltas")
	}
}

func TestGenerateRecommendations(t *testing.T) {
	set := buildTestSet()
	recs := GenerateRecommendations(set)

	if set.Cheapest != "Plant [dhe3/NOAK]" {
		t.Errorf("Expected dhe3 variant to be cheapest, got %s", set.Cheapest)
	}
	if len(recs) != 3 {
		t.Fatalf("Expected 3 recommendations, got %d: %v", len(recs), recs)
	}
	if recs[0] != "Lowest LCOE: Plant [dhe3/NOAK] at $75.50/MWh, $4.50/MWh below the base design" {
		t.Errorf("Unexpected LCOE recommendation: %s", recs[0])
	}
	if !strings.Contains(recs[1], "saves $200.0M") {
		t.Errorf("Unexpected overnight recommendation: %s", recs[1])
	}
	if !strings.Contains(recs[2], "1 alternative(s) could not be costed") {
		t.Errorf("Expected failure note, got %s", recs[2])
	}
}

func TestGenerateRecommendations_BaseIsCheapest(t *testing.T) {
	set := buildTestSet()
	set.AlternativeResults = set.AlternativeResults[1:] // only the failed row

	recs := GenerateRecommendations(set)

	if set.Cheapest != set.BaseScenarioName {
		t.Errorf("Expected base to be cheapest, got %s", set.Cheapest)
	}
	if !strings.HasPrefix(recs[0], "Lowest LCOE: the base design (dt/NOAK) at $80.00/MWh") {
		t.Errorf("Unexpected recommendation: %s", recs[0])
	}
}

func TestGenerateRecommendations_NoBase(t *testing.T) {
	if recs := GenerateRecommendations(&ComparisonSet{}); len(recs) != 0 {
		t.Errorf("Expected no recommendations, got %v", recs)
	}
}

func TestVariant_Label(t *testing.T) {
	if got := (Variant{Fuel: domain.FuelPB11}).Label(); got != "pb11/FOAK" {
		t.Errorf("Label = %s", got)
	}
	if got := describeChange(Variant{Fuel: domain.FuelDT, NOAK: true}, Variant{Fuel: domain.FuelDD, NOAK: true}); got != "fuel dd instead of dt" {
		t.Errorf("describeChange = %s", got)
	}
}
