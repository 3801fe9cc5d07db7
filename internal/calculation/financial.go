package calculation

import (
	"errors"
	"fmt"
	"math"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// ErrInvalidFinancialInput is returned when a financial formula is asked to work
// outside its domain
var ErrInvalidFinancialInput = errors.New("invalid financial input")

// equalRateTolerance is how close inflation and interest must be for the
// growing-annuity limit form to apply
const equalRateTolerance = 1e-9

// ComputeCRF returns the capital recovery factor i(1+i)^n / ((1+i)^n - 1).
// At i = 0 it returns the limit 1/n.
func ComputeCRF(interestRate, lifetime float64) (float64, error) {
	if interestRate <= -1 {
		return 0, fmt.Errorf("crf: interest rate %g must be greater than -1: %w", interestRate, ErrInvalidFinancialInput)
	}
	if lifetime <= 0 {
		return 0, fmt.Errorf("crf: lifetime %g must be positive: %w", lifetime, ErrInvalidFinancialInput)
	}
	if math.Abs(interestRate) < equalRateTolerance {
		return 1 / lifetime, nil
	}
	growth := math.Pow(1+interestRate, lifetime)
	return interestRate * growth / (growth - 1), nil
}

// ComputeEffectiveCRF capitalizes a CRF forward over the construction period
func ComputeEffectiveCRF(crf, interestRate, constructionTime float64) float64 {
	return crf * math.Pow(1+interestRate, constructionTime)
}

// LevelizedAnnualCost converts a first-year operating cost into a level annual
// value: the present value of a growing annuity, annualized by CRF.
func LevelizedAnnualCost(firstYearCost, inflationRate, interestRate, lifetime float64) (float64, error) {
	crf, err := ComputeCRF(interestRate, lifetime)
	if err != nil {
		return 0, fmt.Errorf("levelized annual cost: %w", err)
	}
	i, g, n := interestRate, inflationRate, lifetime

	var pv float64
	if math.Abs(i-g) < equalRateTolerance {
		pv = firstYearCost * n / (1 + i)
	} else {
		pv = firstYearCost * (1 - math.Pow((1+g)/(1+i), n)) / (i - g)
	}
	return crf * pv, nil
}

// InflateToFirstYear escalates a today's-dollars cost to the first year of operation
func InflateToFirstYear(cost, inflationRate, years float64) float64 {
	return cost * math.Pow(1+inflationRate, years)
}

// LicensingTime returns the licensing duration in years; NOAK plants reuse an
// approved design and get none.
func LicensingTime(fuel domain.FuelType, noak bool, constants *domain.CostingConstants) float64 {
	if noak {
		return 0
	}
	return constants.LicensingTime.For(fuel)
}

// TotalProjectTime is construction plus licensing time
func TotalProjectTime(constructionTime float64, fuel domain.FuelType, noak bool, constants *domain.CostingConstants) float64 {
	return constructionTime + LicensingTime(fuel, noak, constants)
}
