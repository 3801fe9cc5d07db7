package calculation

import (
	"fmt"

	"github.com/rgehrsitz/fecons/internal/domain"
)

const (
	hoursPerYear   = 8760.0
	secondsPerHour = 3600.0

	// deuteriumMass is the deuteron mass in kg
	deuteriumMass = 3.342e-27
	// dtReactionEnergy is the D-T reaction energy in MeV
	dtReactionEnergy = 17.58
	// joulesPerMeV converts MeV to J
	joulesPerMeV = 1.6021e-13
)

// annualRates bundles the financial inputs every annualized account needs
type annualRates struct {
	interest  float64
	inflation float64
	lifetime  float64
}

func ratesFor(ctx *costContext) annualRates {
	return annualRates{
		interest:  domain.Float(ctx.in.Financial.InterestRate),
		inflation: domain.Float(ctx.in.Basic.YearlyInflation),
		lifetime:  domain.Float(ctx.in.Basic.PlantLifetime),
	}
}

// levelize escalates a today's-dollars annual cost to the first operating year
// and levelizes it over the plant life
func (r annualRates) levelize(ctx *costContext, annual float64) (float64, error) {
	first := InflateToFirstYear(annual, r.inflation, ctx.projectTime)
	return LevelizedAnnualCost(first, r.inflation, r.interest, r.lifetime)
}

// computeCAS70 levelizes annual operation and maintenance
func computeCAS70(ctx *costContext) (domain.CostAccountResult, error) {
	a := newAccount(CAS70, "Annualized O&M cost")
	annual := ctx.c.OMCostPerKWYear * ctx.power.PNet * 1000 * ctx.nMod / 1e6
	lev, err := ratesFor(ctx).levelize(ctx, annual)
	if err != nil {
		return a.res, &AccountError{Account: CAS70, Err: err}
	}
	a.add("C700000", "Operation and maintenance", lev)
	return a.build(ctx, false)
}

// AnnualFuelCost returns the first-year fuel bill of the whole plant in M USD
// before escalation. MFE burns deuterium; IFE buys targets.
func AnnualFuelCost(in *domain.Inputs, c *domain.CostingConstants, pNRL float64) float64 {
	nMod := float64(domain.IntOr(in.Basic.NMod, 1))
	availability := domain.Float(in.Basic.PlantAvailability)
	if in.Basic.MachineType == domain.MachineIFE {
		perTarget := c.DefaultTargetCost
		if in.TargetFactory != nil {
			perTarget = domain.FloatOr(in.TargetFactory.CostPerTarget, perTarget)
		}
		freq := domain.Float(in.Basic.ImplosionFreq)
		return freq * secondsPerHour * hoursPerYear * availability * perTarget / 1e6 * nMod
	}
	joulesPerYear := nMod * pNRL * 1e6 * secondsPerHour * hoursPerYear
	reactions := joulesPerYear / (dtReactionEnergy * joulesPerMeV)
	return reactions * deuteriumMass * c.DeuteriumCostPerKg * availability / 1e6
}

// computeCAS80 levelizes the annual fuel cost
func computeCAS80(ctx *costContext) (domain.CostAccountResult, error) {
	label := "Deuterium"
	if !ctx.mfe {
		label = "Targets"
	}
	a := newAccount(CAS80, "Annualized fuel cost")
	lev, err := ratesFor(ctx).levelize(ctx, AnnualFuelCost(ctx.in, ctx.c, ctx.power.PNRL))
	if err != nil {
		return a.res, &AccountError{Account: CAS80, Err: err}
	}
	a.add("C800000", label, lev)
	return a.build(ctx, false)
}

// computeCAS90 annualizes total capital with the effective CRF
func computeCAS90(ctx *costContext, totalCapital float64) (domain.CostAccountResult, error) {
	a := newAccount(CAS90, "Annualized financial cost")
	r := ratesFor(ctx)
	crf, err := ComputeCRF(r.interest, r.lifetime)
	if err != nil {
		return a.res, &AccountError{Account: CAS90, Err: fmt.Errorf("capital recovery: %w", err)}
	}
	effective := ComputeEffectiveCRF(crf, r.interest, ctx.projectTime)
	ctx.log.Debugf("CAS90: crf=%.5f effective=%.5f over %.2f years", crf, effective, ctx.projectTime)
	a.add("C900000", "Annual capital charge", effective*totalCapital)
	return a.build(ctx, false)
}
