package calculation

import (
	"math"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// computeCAS30 prices indirect services as a share of direct cost, stretched by build time
func computeCAS30(ctx *costContext, cas20 float64) (domain.CostAccountResult, error) {
	c := ctx.c
	a := newAccount(CAS30, "Capitalized indirect service costs")
	buildTime := domain.Float(ctx.in.Basic.ConstructionTime)
	var share float64
	if c.IndirectRefBuildTime > 0 {
		share = c.IndirectFraction * buildTime / c.IndirectRefBuildTime
	}
	a.add("C300000", "Indirect services", share*cas20)
	return a.build(ctx, false)
}

// computeCAS50 prices supplementary capital: shipping, spares, taxes, insurance,
// initial fuel load and decommissioning
func computeCAS50(ctx *costContext, cas23to28 float64) (domain.CostAccountResult, error) {
	c := ctx.c
	a := newAccount(CAS50, "Capitalized supplementary costs")
	a.add("C510000", "Shipping and transportation", c.Shipping)
	a.add("C520000", "Spare parts", c.SparePartsFraction*cas23to28)
	a.add("C530000", "Taxes", c.Taxes)
	a.add("C540000", "Insurance", c.Insurance)
	var fuelLoad float64
	if c.FuelLoadRefPower > 0 {
		fuelLoad = ctx.power.PNet / c.FuelLoadRefPower * c.FuelLoadRefCost * ctx.nMod
	}
	a.add("C550000", "Initial fuel load", fuelLoad)
	a.add("C580000", "Decommissioning", c.Decommissioning)
	a.contingency("C590000", ctx)
	return a.build(ctx, false)
}

// IDCFactor is the interest-during-construction multiplier for uniform spending
// over years at rate i: ((1+i)^T - 1)/(iT) - 1. It is zero for i <= 0 or T <= 0.
func IDCFactor(interestRate, years float64) float64 {
	if interestRate <= 0 || years <= 0 {
		return 0
	}
	return (math.Pow(1+interestRate, years)-1)/(interestRate*years) - 1
}

// computeCAS60 capitalizes interest during construction on the overnight cost
func computeCAS60(ctx *costContext, overnight float64) (domain.CostAccountResult, error) {
	a := newAccount(CAS60, "Capitalized financial costs")
	i := domain.Float(ctx.in.Financial.InterestRate)
	a.add("C610000", "Interest during construction", IDCFactor(i, ctx.projectTime)*overnight)
	return a.build(ctx, false)
}
