package calculation

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// AnnualEnergy returns the plant's expected net output in MWh per year
func AnnualEnergy(pNet, nMod, availability float64) float64 {
	return hoursPerYear * pNet * nMod * availability
}

// ComputeLCOE returns the levelized cost of electricity in USD/MWh from the
// annual capital charge, levelized O&M and levelized fuel (all M USD/yr)
func ComputeLCOE(annualCapital, annualOM, annualFuel, annualEnergyMWh float64) (float64, error) {
	if annualEnergyMWh <= 0 {
		return 0, fmt.Errorf("lcoe: annual energy %.3f MWh must be positive: %w", annualEnergyMWh, ErrInvalidFinancialInput)
	}
	lcoe := (annualCapital + annualOM + annualFuel) * 1e6 / annualEnergyMWh
	if err := checkFinite("LCOE", "lcoe", lcoe); err != nil {
		return 0, err
	}
	return lcoe, nil
}

// NPVInputs holds the cash flow terms of the NPV integration
type NPVInputs struct {
	ElectricityPrice float64 // USD/MWh
	AnnualEnergyMWh  float64
	AnnualCost       float64 // M USD/yr
	DiscountRate     float64
	Lifetime         float64 // years of operation
	ProjectTime      float64 // years before first operation
}

// ComputeNPV discounts the annual net cash flow over the plant life, starting
// at first commercial operation. The result is in M USD.
func ComputeNPV(p NPVInputs) (float64, error) {
	if p.DiscountRate <= -1 {
		return 0, fmt.Errorf("npv: discount rate %g must be greater than -1: %w", p.DiscountRate, ErrInvalidFinancialInput)
	}
	revenue := p.ElectricityPrice * p.AnnualEnergyMWh / 1e6
	net := revenue - p.AnnualCost
	years := int(math.Round(p.Lifetime))

	var npv float64
	for t := 1; t <= years; t++ {
		npv += net / math.Pow(1+p.DiscountRate, p.ProjectTime+float64(t))
	}
	if err := checkFinite("NPV", "npv", npv); err != nil {
		return 0, err
	}
	return npv, nil
}

// aggregate fills the terminal LCOE and NPV figures of a result
func aggregate(ctx *costContext, res *domain.EconomicsResult) error {
	annualCapital := res.AccountTotal(CAS90)
	annualOM := res.AccountTotal(CAS70)
	annualFuel := res.AccountTotal(CAS80)

	availability := domain.Float(ctx.in.Basic.PlantAvailability)
	res.AnnualEnergyMWh = AnnualEnergy(ctx.power.PNet, ctx.nMod, availability)

	lcoe, err := ComputeLCOE(annualCapital, annualOM, annualFuel, res.AnnualEnergyMWh)
	if err != nil {
		return err
	}
	res.LCOE = lcoe
	res.LCOECentsPerKWh = lcoe / 10

	price := lcoe
	discount := domain.Float(ctx.in.Financial.InterestRate)
	if n := ctx.in.NPV; n != nil {
		price = domain.FloatOr(n.ElectricityPrice, price)
		discount = domain.FloatOr(n.DiscountRate, discount)
	}
	npv, err := ComputeNPV(NPVInputs{
		ElectricityPrice: price,
		AnnualEnergyMWh:  res.AnnualEnergyMWh,
		AnnualCost:       annualCapital + annualOM + annualFuel,
		DiscountRate:     discount,
		Lifetime:         domain.Float(ctx.in.Basic.PlantLifetime),
		ProjectTime:      ctx.projectTime,
	})
	if err != nil {
		return err
	}
	res.NPV = npv
	return nil
}
