package calculation

import "github.com/rgehrsitz/fecons/internal/domain"

// computeBalanceOfPlant prices CAS23 through CAS28, each per module of gross electric output
func computeBalanceOfPlant(ctx *costContext) ([]domain.CostAccountResult, error) {
	c := ctx.c
	pet := ctx.power.PET

	type line struct {
		code, item, label string
		value             float64
		scaled            bool
	}
	specialMaterials := c.SpecialMaterials[ctx.in.Blanket.PrimaryCoolant]
	lines := []line{
		{CAS23, "C230000", "Turbine plant equipment", c.TurbinePlantPerMW * pet, true},
		{CAS24, "C240000", "Electric plant equipment", c.ElectricPlantPerMW * pet, true},
		{CAS25, "C250000", "Miscellaneous plant equipment", c.MiscPlantPerMW * pet, true},
		{CAS26, "C260000", "Heat rejection", c.HeatRejectionPerMW * c.HeatRejectionScale * pet, true},
		{CAS27, "C270000", "Special materials", specialMaterials, true},
		{CAS28, "C280000", "Digital twin", c.DigitalTwin, false},
	}

	out := make([]domain.CostAccountResult, 0, len(lines))
	for _, s := range lines {
		a := newAccount(s.code, s.label)
		a.add(s.item, s.label, s.value)
		res, err := a.build(ctx, s.scaled)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// computeCAS29 is the FOAK contingency on direct costs CAS21 through CAS28
func computeCAS29(ctx *costContext, direct []domain.CostAccountResult) (domain.CostAccountResult, error) {
	a := newAccount(CAS29, "Contingency")
	var sum float64
	for _, r := range direct {
		sum += r.Total
	}
	rate := ctx.c.ContingencyRate
	if ctx.noak {
		rate = 0
	}
	a.add("C290000", "Contingency on direct costs", rate*sum)
	return a.build(ctx, false)
}

// summarizeCAS20 rolls CAS21 through CAS29 into the total direct cost
func summarizeCAS20(ctx *costContext, parts []domain.CostAccountResult) (domain.CostAccountResult, error) {
	a := newAccount(CAS20, "Total direct cost")
	for _, p := range parts {
		a.add(p.Code, p.Label, p.Total)
	}
	return a.build(ctx, false)
}
