package calculation

import (
	"math"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// Account codes in pipeline order.
const (
	CAS10 = "CAS10"
	CAS20 = "CAS20"
	CAS21 = "CAS21"
	CAS22 = "CAS22"
	CAS23 = "CAS23"
	CAS24 = "CAS24"
	CAS25 = "CAS25"
	CAS26 = "CAS26"
	CAS27 = "CAS27"
	CAS28 = "CAS28"
	CAS29 = "CAS29"
	CAS30 = "CAS30"
	CAS50 = "CAS50"
	CAS60 = "CAS60"
	CAS70 = "CAS70"
	CAS80 = "CAS80"
	CAS90 = "CAS90"
)

// costContext carries the run-wide values every cost account reads.
// Accounts never write to it.
type costContext struct {
	in          *domain.Inputs
	c           *domain.CostingConstants
	power       domain.PowerTable
	geom        domain.Geometry
	fuel        domain.FuelType
	mfe         bool
	noak        bool
	nMod        float64
	projectTime float64
	log         Logger
}

// materialCost returns the fabricated cost of vol m^3 of m in M USD
func materialCost(vol float64, m domain.Material) float64 {
	return vol * m.UnitCost() / 1e6
}

// accountBuilder accumulates line items for one account
type accountBuilder struct {
	res domain.CostAccountResult
}

func newAccount(code, label string) *accountBuilder {
	return &accountBuilder{res: domain.CostAccountResult{Code: code, Label: label}}
}

func (b *accountBuilder) add(code, label string, value float64) {
	b.res.Items = append(b.res.Items, domain.LineItem{Code: code, Label: label, Value: value})
}

// contingency appends a FOAK contingency item sized on the items so far
func (b *accountBuilder) contingency(code string, ctx *costContext) {
	if ctx.noak {
		b.add(code, "Contingency", 0)
		return
	}
	b.add(code, "Contingency", ctx.c.ContingencyRate*b.sum())
}

func (b *accountBuilder) sum() float64 {
	var total float64
	for _, it := range b.res.Items {
		total += it.Value
	}
	return total
}

// build validates every item and totals them. When scaled is set, every item
// is multiplied by the module count exactly once here.
func (b *accountBuilder) build(ctx *costContext, scaled bool) (domain.CostAccountResult, error) {
	if scaled {
		b.res.ModuleScaled = true
		for i := range b.res.Items {
			b.res.Items[i].Value *= ctx.nMod
		}
	}
	for _, it := range b.res.Items {
		if err := checkFinite(b.res.Code, it.Code, it.Value); err != nil {
			return b.res, err
		}
	}
	b.res.Total = b.sum()
	return b.res, nil
}

// powerScale returns (value/ref)^exp, or 0 when value is not positive
func powerScale(value, ref, exp float64) float64 {
	if value <= 0 || ref <= 0 {
		return 0
	}
	return math.Pow(value/ref, exp)
}
