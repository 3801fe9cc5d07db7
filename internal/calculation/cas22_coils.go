package calculation

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// mu0 is the vacuum permeability in H/m
const mu0 = 4 * math.Pi * 1e-7

// SimplifiedCoilResult reports the scaling-law coil estimate
type SimplifiedCoilResult struct {
	GeometryFactor float64
	TotalKAm       float64
	CostPerKAm     float64
	ConductorCost  float64 // M USD
	Markup         float64
	NCoils         int
	Total          float64 // M USD
	CostPerCoil    float64
}

// CoilGeometryFactor returns the topology factor G in kAm = G*B*R^2/mu0.
// Tokamaks ignore the coil count; mirrors scale with it; stellarators add a path factor.
func CoilGeometryFactor(ct domain.ConfinementType, nCoils int, pathFactor float64) (float64, error) {
	switch {
	case ct.IsTokamak():
		return 4 * math.Pi * math.Pi, nil
	case ct == domain.ConfinementMagneticMirror:
		return float64(nCoils) * 4 * math.Pi, nil
	case ct == domain.ConfinementStellarator:
		return 4 * math.Pi * math.Pi * pathFactor, nil
	}
	return 0, fmt.Errorf("no coil geometry factor for %q", ct)
}

// ComputeSimplifiedCoils estimates magnet cost from peak field and coil radius
func ComputeSimplifiedCoils(ct domain.ConfinementType, coils *domain.Coils, cc *domain.CoilConstants) (SimplifiedCoilResult, error) {
	var r SimplifiedCoilResult

	r.NCoils = domain.IntOr(coils.NCoils, cc.DefaultNCoils[ct])
	pathFactor := domain.FloatOr(coils.PathFactor, cc.PathFactor)
	g, err := CoilGeometryFactor(ct, r.NCoils, pathFactor)
	if err != nil {
		return r, err
	}
	r.GeometryFactor = g

	material := coils.CoilMaterial
	if material == "" {
		material = domain.CoilREBCO
	}
	r.CostPerKAm = domain.FloatOr(coils.CostPerKAm, cc.CostPerKAm[material])
	r.Markup = domain.FloatOr(coils.CoilMarkup, cc.Markup[ct])

	b := domain.Float(coils.BMax)
	radius := domain.Float(coils.RCoil)
	r.TotalKAm = g * b * radius * radius / mu0 / 1000
	r.ConductorCost = r.TotalKAm * r.CostPerKAm / 1e6
	r.Total = r.ConductorCost * r.Markup
	if r.NCoils > 0 {
		r.CostPerCoil = r.Total / float64(r.NCoils)
	}
	return r, nil
}

// MagnetCost is the itemized cost of one magnet family in USD
type MagnetCost struct {
	Name           string
	Type           domain.MagnetType
	Superconductor float64
	Copper         float64
	Steel          float64
	Insulation     float64
	Total          float64 // M USD, all coils of the family
}

// ComputeMagnetCost prices one magnet family from its winding-pack cross-section
func ComputeMagnetCost(m domain.Magnet, cc *domain.CoilConstants) MagnetCost {
	out := MagnetCost{Name: m.Name, Type: m.Type}

	dr, dz := domain.Float(m.DR), domain.Float(m.DZ)
	fracIn := domain.Float(m.FracIn)
	length := 2 * math.Pi * domain.Float(m.RCentre)
	conductorArea := dr * dz * (1 - fracIn) // m^2

	// A/mm^2 * m^2 * 1e6 mm^2/m^2 = A; times length gives Am
	kAm := cc.JTape * conductorArea * cc.FracSC * 1e6 * length / 1000
	out.Superconductor = kAm * cc.CostYBCO
	out.Copper = conductorArea * cc.FracCu * length * cc.CuDensity * cc.CuCost
	out.Steel = conductorArea * cc.FracSS * length * cc.SSDensity * cc.SSCost
	out.Insulation = dr * dz * fracIn * length * cc.InsDensity * cc.InsCost

	mfr := domain.FloatOr(m.MfrFactor, cc.DefaultMfrFact)
	count := float64(domain.IntOr(m.CoilCount, 1))
	out.Total = (out.Superconductor + out.Copper + out.Steel + out.Insulation) * mfr * count / 1e6
	return out
}

// computeCoils fills the 22.1.3 items: magnets for MFE, laser drivers for IFE
func computeCoils(ctx *costContext, a *accountBuilder) error {
	if !ctx.mfe {
		pi := ctx.in.PowerInput
		perWatt := ctx.c.DefaultLaserCostPerW
		if ctx.in.Lasers != nil {
			perWatt = domain.FloatOr(ctx.in.Lasers.CostPerWatt, perWatt)
		}
		drive := (domain.Float(pi.PImplosion) + domain.Float(pi.PIgnition)) * 1e6 // W
		a.add("C220103", "Laser drivers", drive*perWatt/1e6)
		return nil
	}

	coils := ctx.in.Coils
	cc := &ctx.c.Coils
	switch coils.Model() {
	case domain.CoilModelDetailed:
		var tf, cs, pf float64
		for _, m := range coils.Magnets {
			cost := ComputeMagnetCost(m, cc)
			switch m.Type {
			case domain.MagnetTF:
				tf += cost.Total
			case domain.MagnetCS:
				cs += cost.Total
			case domain.MagnetPF:
				pf += cost.Total
			default:
				return &AccountError{Account: CAS22, Item: "C220103", Err: fmt.Errorf("magnet %q has unknown type %q", m.Name, m.Type)}
			}
		}
		primary := tf + cs + pf
		structFactor := domain.FloatOr(coils.StructFactor, cc.StructFactor)
		a.add("C22010301", "TF coils", tf)
		a.add("C22010302", "CS coils", cs)
		a.add("C22010303", "PF coils", pf)
		a.add("C22010304", "Shim coils", cc.ShimFraction*primary)
		a.add("C22010305", "Coil structure", structFactor*primary)
		a.add("C22010306", "Coil cooling", cc.CoolingFrac*primary)

	case domain.CoilModelSimplified:
		r, err := ComputeSimplifiedCoils(ctx.in.Basic.ConfinementType, coils, cc)
		if err != nil {
			return &AccountError{Account: CAS22, Item: "C220103", Err: err}
		}
		ctx.log.Debugf("simplified coils: G=%.3f kAm=%.4g conductor=%.2f M$ markup=%.2f", r.GeometryFactor, r.TotalKAm, r.ConductorCost, r.Markup)
		a.add("C22010301", "Coil conductor", r.ConductorCost)
		a.add("C22010302", "Coil manufacturing and structure", r.Total-r.ConductorCost)

	default:
		return &AccountError{Account: CAS22, Item: "C220103", Err: fmt.Errorf("no coil model selected")}
	}
	return nil
}
