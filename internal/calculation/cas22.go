package calculation

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// FirstWallMaterial selects the plasma-facing material by neutron damage tier.
// Only D-T honours the configured material.
func FirstWallMaterial(fuel domain.FuelType, configured domain.FirstWallMaterial, mats *domain.MaterialTable) (domain.Material, error) {
	switch fuel {
	case domain.FuelDT:
		switch configured {
		case domain.FirstWallTungsten:
			return mats.W, nil
		case domain.FirstWallLiquidLithium:
			return mats.Li, nil
		case domain.FirstWallBeryllium:
			return mats.Be, nil
		case domain.FirstWallFLiBe:
			return mats.FLiBe, nil
		}
		return domain.Material{}, fmt.Errorf("unknown first wall %q", configured)
	case domain.FuelDD:
		return mats.W, nil
	case domain.FuelDHe3, domain.FuelPB11:
		return mats.FS, nil
	}
	return domain.Material{}, fmt.Errorf("unknown fuel type %q", fuel)
}

// BlanketCost returns the breeding blanket cost in M USD. It is zero for every fuel but D-T.
func BlanketCost(fuel domain.FuelType, bt domain.BlanketType, vol float64, mats *domain.MaterialTable) (float64, error) {
	if fuel != domain.FuelDT {
		return 0, nil
	}
	switch bt {
	case domain.BlanketFlowingLiquidFirstWall, domain.BlanketSolidWallLiquidBreeder:
		return materialCost(vol, mats.Li), nil
	case domain.BlanketSolidWallLi4SiO4:
		return materialCost(vol, mats.Li4SiO4), nil
	case domain.BlanketSolidWallLi2TiO3:
		return materialCost(vol, mats.Li2TiO3), nil
	case domain.BlanketSolidWallNoBreeder:
		return 0, nil
	}
	return 0, fmt.Errorf("unknown blanket type %q", bt)
}

// computeCAS22 prices the reactor plant equipment of one module and scales it by n_mod
func computeCAS22(ctx *costContext) (domain.CostAccountResult, error) {
	a := newAccount(CAS22, "Reactor plant equipment")
	in, c := ctx.in, ctx.c
	mats := &c.Materials
	re := &c.ReactorEquipment
	pe := &c.PlantEquipment
	pt := ctx.power

	// 22.1.1 first wall, blanket, neutron multiplier
	fwMat, err := FirstWallMaterial(ctx.fuel, in.Blanket.FirstWall, mats)
	if err != nil {
		return a.res, &AccountError{Account: CAS22, Item: "C22010101", Err: err}
	}
	firstWall := materialCost(ctx.geom.Volume(LayerFirstWall), fwMat)
	blanket, err := BlanketCost(ctx.fuel, in.Blanket.BlanketType, ctx.geom.Volume(LayerBlanket), mats)
	if err != nil {
		return a.res, &AccountError{Account: CAS22, Item: "C22010102", Err: err}
	}
	var multiplier float64
	if ctx.fuel == domain.FuelDT && in.Blanket.NeutronMultiplier != "" && in.Blanket.NeutronMultiplier != domain.MultiplierNone {
		multiplier = re.MultiplierFraction * blanket
	}
	a.add("C22010101", "First wall", firstWall)
	a.add("C22010102", "Blanket", blanket)
	a.add("C22010103", "Neutron multiplier", multiplier)

	// 22.1.2 shield
	sh := in.Shield
	htUnit := domain.Float(sh.FSiC)*mats.SiC.UnitCost() +
		domain.Float(sh.FPbLi)*mats.PbLi().UnitCost() +
		domain.Float(sh.FW)*mats.W.UnitCost() +
		domain.Float(sh.FBFS)*mats.BFS.UnitCost()
	htShield := ctx.geom.Volume(LayerHTShield) * htUnit / 1e6
	if !ctx.mfe {
		htShield *= domain.FloatOr(sh.IFEShieldScaling, re.IFEShieldScaling)
	}
	bioshield := materialCost(ctx.geom.Volume(LayerBioshield), mats.Concrete)
	a.add("C22010201", "High-temperature shield", htShield)
	a.add("C22010202", "Low-temperature shield", materialCost(ctx.geom.Volume(LayerLTShield), mats.SS316))
	a.add("C22010203", "Bioshield", bioshield)
	a.add("C22010204", "Shield penetrations and misc", re.MiscShieldFraction*bioshield)

	// 22.1.3 coils or drivers
	if err := computeCoils(ctx, a); err != nil {
		return a.res, err
	}

	// 22.1.4 supplementary heating
	if h := in.SupplementaryHeating; h != nil {
		a.add("C22010401", "NBI", domain.Float(h.NBIPower)*re.NBIPerMW)
		a.add("C22010402", "ICRF", domain.Float(h.ICRFPower)*re.ICRFPerMW)
		a.add("C22010403", "ECRH", domain.Float(h.ECRHPower)*re.ECRHPerMW)
		a.add("C22010404", "LHCD", domain.Float(h.LHCDPower)*re.LHCDPerMW)
	}

	// 22.1.5 primary structure
	ps := in.PrimaryStructure
	a.add("C220105", "Primary structure", materialCost(ctx.geom.Volume(LayerStructure), mats.FS)*
		domain.FloatOr(ps.PGAFactor, 1)*
		domain.FloatOr(ps.LearningCredit, 1)*
		(1+domain.Float(ps.ReplacementFactor)))

	// 22.1.6 vacuum system
	vs := in.VacuumSystem
	vacLearning := domain.FloatOr(vs.LearningCredit, 1)
	a.add("C22010601", "Vacuum vessel", materialCost(ctx.geom.Volume(LayerVessel), mats.SS316)*vacLearning)
	pumpedVol := ctx.geom.Volume(LayerVacuum) + ctx.geom.Volume(LayerPlasma)
	pumps := math.Ceil(pumpedVol / domain.FloatOr(vs.VPumpCap, re.DefaultVPumpCap))
	a.add("C22010602", "Vacuum pumps", pumps*domain.FloatOr(vs.CostPump, re.DefaultCostPump)/1e6)

	// 22.1.7 power supplies
	sup := in.PowerSupplies
	supplyMW := pt.PCoils + domain.Float(in.PowerInput.PInput)
	a.add("C220107", "Power supplies", supplyMW*domain.FloatOr(sup.CostPerWatt, re.DefaultSupplyCostPerW)*
		domain.FloatOr(sup.LearningCredit, 1))

	// 22.1.8 divertor or target factory
	if ctx.mfe {
		axisIR := ctx.geom.Layer(LayerAxis).InnerRadius
		major := ctx.geom.Layer(LayerCoil).InnerRadius - axisIR
		thickR := 2 * (ctx.geom.Layer(LayerFirstWall).InnerRadius - axisIR)
		vol := ((major+thickR)*(major+thickR) - (major-thickR)*(major-thickR)) *
			math.Pi * re.DivertorThicknessZ * re.DivertorVolFraction
		a.add("C220108", "Divertor", materialCost(vol, mats.W)*re.DivertorComplexity)
	} else {
		freq := domain.Float(in.Basic.ImplosionFreq)
		a.add("C220108", "Target factory", re.TargetFactoryRef*powerScale(freq, re.TargetFactoryRefFreq, re.TargetFactoryExp))
	}

	// 22.1.9 direct energy converter
	a.add("C220109", "Direct energy converter", pt.PDEE*re.DECPerMW)

	// 22.1.11 installation, labor in USD per worker-day
	labor := domain.Float(in.Installation.LaborRate) / 1e6
	workers := re.WorkersPerAxisMeter * ctx.geom.Layer(LayerAxis).InnerRadius
	install := domain.Float(in.Basic.ConstructionTime) * labor * re.InstallBaseCrew * re.InstallDaysPerYear
	for _, days := range re.InstallItemDays {
		install += labor * days * workers
	}
	a.add("C220111", "Installation", install)

	// 22.1.12 isotope separation, scaled by net output in GWe
	gwe := powerScale(pt.PNet, 1000, re.IsotopeExponent)
	var d2o, li6, h1, b11 float64
	switch ctx.fuel {
	case domain.FuelDT:
		d2o, li6 = re.IsotopeD2O, re.IsotopeLi6
	case domain.FuelDD, domain.FuelDHe3:
		d2o = re.IsotopeD2O
	case domain.FuelPB11:
		h1, b11 = re.IsotopeH1, re.IsotopeB11
	}
	a.add("C22011201", "Deuterium extraction", d2o*gwe)
	a.add("C22011202", "Li-6 enrichment", li6*gwe)
	a.add("C22011203", "H-1 purification", h1*gwe)
	a.add("C22011204", "B-11 enrichment", b11*gwe)
	if ctx.fuel == domain.FuelDHe3 {
		a.add("C22011205", "He-3 extraction", re.IsotopeHe3*gwe)
	}

	// 22.2 to 22.7
	a.add("C220200", "Main and secondary coolant", pt.PTh*pe.HeatTransferPerMWth)
	a.add("C220301", "Auxiliary cooling", pe.AuxCoolingFactor*pt.PTh*pe.CostIndex)
	a.add("C220302", "Cryoplant", pe.CryoplantRefCost*powerScale(domain.Float(in.PowerInput.PCryo), pe.CryoplantRefPower, pe.CryoplantExponent))
	a.add("C220400", "Radioactive waste management", pe.RadwasteFactor*pt.PTh*pe.CostIndex)

	learning := domain.FloatOr(in.FuelHandling.LearningTenthOfAKind, 1)
	var iter float64
	for _, ref := range pe.FuelHandlingRefs {
		iter += ref
	}
	a.add("C220501", "Fuel handling and storage", iter*pe.FuelHandlingEscalate*learning)
	a.add("C220507", "Tritium containment", pe.TritiumContainment.For(ctx.fuel)*powerScale(pt.PNet, 1000, pe.TritiumExponent))
	a.add("C220508", "Pellet injection", pe.PelletInjectorRef*powerScale(pt.PNRL, pe.PelletInjectorRefPNRL, pe.PelletInjectorExp)*learning)

	a.add("C220600", "Other reactor plant equipment", pe.OtherEquipmentRef*powerScale(pt.PNet, 1000, pe.OtherEquipmentExp))
	a.add("C220700", "Instrumentation and control", icCost(pt.PTh, pe))

	return a.build(ctx, true)
}

// icCost scales the instrumentation and control reference cost with thermal power
func icCost(pTh float64, pe *domain.PlantEquipmentConstants) float64 {
	if pe.ICRefPTh <= 0 || pTh <= 0 {
		return pe.ICRefCost
	}
	return pe.ICRefCost * math.Pow(pTh/pe.ICRefPTh, pe.ICExp)
}
