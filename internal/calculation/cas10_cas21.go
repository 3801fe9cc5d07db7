package calculation

import (
	"math"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// computeCAS10 prices pre-construction: land, permits, licensing and studies.
// Land is sized on total plant output and is not module-scaled.
func computeCAS10(ctx *costContext) (domain.CostAccountResult, error) {
	c := ctx.c
	a := newAccount(CAS10, "Pre-construction costs")

	landAcres := c.LandIntensity * ctx.power.PNet * math.Sqrt(ctx.nMod)
	a.add("C110000", "Land and land rights", landAcres*c.LandCostPerAcre/1e6)
	a.add("C120000", "Site permits", c.SitePermits)
	a.add("C130000", "Plant licensing", c.Licensing.For(ctx.fuel))
	a.add("C140000", "Plant permits", c.PlantPermits)
	studies := c.PlantStudiesFOAK
	if ctx.noak {
		studies = c.PlantStudiesNOAK
	}
	a.add("C150000", "Plant studies", studies)
	a.add("C160000", "Plant reports", c.PlantReports)
	a.add("C170000", "Other pre-construction costs", c.OtherPreConst)
	a.contingency("C190000", ctx)

	return a.build(ctx, false)
}

// computeCAS21 prices buildings per kW of gross electric output
func computeCAS21(ctx *costContext) (domain.CostAccountResult, error) {
	b := ctx.c.Buildings
	a := newAccount(CAS21, "Structures and improvements")
	mw := ctx.power.PET / 1000 // $/kW x MW / 1000 = M$

	// Nuclear-grade buildings shrink for magnetic machines that skip tritium breeding
	nuclear := 1.0
	if ctx.mfe && ctx.fuel != domain.FuelDT {
		nuclear = b.NonDTMFEFactor
	}
	cryo := 1.0
	if !ctx.mfe {
		cryo = b.IFECryoFactor
	}

	a.add("C210100", "Site improvements and facilities", b.SiteImprovements*mw*nuclear)
	a.add("C210200", "Fusion heat island building", b.FusionHeatIsland*mw*nuclear)
	a.add("C210300", "Turbine building", b.TurbineBuilding*mw)
	a.add("C210400", "Heat exchanger building", b.HeatExchanger*mw)
	a.add("C210500", "Power supply and energy storage", b.PowerSupplyStorage*mw)
	a.add("C210600", "Reactor auxiliaries", b.ReactorAuxiliaries*mw)
	a.add("C210700", "Hot cell", b.HotCell*mw*nuclear)
	a.add("C210800", "Reactor services building", b.ReactorServices*mw)
	a.add("C210900", "Service water building", b.ServiceWater*mw)
	a.add("C211000", "Fuel storage building", b.FuelStorage*mw*nuclear)
	a.add("C211100", "Control room", b.ControlRoom*mw)
	a.add("C211200", "On-site AC power building", b.OnsiteACPower*mw)
	a.add("C211300", "Administration building", b.Administration*mw)
	a.add("C211400", "Site services", b.SiteServices*mw)
	a.add("C211500", "Cryogenics building", b.Cryogenics*mw*cryo)
	a.add("C211600", "Security building", b.Security*mw)
	a.add("C211700", "Ventilation stack", b.VentilationStack*mw)
	a.contingency("C211900", ctx)

	return a.build(ctx, true)
}
