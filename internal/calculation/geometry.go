package calculation

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// Radial build layer names, inside out.
const (
	LayerAxis      = "axis"
	LayerPlasma    = "plasma"
	LayerVacuum    = "vacuum"
	LayerFirstWall = "firstwall"
	LayerBlanket   = "blanket1"
	LayerReflector = "reflector"
	LayerHTShield  = "ht_shield"
	LayerStructure = "structure"
	LayerGap1      = "gap1"
	LayerVessel    = "vessel"
	LayerLTShield  = "lt_shield"
	LayerCoil      = "coil"
	LayerGap2      = "gap2"
	LayerBioshield = "bioshield"
)

// mirrorCoilFill is the fraction of the coil ring that holds conductor in a mirror
const mirrorCoilFill = 9 * 0.779 / 40

// ComputeGeometry resolves layer radii and volumes for the machine topology
func ComputeGeometry(basic *domain.Basic, rb *domain.RadialBuild) (domain.Geometry, error) {
	mfe := basic.MachineType == domain.MachineMFE
	type shell struct {
		name string
		t    float64
	}
	order := []shell{
		{LayerPlasma, domain.Float(rb.PlasmaT)},
		{LayerVacuum, domain.Float(rb.VacuumT)},
		{LayerFirstWall, domain.Float(rb.FirstWallT)},
		{LayerBlanket, domain.Float(rb.Blanket1T)},
		{LayerReflector, domain.Float(rb.ReflectorT)},
		{LayerHTShield, domain.Float(rb.HTShieldT)},
		{LayerStructure, domain.Float(rb.StructureT)},
		{LayerGap1, domain.Float(rb.Gap1T)},
		{LayerVessel, domain.Float(rb.VesselT)},
		{LayerLTShield, domain.Float(rb.LTShieldT)},
	}
	if mfe {
		order = append(order, shell{LayerCoil, domain.Float(rb.CoilT)})
	}
	order = append(order, shell{LayerGap2, domain.Float(rb.Gap2T)}, shell{LayerBioshield, domain.Float(rb.BioshieldT)})

	axisT := domain.Float(rb.AxisT)
	geom := domain.Geometry{Layers: []domain.Layer{{Name: LayerAxis, InnerRadius: axisT, OuterRadius: 2 * axisT}}}

	// the plasma starts at the axis radius; every later shell starts where the previous ended
	r := axisT
	for _, s := range order {
		geom.Layers = append(geom.Layers, domain.Layer{Name: s.name, InnerRadius: r, OuterRadius: r + s.t})
		r += s.t
	}

	switch {
	case basic.MachineType == domain.MachineIFE:
		for i := range geom.Layers {
			l := &geom.Layers[i]
			l.Volume = sphereShell(l.InnerRadius, l.OuterRadius)
		}
	case basic.ConfinementType == domain.ConfinementMagneticMirror:
		length := domain.Float(rb.ChamberLength)
		for i := range geom.Layers {
			l := &geom.Layers[i]
			l.Volume = ring(length, l.InnerRadius, l.OuterRadius)
			if l.Name == LayerCoil {
				l.Volume *= mirrorCoilFill
			}
		}
	case basic.ConfinementType.IsTokamak() || basic.ConfinementType == domain.ConfinementStellarator:
		elon := domain.Float(rb.Elon)
		plasmaIR := axisT
		for i := range geom.Layers {
			l := &geom.Layers[i]
			switch l.Name {
			case LayerAxis:
				l.Volume = 0
			case LayerGap2, LayerBioshield:
				l.Volume = ring(axisT, l.InnerRadius, l.OuterRadius)
			case LayerCoil:
				l.Volume = torusShell(axisT, l.InnerRadius-plasmaIR, l.OuterRadius-plasmaIR) * 0.5
			default:
				l.Volume = elon * torusShell(axisT, l.InnerRadius-plasmaIR, l.OuterRadius-plasmaIR)
			}
		}
	default:
		return geom, fmt.Errorf("geometry: unsupported confinement %q for %q", basic.ConfinementType, basic.MachineType)
	}

	for _, l := range geom.Layers {
		if err := checkFinite("geometry", l.Name, l.Volume); err != nil {
			return geom, err
		}
	}
	return geom, nil
}

// torusShell is the volume between minor radii rIn and rOut of a torus with major radius R
func torusShell(majorRadius, rIn, rOut float64) float64 {
	return 2 * math.Pi * math.Pi * majorRadius * (rOut*rOut - rIn*rIn)
}

func ring(height, rIn, rOut float64) float64 {
	return height * math.Pi * (rOut*rOut - rIn*rIn)
}

func sphereShell(rIn, rOut float64) float64 {
	return 4.0 / 3.0 * math.Pi * (rOut*rOut*rOut - rIn*rIn*rIn)
}
