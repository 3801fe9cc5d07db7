package calculation

import (
	"fmt"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// Reaction energies in MeV.
const (
	dtChargedMeV = 3.52
	dtTotalMeV   = 17.58
	dtNeutronMeV = 14.06

	// D-D branch averages (half T+p, half He3+n)
	ddBaseChargedMeV = 2.425
	ddBaseTotalMeV   = 3.65
	ddBaseNeutronMeV = 1.225

	dhe3TotalMeV = 18.35
)

// Burn-fraction defaults used when the input leaves them unset.
const (
	DefaultDDFractionT    = domain.DefaultDDFractionT
	DefaultDDFractionHe3  = domain.DefaultDDFractionHe3
	DefaultDHe3SideDDFrac = domain.DefaultDHe3SideDDFrac
	DefaultDHe3FractionT  = domain.DefaultDHe3FractionT
)

// FuelOverrides carries optional burn-fraction overrides; nil fields use defaults
type FuelOverrides struct {
	DDFractionT   *float64
	DDFractionHe3 *float64
	DHe3SideDD    *float64
	DHe3FractionT *float64
}

// FuelOverridesFrom extracts the overrides from a power input group
func FuelOverridesFrom(p *domain.PowerInput) FuelOverrides {
	if p == nil {
		return FuelOverrides{}
	}
	return FuelOverrides{
		DDFractionT:   p.DDFT,
		DDFractionHe3: p.DDFHe3,
		DHe3SideDD:    p.DHe3DDFrac,
		DHe3FractionT: p.DHe3FT,
	}
}

// ComputeFuelSplit returns the charged (ash) and neutron energy fractions for a fuel.
// The two fractions always sum to one.
func ComputeFuelSplit(fuel domain.FuelType, o FuelOverrides) (domain.FuelSplit, error) {
	split := domain.FuelSplit{Fuel: fuel}

	switch fuel {
	case domain.FuelDT:
		split.ChargedEnergy = dtChargedMeV
		split.TotalEnergy = dtTotalMeV

	case domain.FuelDD:
		fT := domain.FloatOr(o.DDFractionT, DefaultDDFractionT)
		fHe3 := domain.FloatOr(o.DDFractionHe3, DefaultDDFractionHe3)
		// semi-catalyzed: secondary D-T and D-He3 burns of the D-D products
		split.ChargedEnergy = ddBaseChargedMeV + 0.5*fT*dtChargedMeV + 0.5*fHe3*dhe3TotalMeV
		split.TotalEnergy = ddBaseTotalMeV + 0.5*fT*dtTotalMeV + 0.5*fHe3*dhe3TotalMeV

	case domain.FuelDHe3:
		side := domain.FloatOr(o.DHe3SideDD, DefaultDHe3SideDDFrac)
		fT := domain.FloatOr(o.DHe3FractionT, DefaultDHe3FractionT)
		eNeutron := ddBaseNeutronMeV + 0.5*fT*dtNeutronMeV
		eCharged := ddBaseChargedMeV + 0.5*fT*dtChargedMeV
		split.ChargedFraction = (1 - side) + side*eCharged/(eNeutron+eCharged)
		split.NeutronFraction = 1 - split.ChargedFraction
		split.ChargedEnergy = split.ChargedFraction * dhe3TotalMeV
		split.TotalEnergy = dhe3TotalMeV
		return split, nil

	case domain.FuelPB11:
		split.ChargedEnergy = 8.68
		split.TotalEnergy = 8.68

	default:
		return split, fmt.Errorf("unknown fuel type %q", fuel)
	}

	split.ChargedFraction = split.ChargedEnergy / split.TotalEnergy
	split.NeutronFraction = 1 - split.ChargedFraction
	return split, nil
}

// AshNeutronPower splits fusion power pNRL (MW) into ash and neutron power
func AshNeutronPower(pNRL float64, split domain.FuelSplit) (pAsh, pNeutron float64) {
	return pNRL * split.ChargedFraction, pNRL * split.NeutronFraction
}
