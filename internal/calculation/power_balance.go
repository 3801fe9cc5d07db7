package calculation

import (
	"fmt"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// ComputePowerBalance derives the per-module power table from fusion power and
// the power input group.
func ComputePowerBalance(basic *domain.Basic, pi *domain.PowerInput) (domain.PowerTable, domain.FuelSplit, error) {
	var pt domain.PowerTable

	split, err := ComputeFuelSplit(basic.FuelType, FuelOverridesFrom(pi))
	if err != nil {
		return pt, split, fmt.Errorf("power balance: %w", err)
	}

	pt.PNRL = domain.Float(basic.PNRL)
	pt.AshFraction = split.ChargedFraction
	pt.PAsh, pt.PNeutron = AshNeutronPower(pt.PNRL, split)
	pt.PAux = domain.Float(pi.PTrit) + domain.Float(pi.PHouse)
	pt.PPump = domain.Float(pi.PPump)

	ashThermal := pt.PAsh
	if basic.MachineType == domain.MachineMFE {
		fDec := domain.Float(pi.FDec)
		etaDE := domain.Float(pi.EtaDE)
		pt.PDEE = fDec * etaDE * pt.PAsh
		pt.PDECWaste = fDec * (1 - etaDE) * pt.PAsh
		ashThermal = (1 - fDec) * pt.PAsh
		pt.PCool = domain.Float(pi.PCool)
		pt.PCoils = domain.Float(pi.PCoils)
	}
	pt.PWall = ashThermal

	pInput := domain.Float(pi.PInput)
	pt.PTh = domain.Float(pi.MN)*pt.PNeutron + ashThermal + pInput + domain.Float(pi.EtaP)*pt.PPump
	pt.PThE = domain.Float(pi.EtaTh) * pt.PTh
	pt.PET = pt.PDEE + pt.PThE
	pt.PLoss = pt.PTh - pt.PThE + pt.PDECWaste
	pt.PSub = domain.Float(pi.FSub) * pt.PET
	if pInput > 0 {
		pt.QSci = pt.PNRL / pInput
	}

	if basic.MachineType == domain.MachineMFE {
		pt.PRecirc = pt.PCoils + pt.PPump + pt.PSub + pt.PAux + pt.PCool +
			domain.Float(pi.PCryo) + pInput/domain.Float(pi.EtaPin)
	} else {
		pt.PRecirc = domain.Float(pi.PTarget) + pt.PPump + pt.PSub + pt.PAux +
			domain.Float(pi.PCryo) +
			domain.Float(pi.PImplosion)/domain.Float(pi.EtaPin1) +
			domain.Float(pi.PIgnition)/domain.Float(pi.EtaPin2)
		if pInput > 0 {
			pt.GainE = pt.PET / pInput
		}
	}

	pt.QEng = pt.PET / pt.PRecirc
	pt.RecFrac = 1 / pt.QEng
	pt.PNet = (1 - pt.RecFrac) * pt.PET

	checks := []struct {
		name string
		v    float64
	}{{"p_th", pt.PTh}, {"p_et", pt.PET}, {"q_eng", pt.QEng}, {"p_net", pt.PNet}}
	for _, c := range checks {
		if err := checkFinite("power_balance", c.name, c.v); err != nil {
			return pt, split, err
		}
	}
	if pt.PNet <= 0 {
		return pt, split, &AccountError{
			Account: "power_balance",
			Item:    "p_net",
			Err:     fmt.Errorf("%w: %.3f MW", ErrNonPositiveNetPower, pt.PNet),
		}
	}
	return pt, split, nil
}
