package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// ErrorKind classifies a validation finding
type ErrorKind string

const (
	KindRequired   ErrorKind = "required"
	KindRange      ErrorKind = "range"
	KindCrossField ErrorKind = "cross_field"
)

// FieldError is one validation finding
type FieldError struct {
	Kind       ErrorKind `json:"kind"`
	Path       string    `json:"path"`
	Value      string    `json:"value"`
	Constraint string    `json:"constraint"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s = %s -- expected: %s", e.Path, e.Value, e.Constraint)
}

// ValidationError carries every hard error found in one pass
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "input validation failed with %d error(s):", len(e.Errors))
	for _, fe := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(fe.String())
	}
	return b.String()
}

// Report is the outcome of a validation pass. Warnings are empty whenever
// Errors is not.
type Report struct {
	Errors   []FieldError `json:"errors"`
	Warnings []FieldError `json:"warnings"`
}

// Valid reports whether no hard error was found
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns a *ValidationError when the report holds hard errors
func (r Report) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// collector accumulates findings across tiers
type collector struct {
	errors   []FieldError
	warnings []FieldError
}

func (c *collector) fail(kind ErrorKind, path, value, constraint string) {
	c.errors = append(c.errors, FieldError{Kind: kind, Path: path, Value: value, Constraint: constraint})
}

func (c *collector) warn(kind ErrorKind, path, value, message string) {
	c.warnings = append(c.warnings, FieldError{Kind: kind, Path: path, Value: value, Constraint: message})
}

func (c *collector) report() Report {
	if len(c.errors) > 0 {
		return Report{Errors: c.errors}
	}
	return Report{Warnings: c.warnings}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Validate runs every tier against in and returns the accumulated findings.
// It never stops at the first failure.
func Validate(in *domain.Inputs) Report {
	var c collector

	machine, ok := machineType(in, &c)
	if !ok {
		return c.report()
	}

	groups, fields := commonGroups, commonFields
	switch machine {
	case domain.MachineMFE:
		groups, fields = mfeGroups, mfeFields
	case domain.MachineIFE:
		groups, fields = ifeGroups, ifeFields
	}

	validateGroups(in, groups, &c)
	validateFields(in, fields, &c)
	validateEnums(in, &c)
	validateRanges(in, &c)
	validateMagnets(in, &c)
	validateSimplifiedCoils(in, machine, &c)
	validateCrossField(in, machine, &c)

	return c.report()
}

// machineType is tier 0: nothing else can be checked without it
func machineType(in *domain.Inputs, c *collector) (domain.MachineType, bool) {
	if in == nil || in.Basic == nil {
		c.fail(KindRequired, "basic", "<nil>", "required (cannot be empty)")
		return "", false
	}
	mt := in.Basic.MachineType
	if mt == "" {
		c.fail(KindRequired, "basic.fusion_machine_type", "<nil>", "required (cannot be empty)")
		return "", false
	}
	if !domain.Contains(domain.AllowedMachineTypes, string(mt)) {
		c.fail(KindRequired, "basic.fusion_machine_type", string(mt), "one of "+strings.Join(domain.AllowedMachineTypes, ", "))
		return "", false
	}
	return mt, true
}

func validateGroups(in *domain.Inputs, groups []string, c *collector) {
	for _, g := range groups {
		ref, err := domain.Lookup(in, g)
		if err != nil {
			c.fail(KindRequired, g, "<unknown>", err.Error())
			continue
		}
		if !ref.Present {
			c.fail(KindRequired, g, "<nil>", "required (cannot be empty)")
		}
	}
}

func validateFields(in *domain.Inputs, fields []string, c *collector) {
	for _, f := range fields {
		group := f[:strings.IndexByte(f, '.')]
		if g, _ := domain.Lookup(in, group); !g.Present {
			continue
		}
		ref, err := domain.Lookup(in, f)
		if err != nil {
			c.fail(KindRequired, f, "<unknown>", err.Error())
			continue
		}
		if !ref.Present {
			c.fail(KindRequired, f, "<nil>", "required (cannot be empty)")
		}
	}
	if in.Basic.ConfinementType == domain.ConfinementMagneticMirror && in.RadialBuild != nil && in.RadialBuild.ChamberLength == nil {
		c.fail(KindRequired, "radial_build.chamber_length", "<nil>", "required for magnetic_mirror")
	}
}

func validateEnums(in *domain.Inputs, c *collector) {
	for _, r := range enumRules {
		ref, err := domain.Lookup(in, r.path)
		if err != nil || !ref.Present {
			continue
		}
		if !domain.Contains(r.allowed, ref.Text) {
			c.fail(KindRequired, r.path, ref.Text, "one of "+strings.Join(r.allowed, ", "))
		}
	}
}

func validateRanges(in *domain.Inputs, c *collector) {
	for _, r := range fieldRules {
		ref, err := domain.Lookup(in, r.path)
		if err != nil {
			c.fail(KindRange, r.path, "<unknown>", err.Error())
			continue
		}
		if !ref.Present || !ref.Numeric {
			continue
		}
		v := ref.Number
		if !math.IsNaN(v) && !math.IsInf(v, 0) && r.check(v) {
			continue
		}
		if r.hard {
			c.fail(KindRange, r.path, formatNumber(v), r.constraint)
		} else {
			c.warn(KindRange, r.path, formatNumber(v), r.constraint)
		}
	}
}

func validateMagnets(in *domain.Inputs, c *collector) {
	if in.Coils == nil {
		return
	}
	for i, m := range in.Coils.Magnets {
		prefix := fmt.Sprintf("coils.magnets[%d](%s)", i, m.Name)
		if !domain.Contains(domain.AllowedMagnetTypes, string(m.Type)) {
			c.fail(KindRequired, prefix+".type", string(m.Type), "one of "+strings.Join(domain.AllowedMagnetTypes, ", "))
		}
		if m.CoilCount != nil && *m.CoilCount < 1 {
			c.fail(KindRange, prefix+".coil_count", strconv.Itoa(*m.CoilCount), ">= 1")
		}
		checks := []struct {
			name       string
			v          *float64
			ok         func(float64) bool
			constraint string
		}{
			{"r_centre", m.RCentre, positive, "> 0 (m)"},
			{"dr", m.DR, positive, "> 0 (m)"},
			{"dz", m.DZ, positive, "> 0 (m)"},
			{"frac_in", m.FracIn, unitClosed, "in [0, 1]"},
			{"mfr_factor", m.MfrFactor, positive, "> 0"},
		}
		for _, ch := range checks {
			if ch.v == nil {
				c.fail(KindRequired, prefix+"."+ch.name, "<nil>", "required (cannot be empty)")
				continue
			}
			if !ch.ok(*ch.v) {
				c.fail(KindRange, prefix+"."+ch.name, formatNumber(*ch.v), ch.constraint)
			}
		}
	}
}

func validateSimplifiedCoils(in *domain.Inputs, machine domain.MachineType, c *collector) {
	if machine != domain.MachineMFE || in.Coils == nil {
		return
	}
	coils := in.Coils
	switch coils.Model() {
	case domain.CoilModelNone:
		c.fail(KindRequired, "coils.magnets / coils.b_max+r_coil", "<nil>",
			"either a magnets list (detailed model) or b_max and r_coil (simplified model)")
		return
	case domain.CoilModelDetailed:
		return
	}

	if *coils.BMax <= 0 {
		c.fail(KindRange, "coils.b_max", formatNumber(*coils.BMax), "> 0 (T)")
	}
	if *coils.RCoil <= 0 {
		c.fail(KindRange, "coils.r_coil", formatNumber(*coils.RCoil), "> 0 (m)")
	}
	optional := []struct {
		path       string
		v          *float64
		constraint string
	}{
		{"coils.cost_per_kam", coils.CostPerKAm, "> 0 (USD/kAm)"},
		{"coils.path_factor", coils.PathFactor, "> 0"},
		{"coils.coil_markup", coils.CoilMarkup, "> 0"},
	}
	for _, o := range optional {
		if o.v != nil && *o.v <= 0 {
			c.fail(KindRange, o.path, formatNumber(*o.v), o.constraint)
		}
	}
	if coils.NCoils != nil && *coils.NCoils < 1 {
		c.fail(KindRange, "coils.n_coils", strconv.Itoa(*coils.NCoils), ">= 1")
	}
	if ct := in.Basic.ConfinementType; ct == domain.ConfinementLaserIFE {
		c.fail(KindCrossField, "basic.confinement_type", string(ct), "a magnetic topology for the simplified coil model")
	}
}

func validateCrossField(in *domain.Inputs, machine domain.MachineType, c *collector) {
	b := in.Basic

	if (b.ConfinementType == domain.ConfinementLaserIFE) != (machine == domain.MachineIFE) && b.ConfinementType != "" {
		c.fail(KindCrossField, "basic.confinement_type", string(b.ConfinementType),
			fmt.Sprintf("consistent with fusion_machine_type (%s)", machine))
	}

	if s := in.Shield; s != nil && s.FSiC != nil && s.FPbLi != nil && s.FW != nil && s.FBFS != nil {
		total := *s.FSiC + *s.FPbLi + *s.FW + *s.FBFS
		if math.Abs(total-1) > shieldSumTolerance+1e-12 {
			c.warn(KindCrossField, "shield.sum(f_sic, f_pbli, f_w, f_bfs)", strconv.FormatFloat(total, 'f', 4, 64),
				fmt.Sprintf("shield fractions sum to %.4f, expected ~1.0", total))
		}
	}

	if b.TimeToReplace != nil && b.PlantLifetime != nil && *b.TimeToReplace > *b.PlantLifetime {
		c.fail(KindCrossField, "basic.time_to_replace", formatNumber(*b.TimeToReplace),
			fmt.Sprintf("<= plant_lifetime (%s)", formatNumber(*b.PlantLifetime)))
	}

	if pi := in.PowerInput; pi != nil {
		denominators := []struct {
			path string
			v    *float64
		}{{"power_input.eta_pin", pi.EtaPin}}
		if machine == domain.MachineIFE {
			denominators = []struct {
				path string
				v    *float64
			}{{"power_input.eta_pin1", pi.EtaPin1}, {"power_input.eta_pin2", pi.EtaPin2}}
		}
		for _, d := range denominators {
			if d.v != nil && *d.v == 0 {
				c.fail(KindCrossField, d.path, "0", "> 0 (division by zero in power balance)")
			}
		}
		if machine == domain.MachineMFE && pi.FDec != nil && *pi.FDec > 0 && pi.EtaDE == nil {
			c.fail(KindCrossField, "power_input.eta_de", "<nil>", "required when f_dec > 0")
		}
	}

	if in.Coils != nil && in.Coils.CoilMaterial == domain.CoilCopper && in.PowerInput != nil {
		if in.PowerInput.PCoils == nil || *in.PowerInput.PCoils == 0 {
			c.warn(KindCrossField, "coils.coil_material", "copper",
				"copper coils need significant p_coils (100-500 MW) for resistive dissipation")
		}
	}

	if in.PowerInput != nil {
		for _, bf := range burnFractionOwners {
			ref, _ := domain.Lookup(in, bf.path)
			switch {
			case b.FuelType == bf.fuel && !ref.Present:
				c.warn(KindCrossField, bf.path, "<nil>",
					fmt.Sprintf("not set for %s fuel -- will use default %s", bf.fuel, formatNumber(bf.fallback)))
			case b.FuelType != bf.fuel && ref.Present:
				c.warn(KindCrossField, bf.path, formatNumber(ref.Number),
					fmt.Sprintf("ignored for %s fuel", b.FuelType))
			}
		}
	}
}
