package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, name string) *domain.Inputs {
	t.Helper()
	data, err := os.ReadFile("../../testdata/" + name)
	require.NoError(t, err)
	in, err := NewInputParser().Parse(data)
	require.NoError(t, err)
	return in
}

func paths(findings []FieldError) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Path)
	}
	return out
}

func findingFor(findings []FieldError, path string) (FieldError, bool) {
	for _, f := range findings {
		if f.Path == path {
			return f, true
		}
	}
	return FieldError{}, false
}

func TestValidate_ReferenceDesignsAreValid(t *testing.T) {
	for _, fixture := range []string{"catf_mfe.yaml", "ife_laser.yaml", "mirror_dhe3.yaml"} {
		t.Run(fixture, func(t *testing.T) {
			report := Validate(parseFixture(t, fixture))
			assert.True(t, report.Valid(), "unexpected errors: %v", report.Errors)
			assert.NoError(t, report.Err())
		})
	}
}

func TestValidate_AccumulatesEveryViolation(t *testing.T) {
	report := Validate(parseFixture(t, "invalid.yaml"))
	require.False(t, report.Valid())

	got := paths(report.Errors)
	for _, want := range []string{
		"power_input",
		"radial_build",
		"coils",
		"financial",
		"basic.p_nrl",
		"basic.plant_availability",
		"basic.time_to_replace",
	} {
		assert.Contains(t, got, want)
	}

	pnrl, _ := findingFor(report.Errors, "basic.p_nrl")
	assert.Equal(t, KindRange, pnrl.Kind)
	assert.Equal(t, "-5", pnrl.Value)

	replace, _ := findingFor(report.Errors, "basic.time_to_replace")
	assert.Equal(t, KindCrossField, replace.Kind)
	assert.Equal(t, "<= plant_lifetime (30)", replace.Constraint)

	missing, _ := findingFor(report.Errors, "power_input")
	assert.Equal(t, KindRequired, missing.Kind)
}

func TestValidate_TwoRangeErrorsInOnePass(t *testing.T) {
	in := parseFixture(t, "catf_mfe.yaml")
	in.PowerInput.PInput = domain.F(-10)
	in.PowerInput.EtaTh = domain.F(1.5)

	report := Validate(in)
	require.Len(t, report.Errors, 2)
	assert.ElementsMatch(t, []string{"power_input.p_input", "power_input.eta_th"}, paths(report.Errors))
}

func TestValidate_PlantAvailabilityBounds(t *testing.T) {
	tests := []struct {
		value float64
		valid bool
	}{
		{0, false},
		{-0.1, false},
		{1e-6, true},
		{1, true},
		{1.01, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.value), func(t *testing.T) {
			in := parseFixture(t, "catf_mfe.yaml")
			in.Basic.PlantAvailability = domain.F(tt.value)

			report := Validate(in)
			assert.Equal(t, tt.valid, report.Valid(), "errors: %v", report.Errors)
			if !tt.valid {
				f, ok := findingFor(report.Errors, "basic.plant_availability")
				require.True(t, ok)
				assert.Equal(t, KindRange, f.Kind)
				assert.Equal(t, "in (0, 1]", f.Constraint)
			}
		})
	}
}

func TestValidate_WarningsSuppressedByErrors(t *testing.T) {
	in := parseFixture(t, "catf_mfe.yaml")
	in.PowerInput.EtaTh = domain.F(0.7)

	report := Validate(in)
	require.True(t, report.Valid())
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "power_input.eta_th", report.Warnings[0].Path)

	in.Basic.PNRL = domain.F(-1)
	report = Validate(in)
	assert.False(t, report.Valid())
	assert.Empty(t, report.Warnings, "no warnings alongside hard errors")
}

func TestValidate_ShieldFractionSum(t *testing.T) {
	tests := []struct {
		name string
		bfs  float64
		warn bool
	}{
		{"exact", 0.9, false},
		{"upper bound is inclusive", 0.95, false},
		{"lower bound is inclusive", 0.85, false},
		{"too high", 1.0, true},
		{"too low", 0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := parseFixture(t, "catf_mfe.yaml")
			in.Shield.FBFS = domain.F(tt.bfs)

			report := Validate(in)
			require.True(t, report.Valid())
			_, found := findingFor(report.Warnings, "shield.sum(f_sic, f_pbli, f_w, f_bfs)")
			assert.Equal(t, tt.warn, found)
		})
	}
}

func TestValidate_MachineType(t *testing.T) {
	report := Validate(nil)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "basic", report.Errors[0].Path)

	report = Validate(&domain.Inputs{Basic: &domain.Basic{}})
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "basic.fusion_machine_type", report.Errors[0].Path)

	report = Validate(&domain.Inputs{Basic: &domain.Basic{MachineType: "stellarator"}})
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Constraint, "one of mfe, ife")
}

func TestValidate_ArchetypeGroups(t *testing.T) {
	t.Run("ife needs lasers and a target factory", func(t *testing.T) {
		in := parseFixture(t, "ife_laser.yaml")
		in.Lasers = nil
		in.TargetFactory = nil
		report := Validate(in)
		assert.ElementsMatch(t, []string{"lasers", "target_factory"}, paths(report.Errors))
	})

	t.Run("mfe needs coils", func(t *testing.T) {
		in := parseFixture(t, "catf_mfe.yaml")
		in.Coils = nil
		report := Validate(in)
		assert.Equal(t, []string{"coils"}, paths(report.Errors))
	})

	t.Run("mirror needs a chamber length", func(t *testing.T) {
		in := parseFixture(t, "mirror_dhe3.yaml")
		in.RadialBuild.ChamberLength = nil
		report := Validate(in)
		assert.Equal(t, []string{"radial_build.chamber_length"}, paths(report.Errors))
	})

	t.Run("laser confinement contradicts mfe", func(t *testing.T) {
		in := parseFixture(t, "ife_laser.yaml")
		in.Basic.MachineType = domain.MachineMFE
		in.Coils = &domain.Coils{BMax: domain.F(12), RCoil: domain.F(2)}
		in.PowerInput.EtaPin = domain.F(0.5)
		in.RadialBuild.Elon = domain.F(2)
		in.RadialBuild.CoilT = domain.F(0.3)
		report := Validate(in)
		f, ok := findingFor(report.Errors, "basic.confinement_type")
		require.True(t, ok, "errors: %v", report.Errors)
		assert.Equal(t, KindCrossField, f.Kind)
	})
}

func TestValidate_Enums(t *testing.T) {
	in := parseFixture(t, "catf_mfe.yaml")
	in.Basic.FuelType = "tritium"
	in.Blanket.BlanketType = "pebble_bed"

	report := Validate(in)
	assert.ElementsMatch(t, []string{"basic.fuel_type", "blanket.blanket_type"}, paths(report.Errors))
}

func TestValidate_NonFiniteValues(t *testing.T) {
	in := parseFixture(t, "catf_mfe.yaml")
	in.Basic.PNRL = domain.F(math.NaN())
	in.PowerInput.PCryo = domain.F(math.Inf(1))

	report := Validate(in)
	assert.ElementsMatch(t, []string{"basic.p_nrl", "power_input.p_cryo"}, paths(report.Errors))
}

func TestValidate_CrossField(t *testing.T) {
	t.Run("zero input efficiency", func(t *testing.T) {
		in := parseFixture(t, "catf_mfe.yaml")
		in.PowerInput.EtaPin = domain.F(0)
		report := Validate(in)

		var kinds []ErrorKind
		for _, e := range report.Errors {
			if e.Path == "power_input.eta_pin" {
				kinds = append(kinds, e.Kind)
			}
		}
		assert.ElementsMatch(t, []ErrorKind{KindRange, KindCrossField}, kinds)
	})

	t.Run("ife checks both driver efficiencies", func(t *testing.T) {
		in := parseFixture(t, "ife_laser.yaml")
		in.PowerInput.EtaPin2 = domain.F(0)
		report := Validate(in)
		f, ok := findingFor(report.Errors, "power_input.eta_pin2")
		require.True(t, ok)
		assert.Contains(t, []ErrorKind{KindRange, KindCrossField}, f.Kind)
	})

	t.Run("direct conversion without efficiency", func(t *testing.T) {
		in := parseFixture(t, "mirror_dhe3.yaml")
		in.PowerInput.EtaDE = nil
		report := Validate(in)
		f, ok := findingFor(report.Errors, "power_input.eta_de")
		require.True(t, ok)
		assert.Equal(t, "required when f_dec > 0", f.Constraint)
	})

	t.Run("copper coils without coil power", func(t *testing.T) {
		in := parseFixture(t, "catf_mfe.yaml")
		in.Coils.CoilMaterial = domain.CoilCopper
		in.PowerInput.PCoils = domain.F(0)
		report := Validate(in)
		require.True(t, report.Valid())
		_, ok := findingFor(report.Warnings, "coils.coil_material")
		assert.True(t, ok)
	})
}

func TestValidate_BurnFractions(t *testing.T) {
	t.Run("unset for its own fuel", func(t *testing.T) {
		in := parseFixture(t, "catf_mfe.yaml")
		in.Basic.FuelType = domain.FuelDD
		report := Validate(in)
		require.True(t, report.Valid())

		f, ok := findingFor(report.Warnings, "power_input.dd_f_t")
		require.True(t, ok)
		assert.Equal(t, "not set for dd fuel -- will use default 0.969", f.Constraint)
		_, ok = findingFor(report.Warnings, "power_input.dd_f_he3")
		assert.True(t, ok)
	})

	t.Run("set for another fuel", func(t *testing.T) {
		in := parseFixture(t, "catf_mfe.yaml")
		in.PowerInput.DHe3FT = domain.F(0.9)
		report := Validate(in)
		require.True(t, report.Valid())

		f, ok := findingFor(report.Warnings, "power_input.dhe3_f_t")
		require.True(t, ok)
		assert.Equal(t, "ignored for dt fuel", f.Constraint)
	})

	t.Run("out of range even when ignored", func(t *testing.T) {
		in := parseFixture(t, "catf_mfe.yaml")
		in.PowerInput.DDFT = domain.F(1.2)
		report := Validate(in)
		assert.Equal(t, []string{"power_input.dd_f_t"}, paths(report.Errors))
	})
}

func TestValidate_Coils(t *testing.T) {
	t.Run("no coil model", func(t *testing.T) {
		in := parseFixture(t, "catf_mfe.yaml")
		in.Coils.RCoil = nil
		report := Validate(in)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0].Constraint, "either a magnets list")
	})

	t.Run("simplified bounds", func(t *testing.T) {
		in := parseFixture(t, "catf_mfe.yaml")
		in.Coils.BMax = domain.F(0)
		in.Coils.NCoils = domain.I(0)
		in.Coils.CoilMarkup = domain.F(-1)
		report := Validate(in)
		assert.ElementsMatch(t, []string{"coils.b_max", "coils.n_coils", "coils.coil_markup"}, paths(report.Errors))
	})

	t.Run("detailed magnets", func(t *testing.T) {
		in := parseFixture(t, "catf_mfe.yaml")
		in.Coils.Magnets = []domain.Magnet{
			{Name: "TF", Type: domain.MagnetTF, RCentre: domain.F(3), DZ: domain.F(0.4), FracIn: domain.F(1.5), MfrFactor: domain.F(2)},
			{Name: "XF", Type: "xf", RCentre: domain.F(3), DR: domain.F(0.3), DZ: domain.F(0.4), FracIn: domain.F(0.1), MfrFactor: domain.F(2), CoilCount: domain.I(0)},
		}
		report := Validate(in)
		assert.ElementsMatch(t, []string{
			"coils.magnets[0](TF).dr",
			"coils.magnets[0](TF).frac_in",
			"coils.magnets[1](XF).type",
			"coils.magnets[1](XF).coil_count",
		}, paths(report.Errors))

		dr, _ := findingFor(report.Errors, "coils.magnets[0](TF).dr")
		assert.Equal(t, KindRequired, dr.Kind)
	})
}

func TestValidationError_Message(t *testing.T) {
	err := (Report{Errors: []FieldError{
		{Kind: KindRange, Path: "basic.p_nrl", Value: "-5", Constraint: "> 0 (MW)"},
		{Kind: KindRequired, Path: "financial", Value: "<nil>", Constraint: "required (cannot be empty)"},
	}}).Err()
	require.Error(t, err)

	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "input validation failed with 2 error(s):", lines[0])
	assert.Equal(t, "  - basic.p_nrl = -5 -- expected: > 0 (MW)", lines[1])
	assert.Equal(t, "  - financial = <nil> -- expected: required (cannot be empty)", lines[2])

	assert.NoError(t, Report{}.Err())
}
