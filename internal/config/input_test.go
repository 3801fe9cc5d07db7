package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInputParser_LoadFromFile(t *testing.T) {
	parser := NewInputParser()

	for _, fixture := range []string{"catf_mfe.yaml", "ife_laser.yaml", "mirror_dhe3.yaml"} {
		t.Run(fixture, func(t *testing.T) {
			in, _, err := parser.LoadFromFile("../../testdata/" + fixture)
			require.NoError(t, err)
			require.NotNil(t, in.Basic)
			assert.NotEmpty(t, in.Name)
		})
	}
}

func TestInputParser_LoadFromFile_Errors(t *testing.T) {
	parser := NewInputParser()

	t.Run("missing file", func(t *testing.T) {
		_, _, err := parser.LoadFromFile("nonexistent.yaml")
		assert.ErrorContains(t, err, "failed to read file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "basic: [unclosed\n")
		_, _, err := parser.LoadFromFile(path)
		assert.ErrorContains(t, err, "failed to parse YAML")
	})

	t.Run("empty document", func(t *testing.T) {
		path := writeFile(t, "empty.yaml", "")
		_, _, err := parser.LoadFromFile(path)
		assert.ErrorContains(t, err, "empty document")
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeFile(t, "typo.yaml", "basic:\n  fusion_machine_type: mfe\n  p_nrll: 2600\n")
		_, _, err := parser.LoadFromFile(path)
		assert.ErrorContains(t, err, "failed to parse YAML")
		assert.ErrorContains(t, err, "p_nrll")
	})

	t.Run("validation failure", func(t *testing.T) {
		_, _, err := parser.LoadFromFile("../../testdata/invalid.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input validation failed for ../../testdata/invalid.yaml")

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Greater(t, len(verr.Errors), 2)
	})
}

func TestInputParser_LoadFromFile_ReturnsWarnings(t *testing.T) {
	_, warnings, err := NewInputParser().LoadFromFile("../../testdata/catf_mfe.yaml")
	require.NoError(t, err)
	assert.Empty(t, warnings, "the reference design is warning-free")

	data, err := os.ReadFile("../../testdata/catf_mfe.yaml")
	require.NoError(t, err)
	hot := strings.Replace(string(data), "eta_th: 0.46", "eta_th: 0.7", 1)
	path := writeFile(t, "hot.yaml", hot)

	in, warnings, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err, "warnings do not block loading")
	require.NotNil(t, in)
	require.Len(t, warnings, 1)
	assert.Equal(t, "power_input.eta_th", warnings[0].Path)
	assert.Equal(t, KindRange, warnings[0].Kind)
}

func TestInputParser_Parse_NormalizesEnums(t *testing.T) {
	doc := `
basic:
  fusion_machine_type: MFE
  confinement_type: Spherical Tokamak
  energy_conversion: turbine
  fuel_type: D-T
blanket:
  first_wall: Liquid-Lithium
  blanket_type: solid_first_wall_no_breeder
  primary_coolant: PbLi
  secondary_coolant: none
  neutron_multiplier: Be12Ti
  structure: FMS
coils:
  coil_material: REBCO-HTS
  magnets:
    - name: TF
      type: TF
`
	in, err := NewInputParser().Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, domain.MachineMFE, in.Basic.MachineType)
	assert.Equal(t, domain.ConfinementSphericalTokamak, in.Basic.ConfinementType)
	assert.Equal(t, domain.FuelDT, in.Basic.FuelType)
	assert.Equal(t, domain.FirstWallLiquidLithium, in.Blanket.FirstWall)
	assert.Equal(t, domain.CoolantPbLi, in.Blanket.PrimaryCoolant)
	assert.Equal(t, domain.Coolant("none"), in.Blanket.SecondaryCoolant, "unknown spellings are left for the validator")
	assert.Equal(t, domain.MultiplierBe12Ti, in.Blanket.NeutronMultiplier)
	assert.Equal(t, domain.StructureFMS, in.Blanket.Structure)
	assert.Equal(t, domain.CoilREBCO, in.Coils.CoilMaterial)
	assert.Equal(t, domain.MagnetTF, in.Coils.Magnets[0].Type)
}

func TestInputParser_Parse_AcceptsJSON(t *testing.T) {
	doc := `{"name": "json design", "basic": {"fusion_machine_type": "ife", "p_nrl": 2000, "n_mod": 2}}`
	in, err := NewInputParser().Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "json design", in.Name)
	assert.Equal(t, domain.MachineIFE, in.Basic.MachineType)
	assert.Equal(t, 2000.0, *in.Basic.PNRL)
	assert.Equal(t, 2, *in.Basic.NMod)
}

func TestInputParser_LoadConstants(t *testing.T) {
	parser := NewInputParser()
	defaults := domain.DefaultCostingConstants()

	t.Run("no file returns defaults", func(t *testing.T) {
		c, err := parser.LoadConstants("")
		require.NoError(t, err)
		assert.Equal(t, defaults, *c)
	})

	t.Run("file merges over defaults", func(t *testing.T) {
		path := writeFile(t, "constants.yaml", `
contingency_rate: 0.2
materials:
  w:
    c_raw: 120
coils:
  cost_per_kam:
    rebco_hts: 10
`)
		c, err := parser.LoadConstants(path)
		require.NoError(t, err)

		assert.Equal(t, 0.2, c.ContingencyRate)
		assert.Equal(t, 120.0, c.Materials.W.CRaw)
		assert.Equal(t, defaults.Materials.W.Rho, c.Materials.W.Rho, "unspecified keys keep their defaults")
		assert.Equal(t, 10.0, c.Coils.CostPerKAm[domain.CoilREBCO])
		assert.Equal(t, defaults.Coils.CostPerKAm[domain.CoilNb3Sn], c.Coils.CostPerKAm[domain.CoilNb3Sn])
		assert.Equal(t, defaults.LandCostPerAcre, c.LandCostPerAcre)

		fresh := domain.DefaultCostingConstants()
		assert.Equal(t, defaults, fresh, "loading must not leak into the compiled-in table")
	})

	t.Run("out of range contingency", func(t *testing.T) {
		path := writeFile(t, "constants.yaml", "contingency_rate: 1.5\n")
		_, err := parser.LoadConstants(path)
		assert.ErrorContains(t, err, "contingency_rate")
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeFile(t, "constants.yaml", "contingencyrate: 0.1\n")
		_, err := parser.LoadConstants(path)
		assert.ErrorContains(t, err, "failed to parse YAML")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := parser.LoadConstants("nonexistent.yaml")
		assert.ErrorContains(t, err, "failed to read constants file")
	})
}
