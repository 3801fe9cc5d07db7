package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rgehrsitz/fecons/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input model and constants files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads an input model from a YAML or JSON file and validates it.
// Warnings are returned alongside a valid model.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Inputs, []FieldError, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	in, err := ip.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	report := Validate(in)
	if err := report.Err(); err != nil {
		return nil, nil, fmt.Errorf("input validation failed for %s: %w", filename, err)
	}
	return in, report.Warnings, nil
}

// Parse decodes an input model without validating it. JSON is accepted as YAML.
// Unknown keys are rejected so that typos do not silently fall back to defaults.
func (ip *InputParser) Parse(data []byte) (*domain.Inputs, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var in domain.Inputs
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	NormalizeEnums(&in)
	return &in, nil
}

// LoadConstants returns the compiled-in costing constants with the given YAML
// file merged over them. An empty filename returns the defaults.
func (ip *InputParser) LoadConstants(filename string) (*domain.CostingConstants, error) {
	c := domain.DefaultCostingConstants()
	if filename == "" {
		return &c, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read constants file %s: %w", filename, err)
	}
	if err := MergeConstants(&c, data); err != nil {
		return nil, fmt.Errorf("constants file %s: %w", filename, err)
	}
	return &c, nil
}

// MergeConstants decodes YAML over c; only keys present in data replace values
func MergeConstants(c *domain.CostingConstants, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if c.ContingencyRate < 0 || c.ContingencyRate > 1 {
		return fmt.Errorf("contingency_rate %g must be in [0, 1]", c.ContingencyRate)
	}
	return nil
}

// NormalizeEnums rewrites every enum field to its canonical spelling so that
// "D-T", "DT" and "dt" are accepted alike. Unknown spellings are left for the
// validator to report.
func NormalizeEnums(in *domain.Inputs) {
	if b := in.Basic; b != nil {
		b.MachineType = domain.MachineType(domain.NormalizeEnum(string(b.MachineType), domain.AllowedMachineTypes))
		b.ConfinementType = domain.ConfinementType(domain.NormalizeEnum(string(b.ConfinementType), domain.AllowedConfinementTypes))
		b.EnergyConversion = domain.EnergyConversion(domain.NormalizeEnum(string(b.EnergyConversion), domain.AllowedEnergyConversions))
		b.FuelType = domain.FuelType(domain.NormalizeEnum(string(b.FuelType), domain.AllowedFuelTypes))
	}
	if bl := in.Blanket; bl != nil {
		bl.FirstWall = domain.FirstWallMaterial(domain.NormalizeEnum(string(bl.FirstWall), domain.AllowedFirstWalls))
		bl.BlanketType = domain.BlanketType(domain.NormalizeEnum(string(bl.BlanketType), domain.AllowedBlanketTypes))
		bl.PrimaryCoolant = domain.Coolant(domain.NormalizeEnum(string(bl.PrimaryCoolant), domain.AllowedCoolants))
		bl.SecondaryCoolant = domain.Coolant(domain.NormalizeEnum(string(bl.SecondaryCoolant), domain.AllowedCoolants))
		bl.NeutronMultiplier = domain.NeutronMultiplier(domain.NormalizeEnum(string(bl.NeutronMultiplier), domain.AllowedNeutronMultipliers))
		bl.Structure = domain.StructureMaterial(domain.NormalizeEnum(string(bl.Structure), domain.AllowedStructures))
	}
	if co := in.Coils; co != nil {
		co.CoilMaterial = domain.CoilMaterial(domain.NormalizeEnum(string(co.CoilMaterial), domain.AllowedCoilMaterials))
		for i := range co.Magnets {
			co.Magnets[i].Type = domain.MagnetType(domain.NormalizeEnum(string(co.Magnets[i].Type), domain.AllowedMagnetTypes))
		}
	}
}
