package domain

import "strings"

// FuelType identifies the fusion fuel cycle
type FuelType string

const (
	FuelDT   FuelType = "dt"
	FuelDD   FuelType = "dd"
	FuelDHe3 FuelType = "dhe3"
	FuelPB11 FuelType = "pb11"
)

// FuelTypes lists every supported fuel in a stable order
var FuelTypes = []FuelType{FuelDT, FuelDD, FuelDHe3, FuelPB11}

// Label returns the conventional reaction notation
func (f FuelType) Label() string {
	switch f {
	case FuelDT:
		return "D-T"
	case FuelDD:
		return "D-D"
	case FuelDHe3:
		return "D-He3"
	case FuelPB11:
		return "p-B11"
	}
	return string(f)
}

// IsAneutronic reports whether the fuel is treated as aneutronic for material selection
func (f FuelType) IsAneutronic() bool {
	return f == FuelDHe3 || f == FuelPB11
}

// MachineType is the confinement archetype
type MachineType string

const (
	MachineMFE MachineType = "mfe"
	MachineIFE MachineType = "ife"
)

// ConfinementType is the machine topology within an archetype
type ConfinementType string

const (
	ConfinementSphericalTokamak    ConfinementType = "spherical_tokamak"
	ConfinementConventionalTokamak ConfinementType = "conventional_tokamak"
	ConfinementMagneticMirror      ConfinementType = "magnetic_mirror"
	ConfinementStellarator         ConfinementType = "stellarator"
	ConfinementLaserIFE            ConfinementType = "laser_ife"
)

// IsTokamak reports whether the topology is a tokamak of either aspect ratio
func (c ConfinementType) IsTokamak() bool {
	return c == ConfinementSphericalTokamak || c == ConfinementConventionalTokamak
}

// EnergyConversion is the primary power conversion route
type EnergyConversion string

const (
	ConversionTurbine      EnergyConversion = "turbine"
	ConversionDirectEnergy EnergyConversion = "direct_energy_conversion"
)

// FirstWallMaterial is the configured plasma-facing material
type FirstWallMaterial string

const (
	FirstWallTungsten      FirstWallMaterial = "tungsten"
	FirstWallLiquidLithium FirstWallMaterial = "liquid_lithium"
	FirstWallBeryllium     FirstWallMaterial = "beryllium"
	FirstWallFLiBe         FirstWallMaterial = "flibe"
)

// BlanketType selects the breeding blanket concept
type BlanketType string

const (
	BlanketFlowingLiquidFirstWall BlanketType = "flowing_liquid_first_wall"
	BlanketSolidWallLiquidBreeder BlanketType = "solid_first_wall_liquid_breeder"
	BlanketSolidWallLi4SiO4       BlanketType = "solid_first_wall_li4sio4"
	BlanketSolidWallLi2TiO3       BlanketType = "solid_first_wall_li2tio3"
	BlanketSolidWallNoBreeder     BlanketType = "solid_first_wall_no_breeder"
)

// Coolant is a blanket coolant choice
type Coolant string

const (
	CoolantHelium            Coolant = "helium"
	CoolantPbLi              Coolant = "pbli"
	CoolantLithium           Coolant = "lithium"
	CoolantFLiBe             Coolant = "flibe"
	CoolantOtherEutecticSalt Coolant = "other_eutectic_salt"
	CoolantDualPbLiHelium    Coolant = "dual_coolant_pbli_helium"
	CoolantWater             Coolant = "water"
)

// NeutronMultiplier is the blanket neutron multiplier material
type NeutronMultiplier string

const (
	MultiplierNone   NeutronMultiplier = "none"
	MultiplierBe     NeutronMultiplier = "be"
	MultiplierPb     NeutronMultiplier = "pb"
	MultiplierBe12Ti NeutronMultiplier = "be12ti"
	MultiplierPbLi   NeutronMultiplier = "pbli"
)

// StructureMaterial is the in-vessel structural alloy
type StructureMaterial string

const (
	StructureFMS      StructureMaterial = "fms"
	StructureODS      StructureMaterial = "ods"
	StructureSiC      StructureMaterial = "sic"
	StructureVanadium StructureMaterial = "vanadium"
)

// CoilMaterial is the magnet conductor
type CoilMaterial string

const (
	CoilREBCO  CoilMaterial = "rebco_hts"
	CoilNb3Sn  CoilMaterial = "nb3sn"
	CoilNbTi   CoilMaterial = "nbti"
	CoilCopper CoilMaterial = "copper"
)

// MagnetType classifies a magnet in the detailed coil model
type MagnetType string

const (
	MagnetTF MagnetType = "tf"
	MagnetCS MagnetType = "cs"
	MagnetPF MagnetType = "pf"
)

// Allowed values per enum, used by the validator and the loader.
var (
	AllowedMachineTypes       = []string{string(MachineMFE), string(MachineIFE)}
	AllowedConfinementTypes   = []string{string(ConfinementSphericalTokamak), string(ConfinementConventionalTokamak), string(ConfinementMagneticMirror), string(ConfinementStellarator), string(ConfinementLaserIFE)}
	AllowedEnergyConversions  = []string{string(ConversionTurbine), string(ConversionDirectEnergy)}
	AllowedFuelTypes          = []string{string(FuelDT), string(FuelDD), string(FuelDHe3), string(FuelPB11)}
	AllowedFirstWalls         = []string{string(FirstWallTungsten), string(FirstWallLiquidLithium), string(FirstWallBeryllium), string(FirstWallFLiBe)}
	AllowedBlanketTypes       = []string{string(BlanketFlowingLiquidFirstWall), string(BlanketSolidWallLiquidBreeder), string(BlanketSolidWallLi4SiO4), string(BlanketSolidWallLi2TiO3), string(BlanketSolidWallNoBreeder)}
	AllowedCoolants           = []string{string(CoolantHelium), string(CoolantPbLi), string(CoolantLithium), string(CoolantFLiBe), string(CoolantOtherEutecticSalt), string(CoolantDualPbLiHelium), string(CoolantWater)}
	AllowedNeutronMultipliers = []string{string(MultiplierNone), string(MultiplierBe), string(MultiplierPb), string(MultiplierBe12Ti), string(MultiplierPbLi)}
	AllowedStructures         = []string{string(StructureFMS), string(StructureODS), string(StructureSiC), string(StructureVanadium)}
	AllowedCoilMaterials      = []string{string(CoilREBCO), string(CoilNb3Sn), string(CoilNbTi), string(CoilCopper)}
	AllowedMagnetTypes        = []string{string(MagnetTF), string(MagnetCS), string(MagnetPF)}
)

// NormalizeEnum lower-cases an enum spelling and folds separators so that
// "D-T", "D_T" and "dt" compare equal where the canonical form has none.
func NormalizeEnum(raw string, allowed []string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range allowed {
		if s == a {
			return a
		}
	}
	folded := strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
	for _, a := range allowed {
		if folded == strings.ReplaceAll(a, "_", "") {
			return a
		}
	}
	return s
}

// Contains reports whether value is one of allowed
func Contains(allowed []string, value string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
