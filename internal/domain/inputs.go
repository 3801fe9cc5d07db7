package domain

// Inputs is the complete plant design handed to the costing pipeline.
// Groups are pointers so the validator can tell a missing group from a zero one;
// optional scalars are pointers for the same reason.
type Inputs struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	Basic                *Basic                `yaml:"basic" json:"basic"`
	PowerInput           *PowerInput           `yaml:"power_input" json:"power_input"`
	RadialBuild          *RadialBuild          `yaml:"radial_build" json:"radial_build"`
	Shield               *Shield               `yaml:"shield" json:"shield"`
	Blanket              *Blanket              `yaml:"blanket" json:"blanket"`
	Coils                *Coils                `yaml:"coils,omitempty" json:"coils,omitempty"`
	Lasers               *Lasers               `yaml:"lasers,omitempty" json:"lasers,omitempty"`
	TargetFactory        *TargetFactory        `yaml:"target_factory,omitempty" json:"target_factory,omitempty"`
	SupplementaryHeating *SupplementaryHeating `yaml:"supplementary_heating,omitempty" json:"supplementary_heating,omitempty"`
	PrimaryStructure     *PrimaryStructure     `yaml:"primary_structure" json:"primary_structure"`
	VacuumSystem         *VacuumSystem         `yaml:"vacuum_system" json:"vacuum_system"`
	PowerSupplies        *PowerSupplies        `yaml:"power_supplies" json:"power_supplies"`
	Installation         *Installation         `yaml:"installation" json:"installation"`
	FuelHandling         *FuelHandling         `yaml:"fuel_handling" json:"fuel_handling"`
	Financial            *Financial            `yaml:"financial" json:"financial"`
	NPV                  *NPVInput             `yaml:"npv_input,omitempty" json:"npv_input,omitempty"`
}

// Basic holds plant-level parameters that are fixed for a run
type Basic struct {
	MachineType      MachineType      `yaml:"fusion_machine_type" json:"fusion_machine_type"`
	ConfinementType  ConfinementType  `yaml:"confinement_type" json:"confinement_type"`
	EnergyConversion EnergyConversion `yaml:"energy_conversion" json:"energy_conversion"`
	FuelType         FuelType         `yaml:"fuel_type" json:"fuel_type"`
	NOAK             bool             `yaml:"noak" json:"noak"`

	PNRL              *float64 `yaml:"p_nrl,omitempty" json:"p_nrl,omitempty"`               // fusion power per module, MW
	PNetTarget        *float64 `yaml:"p_net_target,omitempty" json:"p_net_target,omitempty"` // design net electric target per module, MW
	NMod              *int     `yaml:"n_mod,omitempty" json:"n_mod,omitempty"`
	AM                *float64 `yaml:"am,omitempty" json:"am,omitempty"`
	Downtime          *float64 `yaml:"downtime,omitempty" json:"downtime,omitempty"`
	ConstructionTime  *float64 `yaml:"construction_time,omitempty" json:"construction_time,omitempty"`
	PlantLifetime     *float64 `yaml:"plant_lifetime,omitempty" json:"plant_lifetime,omitempty"`
	PlantAvailability *float64 `yaml:"plant_availability,omitempty" json:"plant_availability,omitempty"`
	YearlyInflation   *float64 `yaml:"yearly_inflation,omitempty" json:"yearly_inflation,omitempty"`
	TimeToReplace     *float64 `yaml:"time_to_replace,omitempty" json:"time_to_replace,omitempty"`
	ImplosionFreq     *float64 `yaml:"implosion_frequency,omitempty" json:"implosion_frequency,omitempty"` // Hz, IFE only
}

// PowerInput holds the power balance parameters
type PowerInput struct {
	FSub   *float64 `yaml:"f_sub,omitempty" json:"f_sub,omitempty"`
	PCryo  *float64 `yaml:"p_cryo,omitempty" json:"p_cryo,omitempty"`
	MN     *float64 `yaml:"mn,omitempty" json:"mn,omitempty"`
	EtaP   *float64 `yaml:"eta_p,omitempty" json:"eta_p,omitempty"`
	EtaTh  *float64 `yaml:"eta_th,omitempty" json:"eta_th,omitempty"`
	PTrit  *float64 `yaml:"p_trit,omitempty" json:"p_trit,omitempty"`
	PHouse *float64 `yaml:"p_house,omitempty" json:"p_house,omitempty"`
	PCool  *float64 `yaml:"p_cool,omitempty" json:"p_cool,omitempty"`
	PCoils *float64 `yaml:"p_coils,omitempty" json:"p_coils,omitempty"`

	EtaPin  *float64 `yaml:"eta_pin,omitempty" json:"eta_pin,omitempty"`
	EtaPin1 *float64 `yaml:"eta_pin1,omitempty" json:"eta_pin1,omitempty"`
	EtaPin2 *float64 `yaml:"eta_pin2,omitempty" json:"eta_pin2,omitempty"`
	EtaDE   *float64 `yaml:"eta_de,omitempty" json:"eta_de,omitempty"`

	PInput     *float64 `yaml:"p_input,omitempty" json:"p_input,omitempty"`
	PImplosion *float64 `yaml:"p_implosion,omitempty" json:"p_implosion,omitempty"`
	PIgnition  *float64 `yaml:"p_ignition,omitempty" json:"p_ignition,omitempty"`
	PTarget    *float64 `yaml:"p_target,omitempty" json:"p_target,omitempty"`
	PPump      *float64 `yaml:"p_pump,omitempty" json:"p_pump,omitempty"`
	FDec       *float64 `yaml:"f_dec,omitempty" json:"f_dec,omitempty"`

	// Burn-fraction overrides; nil means the fuel physics default
	DDFT       *float64 `yaml:"dd_f_t,omitempty" json:"dd_f_t,omitempty"`
	DDFHe3     *float64 `yaml:"dd_f_he3,omitempty" json:"dd_f_he3,omitempty"`
	DHe3DDFrac *float64 `yaml:"dhe3_dd_frac,omitempty" json:"dhe3_dd_frac,omitempty"`
	DHe3FT     *float64 `yaml:"dhe3_f_t,omitempty" json:"dhe3_f_t,omitempty"`
}

// RadialBuild holds layer thicknesses in meters, inside out
type RadialBuild struct {
	Elon          *float64 `yaml:"elon,omitempty" json:"elon,omitempty"`
	ChamberLength *float64 `yaml:"chamber_length,omitempty" json:"chamber_length,omitempty"` // mirrors only

	AxisT      *float64 `yaml:"axis_t,omitempty" json:"axis_t,omitempty"`
	PlasmaT    *float64 `yaml:"plasma_t,omitempty" json:"plasma_t,omitempty"`
	VacuumT    *float64 `yaml:"vacuum_t,omitempty" json:"vacuum_t,omitempty"`
	FirstWallT *float64 `yaml:"firstwall_t,omitempty" json:"firstwall_t,omitempty"`
	Blanket1T  *float64 `yaml:"blanket1_t,omitempty" json:"blanket1_t,omitempty"`
	ReflectorT *float64 `yaml:"reflector_t,omitempty" json:"reflector_t,omitempty"`
	HTShieldT  *float64 `yaml:"ht_shield_t,omitempty" json:"ht_shield_t,omitempty"`
	StructureT *float64 `yaml:"structure_t,omitempty" json:"structure_t,omitempty"`
	Gap1T      *float64 `yaml:"gap1_t,omitempty" json:"gap1_t,omitempty"`
	VesselT    *float64 `yaml:"vessel_t,omitempty" json:"vessel_t,omitempty"`
	LTShieldT  *float64 `yaml:"lt_shield_t,omitempty" json:"lt_shield_t,omitempty"`
	CoilT      *float64 `yaml:"coil_t,omitempty" json:"coil_t,omitempty"`
	Gap2T      *float64 `yaml:"gap2_t,omitempty" json:"gap2_t,omitempty"`
	BioshieldT *float64 `yaml:"bioshield_t,omitempty" json:"bioshield_t,omitempty"`
}

// Shield holds the high-temperature shield material fractions
type Shield struct {
	FSiC             *float64 `yaml:"f_sic,omitempty" json:"f_sic,omitempty"`
	FPbLi            *float64 `yaml:"f_pbli,omitempty" json:"f_pbli,omitempty"`
	FW               *float64 `yaml:"f_w,omitempty" json:"f_w,omitempty"`
	FBFS             *float64 `yaml:"f_bfs,omitempty" json:"f_bfs,omitempty"`
	IFEShieldScaling *float64 `yaml:"ife_shield_scaling,omitempty" json:"ife_shield_scaling,omitempty"`
}

// Blanket selects in-vessel materials
type Blanket struct {
	FirstWall         FirstWallMaterial `yaml:"first_wall" json:"first_wall"`
	BlanketType       BlanketType       `yaml:"blanket_type" json:"blanket_type"`
	PrimaryCoolant    Coolant           `yaml:"primary_coolant" json:"primary_coolant"`
	SecondaryCoolant  Coolant           `yaml:"secondary_coolant" json:"secondary_coolant"`
	NeutronMultiplier NeutronMultiplier `yaml:"neutron_multiplier" json:"neutron_multiplier"`
	Structure         StructureMaterial `yaml:"structure" json:"structure"`
}

// Coils configures the magnet system. Populating Magnets selects the detailed
// model; BMax and RCoil select the simplified scaling model.
type Coils struct {
	Magnets []Magnet `yaml:"magnets,omitempty" json:"magnets,omitempty"`

	BMax         *float64     `yaml:"b_max,omitempty" json:"b_max,omitempty"`   // T
	RCoil        *float64     `yaml:"r_coil,omitempty" json:"r_coil,omitempty"` // m
	NCoils       *int         `yaml:"n_coils,omitempty" json:"n_coils,omitempty"`
	CoilMaterial CoilMaterial `yaml:"coil_material,omitempty" json:"coil_material,omitempty"`
	CostPerKAm   *float64     `yaml:"cost_per_kam,omitempty" json:"cost_per_kam,omitempty"`
	CoilMarkup   *float64     `yaml:"coil_markup,omitempty" json:"coil_markup,omitempty"`
	PathFactor   *float64     `yaml:"path_factor,omitempty" json:"path_factor,omitempty"`

	StructFactor *float64 `yaml:"struct_factor,omitempty" json:"struct_factor,omitempty"`
}

// Magnet is one magnet family in the detailed coil model
type Magnet struct {
	Name      string     `yaml:"name" json:"name"`
	Type      MagnetType `yaml:"type" json:"type"`
	CoilCount *int       `yaml:"coil_count,omitempty" json:"coil_count,omitempty"`
	RCentre   *float64   `yaml:"r_centre,omitempty" json:"r_centre,omitempty"`
	DR        *float64   `yaml:"dr,omitempty" json:"dr,omitempty"`
	DZ        *float64   `yaml:"dz,omitempty" json:"dz,omitempty"`
	FracIn    *float64   `yaml:"frac_in,omitempty" json:"frac_in,omitempty"`
	MfrFactor *float64   `yaml:"mfr_factor,omitempty" json:"mfr_factor,omitempty"`
}

// CoilModel is the resolved coil costing variant
type CoilModel int

const (
	CoilModelNone CoilModel = iota
	CoilModelDetailed
	CoilModelSimplified
)

func (m CoilModel) String() string {
	switch m {
	case CoilModelDetailed:
		return "detailed"
	case CoilModelSimplified:
		return "simplified"
	}
	return "none"
}

// Model resolves which coil costing path applies. A non-empty magnet list
// always wins; otherwise both BMax and RCoil must be present.
func (c *Coils) Model() CoilModel {
	if c == nil {
		return CoilModelNone
	}
	if len(c.Magnets) > 0 {
		return CoilModelDetailed
	}
	if c.BMax != nil && c.RCoil != nil {
		return CoilModelSimplified
	}
	return CoilModelNone
}

// Lasers configures IFE driver costing
type Lasers struct {
	CostPerWatt *float64 `yaml:"cost_per_watt,omitempty" json:"cost_per_watt,omitempty"`
}

// TargetFactory configures IFE target costing
type TargetFactory struct {
	CostPerTarget *float64 `yaml:"cost_per_target,omitempty" json:"cost_per_target,omitempty"` // USD
}

// SupplementaryHeating holds installed heating and current drive powers in MW
type SupplementaryHeating struct {
	NBIPower  *float64 `yaml:"nbi_power,omitempty" json:"nbi_power,omitempty"`
	ICRFPower *float64 `yaml:"icrf_power,omitempty" json:"icrf_power,omitempty"`
	ECRHPower *float64 `yaml:"ecrh_power,omitempty" json:"ecrh_power,omitempty"`
	LHCDPower *float64 `yaml:"lhcd_power,omitempty" json:"lhcd_power,omitempty"`
}

// PrimaryStructure configures the support structure costing
type PrimaryStructure struct {
	PGAFactor         *float64 `yaml:"pga_factor,omitempty" json:"pga_factor,omitempty"` // seismic design multiplier
	LearningCredit    *float64 `yaml:"learning_credit,omitempty" json:"learning_credit,omitempty"`
	ReplacementFactor *float64 `yaml:"replacement_factor,omitempty" json:"replacement_factor,omitempty"`
}

// VacuumSystem configures vessel and pumping costs
type VacuumSystem struct {
	LearningCredit *float64 `yaml:"learning_credit,omitempty" json:"learning_credit,omitempty"`
	CostPump       *float64 `yaml:"cost_pump,omitempty" json:"cost_pump,omitempty"` // USD per pump
	VPumpCap       *float64 `yaml:"vpump_cap,omitempty" json:"vpump_cap,omitempty"` // m^3 per pump
}

// PowerSupplies configures pulsed and steady power supply costs
type PowerSupplies struct {
	LearningCredit *float64 `yaml:"learning_credit,omitempty" json:"learning_credit,omitempty"`
	CostPerWatt    *float64 `yaml:"cost_per_watt,omitempty" json:"cost_per_watt,omitempty"`
}

// Installation configures site labor
type Installation struct {
	LaborRate *float64 `yaml:"labor_rate,omitempty" json:"labor_rate,omitempty"` // USD per worker-day
}

// FuelHandling configures the fuel cycle plant learning credit
type FuelHandling struct {
	LearningTenthOfAKind *float64 `yaml:"learning_tenth_of_a_kind,omitempty" json:"learning_tenth_of_a_kind,omitempty"`
}

// Financial holds financing parameters
type Financial struct {
	InterestRate *float64 `yaml:"interest_rate,omitempty" json:"interest_rate,omitempty"`
}

// NPVInput configures the net present value calculation
type NPVInput struct {
	DiscountRate     *float64 `yaml:"discount_rate,omitempty" json:"discount_rate,omitempty"`
	ElectricityPrice *float64 `yaml:"electricity_price,omitempty" json:"electricity_price,omitempty"` // USD/MWh
}

// Float returns *p or 0 when p is nil
func Float(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// FloatOr returns *p or def when p is nil
func FloatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// IntOr returns *p or def when p is nil
func IntOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// F returns a pointer to v; handy for building inputs in code and tests
func F(v float64) *float64 { return &v }

// I returns a pointer to v
func I(v int) *int { return &v }
