package config

import "github.com/rgehrsitz/fecons/internal/domain"

// rangeRule is one row of the declarative field table. Fields that are absent
// are skipped; presence is the required-field tier's job.
type rangeRule struct {
	path       string
	check      func(float64) bool
	constraint string
	hard       bool
}

func positive(v float64) bool    { return v > 0 }
func nonNegative(v float64) bool { return v >= 0 }
func unitClosed(v float64) bool  { return v >= 0 && v <= 1 }
func unitOpenLow(v float64) bool { return v > 0 && v <= 1 }
func atLeastOne(v float64) bool  { return v >= 1 }

var fieldRules = []rangeRule{
	// basic
	{"basic.p_nrl", positive, "> 0 (MW)", true},
	{"basic.p_net_target", positive, "> 0 (MW)", true},
	{"basic.n_mod", atLeastOne, ">= 1", true},
	{"basic.plant_availability", unitOpenLow, "in (0, 1]", true},
	{"basic.plant_lifetime", positive, "> 0 (years)", true},
	{"basic.construction_time", positive, "> 0 (years)", true},
	{"basic.downtime", nonNegative, ">= 0 (years)", true},
	{"basic.yearly_inflation", func(v float64) bool { return v >= 0 && v <= 0.5 }, "in [0, 0.5]", true},
	{"basic.time_to_replace", positive, "> 0 (years)", true},
	{"basic.implosion_frequency", positive, "> 0 (Hz)", true},

	// power_input efficiencies
	{"power_input.f_sub", unitClosed, "in [0, 1]", true},
	{"power_input.eta_p", unitOpenLow, "in (0, 1]", true},
	{"power_input.eta_th", unitOpenLow, "in (0, 1]", true},
	{"power_input.eta_pin", unitOpenLow, "in (0, 1]", true},
	{"power_input.eta_pin1", unitOpenLow, "in (0, 1]", true},
	{"power_input.eta_pin2", unitOpenLow, "in (0, 1]", true},
	{"power_input.eta_de", unitOpenLow, "in (0, 1]", true},
	{"power_input.mn", atLeastOne, ">= 1.0", true},

	// power_input powers
	{"power_input.p_cryo", nonNegative, ">= 0 (MW)", true},
	{"power_input.p_trit", nonNegative, ">= 0 (MW)", true},
	{"power_input.p_house", nonNegative, ">= 0 (MW)", true},
	{"power_input.p_cool", nonNegative, ">= 0 (MW)", true},
	{"power_input.p_coils", nonNegative, ">= 0 (MW)", true},
	{"power_input.p_input", positive, "> 0 (MW)", true},
	{"power_input.p_pump", nonNegative, ">= 0 (MW)", true},
	{"power_input.p_implosion", nonNegative, ">= 0 (MW)", true},
	{"power_input.p_ignition", nonNegative, ">= 0 (MW)", true},
	{"power_input.p_target", nonNegative, ">= 0 (MW)", true},
	{"power_input.f_dec", unitClosed, "in [0, 1]", true},

	// burn fractions, checked only when supplied
	{"power_input.dd_f_t", unitClosed, "in [0, 1]", true},
	{"power_input.dd_f_he3", unitClosed, "in [0, 1]", true},
	{"power_input.dhe3_dd_frac", unitClosed, "in [0, 1]", true},
	{"power_input.dhe3_f_t", unitClosed, "in [0, 1]", true},

	// radial_build
	{"radial_build.elon", positive, "> 0", true},
	{"radial_build.chamber_length", positive, "> 0 (m)", true},
	{"radial_build.axis_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.plasma_t", positive, "> 0 (m)", true},
	{"radial_build.vacuum_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.firstwall_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.blanket1_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.reflector_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.ht_shield_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.structure_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.gap1_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.vessel_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.coil_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.gap2_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.lt_shield_t", nonNegative, ">= 0 (m)", true},
	{"radial_build.bioshield_t", nonNegative, ">= 0 (m)", true},

	// shield
	{"shield.f_sic", unitClosed, "in [0, 1]", true},
	{"shield.f_pbli", unitClosed, "in [0, 1]", true},
	{"shield.f_w", unitClosed, "in [0, 1]", true},
	{"shield.f_bfs", unitClosed, "in [0, 1]", true},
	{"shield.ife_shield_scaling", positive, "> 0", true},

	// subsystem factors
	{"lasers.cost_per_watt", positive, "> 0 (USD/W)", true},
	{"target_factory.cost_per_target", positive, "> 0 (USD)", true},
	{"supplementary_heating.nbi_power", nonNegative, ">= 0 (MW)", true},
	{"supplementary_heating.icrf_power", nonNegative, ">= 0 (MW)", true},
	{"supplementary_heating.ecrh_power", nonNegative, ">= 0 (MW)", true},
	{"supplementary_heating.lhcd_power", nonNegative, ">= 0 (MW)", true},
	{"primary_structure.pga_factor", positive, "> 0", true},
	{"primary_structure.learning_credit", unitOpenLow, "in (0, 1]", true},
	{"primary_structure.replacement_factor", nonNegative, ">= 0", true},
	{"vacuum_system.learning_credit", unitOpenLow, "in (0, 1]", true},
	{"vacuum_system.cost_pump", nonNegative, ">= 0 (USD)", true},
	{"vacuum_system.vpump_cap", positive, "> 0 (m^3)", true},
	{"power_supplies.learning_credit", unitOpenLow, "in (0, 1]", true},
	{"power_supplies.cost_per_watt", nonNegative, ">= 0 (USD/W)", true},
	{"installation.labor_rate", nonNegative, ">= 0 (USD/day)", true},
	{"fuel_handling.learning_tenth_of_a_kind", unitOpenLow, "in (0, 1]", true},

	// financial
	{"financial.interest_rate", func(v float64) bool { return v >= 0 && v <= 0.5 }, "in [0, 0.5]", true},
	{"npv_input.discount_rate", func(v float64) bool { return v > -1 && v <= 0.5 }, "in (-1, 0.5]", true},
	{"npv_input.electricity_price", nonNegative, ">= 0 (USD/MWh)", true},

	// unusual but possible
	{"power_input.eta_th", func(v float64) bool { return v <= 0.65 }, "unusually high thermal efficiency (> 0.65)", false},
}

// required groups and fields per machine archetype
var (
	commonGroups = []string{
		"basic", "power_input", "radial_build", "shield", "blanket",
		"primary_structure", "vacuum_system", "power_supplies",
		"installation", "fuel_handling", "financial",
	}
	mfeGroups = append(append([]string{}, commonGroups...), "coils")
	ifeGroups = append(append([]string{}, commonGroups...), "lasers", "target_factory")

	commonFields = []string{
		"basic.confinement_type",
		"basic.energy_conversion",
		"basic.fuel_type",
		"basic.p_nrl",
		"basic.n_mod",
		"basic.construction_time",
		"basic.plant_lifetime",
		"basic.plant_availability",
		"basic.yearly_inflation",
		"basic.time_to_replace",

		"power_input.f_sub",
		"power_input.mn",
		"power_input.eta_p",
		"power_input.eta_th",
		"power_input.p_trit",
		"power_input.p_house",
		"power_input.p_input",
		"power_input.p_cryo",
		"power_input.p_pump",

		"radial_build.axis_t",
		"radial_build.plasma_t",
		"radial_build.vacuum_t",
		"radial_build.firstwall_t",
		"radial_build.blanket1_t",
		"radial_build.reflector_t",
		"radial_build.ht_shield_t",
		"radial_build.structure_t",
		"radial_build.gap1_t",
		"radial_build.vessel_t",
		"radial_build.gap2_t",
		"radial_build.lt_shield_t",
		"radial_build.bioshield_t",

		"shield.f_sic",
		"shield.f_pbli",
		"shield.f_w",
		"shield.f_bfs",

		"blanket.first_wall",
		"blanket.blanket_type",
		"blanket.primary_coolant",
		"blanket.secondary_coolant",
		"blanket.neutron_multiplier",
		"blanket.structure",

		"financial.interest_rate",
	}
	mfeFields = append(append([]string{}, commonFields...),
		"power_input.eta_pin",
		"radial_build.elon",
		"radial_build.coil_t",
	)
	ifeFields = append(append([]string{}, commonFields...),
		"basic.implosion_frequency",
		"power_input.eta_pin1",
		"power_input.eta_pin2",
		"power_input.p_implosion",
		"power_input.p_ignition",
		"power_input.p_target",
	)
)

// enumRule binds an enum field to its allowed spellings
type enumRule struct {
	path    string
	allowed []string
}

var enumRules = []enumRule{
	{"basic.confinement_type", domain.AllowedConfinementTypes},
	{"basic.energy_conversion", domain.AllowedEnergyConversions},
	{"basic.fuel_type", domain.AllowedFuelTypes},
	{"blanket.first_wall", domain.AllowedFirstWalls},
	{"blanket.blanket_type", domain.AllowedBlanketTypes},
	{"blanket.primary_coolant", domain.AllowedCoolants},
	{"blanket.secondary_coolant", domain.AllowedCoolants},
	{"blanket.neutron_multiplier", domain.AllowedNeutronMultipliers},
	{"blanket.structure", domain.AllowedStructures},
	{"coils.coil_material", domain.AllowedCoilMaterials},
}

// burnFractionOwners maps each burn-fraction override to the fuel that reads it
var burnFractionOwners = []struct {
	path     string
	fuel     domain.FuelType
	fallback float64
}{
	{"power_input.dd_f_t", domain.FuelDD, domain.DefaultDDFractionT},
	{"power_input.dd_f_he3", domain.FuelDD, domain.DefaultDDFractionHe3},
	{"power_input.dhe3_dd_frac", domain.FuelDHe3, domain.DefaultDHe3SideDDFrac},
	{"power_input.dhe3_f_t", domain.FuelDHe3, domain.DefaultDHe3FractionT},
}

// shieldSumTolerance bounds |sum(f) - 1| before a warning is raised
const shieldSumTolerance = 0.05
