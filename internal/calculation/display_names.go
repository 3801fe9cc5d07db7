package calculation

import "strings"

// parameterDisplayNames labels the input leaves that show up most in rankings
var parameterDisplayNames = map[string]string{
	"basic.p_nrl":               "Fusion Power (P_NRL)",
	"basic.p_net_target":        "Net Power Target",
	"basic.n_mod":               "Number of Modules",
	"basic.plant_lifetime":      "Plant Lifetime",
	"basic.plant_availability":  "Plant Availability",
	"basic.yearly_inflation":    "Yearly Inflation Rate",
	"basic.construction_time":   "Construction Time",
	"basic.downtime":            "Downtime",
	"basic.am":                  "Availability Multiplier",
	"basic.time_to_replace":     "Component Replacement Time",
	"basic.implosion_frequency": "Implosion Frequency",

	"power_input.eta_th":       "Thermal Efficiency (eta_th)",
	"power_input.eta_p":        "Pumping Efficiency (eta_p)",
	"power_input.eta_pin":      "Input Power Efficiency (eta_pin)",
	"power_input.eta_pin1":     "Input Power Efficiency 1 (eta_pin1)",
	"power_input.eta_pin2":     "Input Power Efficiency 2 (eta_pin2)",
	"power_input.eta_de":       "DEC Efficiency (eta_de)",
	"power_input.f_sub":        "Subsystem Fraction (f_sub)",
	"power_input.f_dec":        "DEC Capture Fraction (f_dec)",
	"power_input.mn":           "Neutron Multiplier (M_n)",
	"power_input.p_input":      "Input Power (P_input)",
	"power_input.p_pump":       "Pump Power (P_pump)",
	"power_input.p_cryo":       "Cryogenic Power (P_cryo)",
	"power_input.p_trit":       "Tritium Systems Power (P_trit)",
	"power_input.p_house":      "Housekeeping Power (P_house)",
	"power_input.p_cool":       "Coil Cooling Power (P_cool)",
	"power_input.p_coils":      "Coil Power (P_coils)",
	"power_input.p_implosion":  "Implosion Power (P_imp)",
	"power_input.p_ignition":   "Ignition Power (P_ign)",
	"power_input.p_target":     "Target Power (P_tgt)",
	"power_input.dd_f_t":       "DD Tritium Burn Fraction",
	"power_input.dd_f_he3":     "DD He-3 Burn Fraction",
	"power_input.dhe3_dd_frac": "DHe3 DD Side-Reaction Fraction",
	"power_input.dhe3_f_t":     "DHe3 Tritium Burn Fraction",

	"radial_build.elon":           "Elongation",
	"radial_build.axis_t":         "Axis Thickness",
	"radial_build.plasma_t":       "Plasma Thickness",
	"radial_build.firstwall_t":    "First Wall Thickness",
	"radial_build.blanket1_t":     "Blanket Thickness",
	"radial_build.reflector_t":    "Reflector Thickness",
	"radial_build.ht_shield_t":    "HT Shield Thickness",
	"radial_build.structure_t":    "Structure Thickness",
	"radial_build.vessel_t":       "Vessel Thickness",
	"radial_build.coil_t":         "Coil Thickness",
	"radial_build.lt_shield_t":    "LT Shield Thickness",
	"radial_build.bioshield_t":    "Bioshield Thickness",
	"radial_build.chamber_length": "Chamber Length",

	"shield.f_sic":              "SiC Fraction",
	"shield.f_pbli":             "PbLi Fraction",
	"shield.f_w":                "Tungsten Fraction",
	"shield.f_bfs":              "Boron Steel Fraction",
	"shield.ife_shield_scaling": "IFE Shield Scaling",

	"coils.b_max":         "Peak Magnetic Field (B_max)",
	"coils.r_coil":        "Coil Radius (r_coil)",
	"coils.n_coils":       "Number of Coils",
	"coils.cost_per_kam":  "Conductor Cost ($/kAm)",
	"coils.coil_markup":   "Coil Markup Factor",
	"coils.path_factor":   "Coil Path Factor",
	"coils.struct_factor": "Structure Factor",

	"lasers.cost_per_watt":             "Laser Cost ($/W)",
	"target_factory.cost_per_target":   "Target Cost ($/target)",
	"supplementary_heating.nbi_power":  "NBI Power",
	"supplementary_heating.icrf_power": "ICRF Power",
	"supplementary_heating.ecrh_power": "ECRH Power",
	"supplementary_heating.lhcd_power": "LHCD Power",

	"primary_structure.pga_factor":           "Peak Ground Acceleration Factor",
	"primary_structure.learning_credit":      "Primary Struct. Learning Credit",
	"primary_structure.replacement_factor":   "Replacement Factor",
	"vacuum_system.learning_credit":          "Vacuum Sys. Learning Credit",
	"vacuum_system.cost_pump":                "Vacuum Pump Cost",
	"vacuum_system.vpump_cap":                "Vacuum Pump Capacity",
	"power_supplies.learning_credit":         "Power Supply Learning Credit",
	"power_supplies.cost_per_watt":           "Power Supply Cost ($/W)",
	"installation.labor_rate":                "Installation Labor Rate ($/day)",
	"fuel_handling.learning_tenth_of_a_kind": "Fuel Handling Learning Credit",

	"financial.interest_rate":     "Interest Rate",
	"npv_input.discount_rate":     "Discount Rate",
	"npv_input.electricity_price": "Electricity Price",
}

// DisplayName returns a human-readable label for a dotted parameter path.
// Unlisted paths fall back to the title-cased last segment.
func DisplayName(path string) string {
	if name, ok := parameterDisplayNames[path]; ok {
		return name
	}
	last := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		last = path[i+1:]
	}
	words := strings.Fields(strings.ReplaceAll(last, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
