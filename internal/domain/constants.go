package domain

// Material holds density (kg/m^3), raw cost (USD/kg) and a manufacturing markup
type Material struct {
	Rho  float64 `yaml:"rho" json:"rho"`
	CRaw float64 `yaml:"c_raw" json:"cRaw"`
	M    float64 `yaml:"m" json:"m"`
}

// UnitCost returns the fabricated cost per cubic meter in USD
func (m Material) UnitCost() float64 {
	return m.Rho * m.CRaw * m.M
}

// MaterialTable is the reference material library
type MaterialTable struct {
	FS       Material `yaml:"fs" json:"fs"`
	W        Material `yaml:"w" json:"w"`
	Li       Material `yaml:"li" json:"li"`
	Be       Material `yaml:"be" json:"be"`
	FLiBe    Material `yaml:"flibe" json:"flibe"`
	Li4SiO4  Material `yaml:"li4sio4" json:"li4sio4"`
	Li2TiO3  Material `yaml:"li2tio3" json:"li2tio3"`
	SiC      Material `yaml:"sic" json:"sic"`
	BFS      Material `yaml:"bfs" json:"bfs"`
	Pb       Material `yaml:"pb" json:"pb"`
	SS316    Material `yaml:"ss316" json:"ss316"`
	Concrete Material `yaml:"concrete" json:"concrete"`
}

// PbLi returns the 10:1 lead-lithium eutectic derived from its constituents
func (t MaterialTable) PbLi() Material {
	return Material{
		Rho:  (t.Pb.Rho*10 + t.Li.Rho) / 11,
		CRaw: (t.Pb.CRaw*t.Pb.M*10 + t.Li.CRaw*t.Li.M) / 11,
		M:    1,
	}
}

// FuelValues holds one number per fuel type
type FuelValues struct {
	DT   float64 `yaml:"dt" json:"dt"`
	DD   float64 `yaml:"dd" json:"dd"`
	DHe3 float64 `yaml:"dhe3" json:"dhe3"`
	PB11 float64 `yaml:"pb11" json:"pb11"`
}

// For returns the value for fuel; unknown fuels get 0
func (v FuelValues) For(fuel FuelType) float64 {
	switch fuel {
	case FuelDT:
		return v.DT
	case FuelDD:
		return v.DD
	case FuelDHe3:
		return v.DHe3
	case FuelPB11:
		return v.PB11
	}
	return 0
}

// BuildingUnitCosts are CAS21 building costs in USD per kW of gross electric power
type BuildingUnitCosts struct {
	SiteImprovements   float64 `yaml:"site_improvements" json:"siteImprovements"`
	FusionHeatIsland   float64 `yaml:"fusion_heat_island" json:"fusionHeatIsland"`
	TurbineBuilding    float64 `yaml:"turbine_building" json:"turbineBuilding"`
	HeatExchanger      float64 `yaml:"heat_exchanger" json:"heatExchanger"`
	PowerSupplyStorage float64 `yaml:"power_supply_storage" json:"powerSupplyStorage"`
	ReactorAuxiliaries float64 `yaml:"reactor_auxiliaries" json:"reactorAuxiliaries"`
	HotCell            float64 `yaml:"hot_cell" json:"hotCell"`
	ReactorServices    float64 `yaml:"reactor_services" json:"reactorServices"`
	ServiceWater       float64 `yaml:"service_water" json:"serviceWater"`
	FuelStorage        float64 `yaml:"fuel_storage" json:"fuelStorage"`
	ControlRoom        float64 `yaml:"control_room" json:"controlRoom"`
	OnsiteACPower      float64 `yaml:"onsite_ac_power" json:"onsiteAcPower"`
	Administration     float64 `yaml:"administration" json:"administration"`
	SiteServices       float64 `yaml:"site_services" json:"siteServices"`
	Cryogenics         float64 `yaml:"cryogenics" json:"cryogenics"`
	Security           float64 `yaml:"security" json:"security"`
	VentilationStack   float64 `yaml:"ventilation_stack" json:"ventilationStack"`

	NonDTMFEFactor float64 `yaml:"non_dt_mfe_factor" json:"nonDtMfeFactor"` // applied to nuclear-grade buildings
	IFECryoFactor  float64 `yaml:"ife_cryo_factor" json:"ifeCryoFactor"`
}

// CoilConstants parametrize both coil costing models
type CoilConstants struct {
	CostPerKAm    map[CoilMaterial]float64    `yaml:"cost_per_kam" json:"costPerKAm"` // USD/kAm
	Markup        map[ConfinementType]float64 `yaml:"markup" json:"markup"`
	DefaultNCoils map[ConfinementType]int     `yaml:"default_n_coils" json:"defaultNCoils"`
	PathFactor    float64                     `yaml:"path_factor" json:"pathFactor"`

	// Detailed per-magnet model
	JTape          float64 `yaml:"j_tape" json:"jTape"` // A/mm^2
	FracSC         float64 `yaml:"frac_sc" json:"fracSc"`
	FracCu         float64 `yaml:"frac_cu" json:"fracCu"`
	FracSS         float64 `yaml:"frac_ss" json:"fracSs"`
	CostYBCO       float64 `yaml:"cost_ybco" json:"costYbco"` // USD/kAm
	CuDensity      float64 `yaml:"cu_density" json:"cuDensity"`
	CuCost         float64 `yaml:"cu_cost" json:"cuCost"` // USD/kg
	SSDensity      float64 `yaml:"ss_density" json:"ssDensity"`
	SSCost         float64 `yaml:"ss_cost" json:"ssCost"`
	InsDensity     float64 `yaml:"ins_density" json:"insDensity"`
	InsCost        float64 `yaml:"ins_cost" json:"insCost"`
	ShimFraction   float64 `yaml:"shim_fraction" json:"shimFraction"`
	StructFactor   float64 `yaml:"struct_factor" json:"structFactor"`
	CoolingFrac    float64 `yaml:"cooling_fraction" json:"coolingFraction"`
	DefaultMfrFact float64 `yaml:"default_mfr_factor" json:"defaultMfrFactor"`
}

// ReactorEquipmentConstants parametrize the remaining CAS22.1 items
type ReactorEquipmentConstants struct {
	MultiplierFraction float64 `yaml:"multiplier_fraction" json:"multiplierFraction"`
	IFEShieldScaling   float64 `yaml:"ife_shield_scaling" json:"ifeShieldScaling"`
	MiscShieldFraction float64 `yaml:"misc_shield_fraction" json:"miscShieldFraction"`

	// Supplementary heating, M USD per MW installed
	NBIPerMW  float64 `yaml:"nbi_per_mw" json:"nbiPerMw"`
	ICRFPerMW float64 `yaml:"icrf_per_mw" json:"icrfPerMw"`
	ECRHPerMW float64 `yaml:"ecrh_per_mw" json:"ecrhPerMw"`
	LHCDPerMW float64 `yaml:"lhcd_per_mw" json:"lhcdPerMw"`

	DivertorThicknessZ  float64 `yaml:"divertor_thickness_z" json:"divertorThicknessZ"`
	DivertorVolFraction float64 `yaml:"divertor_volume_fraction" json:"divertorVolumeFraction"`
	DivertorComplexity  float64 `yaml:"divertor_complexity" json:"divertorComplexity"`

	DECPerMW float64 `yaml:"dec_per_mw" json:"decPerMw"`

	TargetFactoryRef     float64 `yaml:"target_factory_ref" json:"targetFactoryRef"`
	TargetFactoryRefFreq float64 `yaml:"target_factory_ref_freq" json:"targetFactoryRefFreq"` // Hz
	TargetFactoryExp     float64 `yaml:"target_factory_exponent" json:"targetFactoryExponent"`

	DefaultCostPump       float64 `yaml:"default_cost_pump" json:"defaultCostPump"` // USD
	DefaultVPumpCap       float64 `yaml:"default_vpump_cap" json:"defaultVpumpCap"` // m^3
	DefaultSupplyCostPerW float64 `yaml:"default_supply_cost_per_watt" json:"defaultSupplyCostPerWatt"`

	// Installation
	WorkersPerAxisMeter float64   `yaml:"workers_per_axis_meter" json:"workersPerAxisMeter"`
	InstallDaysPerYear  float64   `yaml:"install_days_per_year" json:"installDaysPerYear"`
	InstallBaseCrew     float64   `yaml:"install_base_crew" json:"installBaseCrew"`
	InstallItemDays     []float64 `yaml:"install_item_days" json:"installItemDays"`

	// Isotope separation, M USD at 1 GWe, scaled by power^exponent
	IsotopeD2O      float64 `yaml:"isotope_d2o" json:"isotopeD2o"`
	IsotopeLi6      float64 `yaml:"isotope_li6" json:"isotopeLi6"`
	IsotopeH1       float64 `yaml:"isotope_h1" json:"isotopeH1"`
	IsotopeB11      float64 `yaml:"isotope_b11" json:"isotopeB11"`
	IsotopeHe3      float64 `yaml:"isotope_he3" json:"isotopeHe3"`
	IsotopeExponent float64 `yaml:"isotope_exponent" json:"isotopeExponent"`
}

// PlantEquipmentConstants parametrize CAS22.2 through CAS22.7
type PlantEquipmentConstants struct {
	HeatTransferPerMWth float64 `yaml:"heat_transfer_per_mwth" json:"heatTransferPerMwth"`
	AuxCoolingFactor    float64 `yaml:"aux_cooling_factor" json:"auxCoolingFactor"`
	RadwasteFactor      float64 `yaml:"radwaste_factor" json:"radwasteFactor"`
	CostIndex           float64 `yaml:"cost_index" json:"costIndex"` // escalation of the 2009 references
	CryoplantRefCost    float64 `yaml:"cryoplant_ref_cost" json:"cryoplantRefCost"`
	CryoplantRefPower   float64 `yaml:"cryoplant_ref_power" json:"cryoplantRefPower"`
	CryoplantExponent   float64 `yaml:"cryoplant_exponent" json:"cryoplantExponent"`

	FuelHandlingRefs      []float64  `yaml:"fuel_handling_refs" json:"fuelHandlingRefs"`
	FuelHandlingEscalate  float64    `yaml:"fuel_handling_escalation" json:"fuelHandlingEscalation"`
	TritiumContainment    FuelValues `yaml:"tritium_containment" json:"tritiumContainment"`
	TritiumExponent       float64    `yaml:"tritium_exponent" json:"tritiumExponent"`
	PelletInjectorRef     float64    `yaml:"pellet_injector_ref" json:"pelletInjectorRef"`
	PelletInjectorRefPNRL float64    `yaml:"pellet_injector_ref_p_nrl" json:"pelletInjectorRefPNrl"`
	PelletInjectorExp     float64    `yaml:"pellet_injector_exponent" json:"pelletInjectorExponent"`

	OtherEquipmentRef float64 `yaml:"other_equipment_ref" json:"otherEquipmentRef"`
	OtherEquipmentExp float64 `yaml:"other_equipment_exponent" json:"otherEquipmentExponent"`

	ICRefCost float64 `yaml:"ic_reference_cost" json:"icReferenceCost"`
	ICRefPTh  float64 `yaml:"ic_reference_p_th" json:"icReferencePTh"`
	ICExp     float64 `yaml:"ic_scaling_exponent" json:"icScalingExponent"`
}

// CostingConstants is the read-only reference cost table. All money values are
// M USD unless a field says otherwise.
type CostingConstants struct {
	// CAS10
	LandIntensity    float64    `yaml:"land_intensity" json:"landIntensity"`       // acres per MWe
	LandCostPerAcre  float64    `yaml:"land_cost_per_acre" json:"landCostPerAcre"` // USD
	SitePermits      float64    `yaml:"site_permits" json:"sitePermits"`
	Licensing        FuelValues `yaml:"licensing" json:"licensing"`
	LicensingTime    FuelValues `yaml:"licensing_time" json:"licensingTime"` // years, FOAK only
	PlantPermits     float64    `yaml:"plant_permits" json:"plantPermits"`
	PlantStudiesFOAK float64    `yaml:"plant_studies_foak" json:"plantStudiesFoak"`
	PlantStudiesNOAK float64    `yaml:"plant_studies_noak" json:"plantStudiesNoak"`
	PlantReports     float64    `yaml:"plant_reports" json:"plantReports"`
	OtherPreConst    float64    `yaml:"other_pre_construction" json:"otherPreConstruction"`
	ContingencyRate  float64    `yaml:"contingency_rate" json:"contingencyRate"`

	Buildings        BuildingUnitCosts         `yaml:"buildings" json:"buildings"`
	Materials        MaterialTable             `yaml:"materials" json:"materials"`
	Coils            CoilConstants             `yaml:"coils" json:"coils"`
	ReactorEquipment ReactorEquipmentConstants `yaml:"reactor_equipment" json:"reactorEquipment"`
	PlantEquipment   PlantEquipmentConstants   `yaml:"plant_equipment" json:"plantEquipment"`

	// CAS23-28
	TurbinePlantPerMW  float64             `yaml:"turbine_plant_per_mw" json:"turbinePlantPerMw"`
	ElectricPlantPerMW float64             `yaml:"electric_plant_per_mw" json:"electricPlantPerMw"`
	MiscPlantPerMW     float64             `yaml:"misc_plant_per_mw" json:"miscPlantPerMw"`
	HeatRejectionPerMW float64             `yaml:"heat_rejection_per_mw" json:"heatRejectionPerMw"`
	HeatRejectionScale float64             `yaml:"heat_rejection_scale" json:"heatRejectionScale"`
	SpecialMaterials   map[Coolant]float64 `yaml:"special_materials" json:"specialMaterials"`
	DigitalTwin        float64             `yaml:"digital_twin" json:"digitalTwin"`

	// CAS30
	IndirectFraction     float64 `yaml:"indirect_fraction" json:"indirectFraction"`
	IndirectRefBuildTime float64 `yaml:"indirect_reference_build_time" json:"indirectReferenceBuildTime"`

	// CAS50
	Shipping           float64 `yaml:"shipping" json:"shipping"`
	SparePartsFraction float64 `yaml:"spare_parts_fraction" json:"sparePartsFraction"`
	Taxes              float64 `yaml:"taxes" json:"taxes"`
	Insurance          float64 `yaml:"insurance" json:"insurance"`
	FuelLoadRefCost    float64 `yaml:"fuel_load_reference_cost" json:"fuelLoadReferenceCost"`
	FuelLoadRefPower   float64 `yaml:"fuel_load_reference_power" json:"fuelLoadReferencePower"`
	Decommissioning    float64 `yaml:"decommissioning" json:"decommissioning"`

	// CAS70/80
	OMCostPerKWYear      float64 `yaml:"om_cost_per_kw_year" json:"omCostPerKwYear"` // USD
	DeuteriumCostPerKg   float64 `yaml:"deuterium_cost_per_kg" json:"deuteriumCostPerKg"`
	DefaultLaserCostPerW float64 `yaml:"default_laser_cost_per_watt" json:"defaultLaserCostPerWatt"`
	DefaultTargetCost    float64 `yaml:"default_target_cost" json:"defaultTargetCost"` // USD per target
}

// DefaultCostingConstants returns the compiled-in reference table.
// The returned value is a fresh copy; callers may modify it freely.
func DefaultCostingConstants() CostingConstants {
	return CostingConstants{
		LandIntensity:    0.25,
		LandCostPerAcre:  10000,
		SitePermits:      3,
		Licensing:        FuelValues{DT: 5, DD: 3, DHe3: 1, PB11: 0.1},
		LicensingTime:    FuelValues{DT: 2.5, DD: 1.5, DHe3: 0.75, PB11: 0},
		PlantPermits:     2,
		PlantStudiesFOAK: 20,
		PlantStudiesNOAK: 4,
		PlantReports:     2,
		OtherPreConst:    1,
		ContingencyRate:  0.1,

		Buildings: BuildingUnitCosts{
			SiteImprovements:   268,
			FusionHeatIsland:   186.8,
			TurbineBuilding:    54.0,
			HeatExchanger:      37.8,
			PowerSupplyStorage: 10.8,
			ReactorAuxiliaries: 5.4,
			HotCell:            93.4,
			ReactorServices:    18.7,
			ServiceWater:       0.3,
			FuelStorage:        1.1,
			ControlRoom:        0.9,
			OnsiteACPower:      0.8,
			Administration:     4.4,
			SiteServices:       1.6,
			Cryogenics:         2.4,
			Security:           0.9,
			VentilationStack:   27.0,
			NonDTMFEFactor:     0.5,
			IFECryoFactor:      0.3,
		},

		Materials: MaterialTable{
			FS:       Material{Rho: 7470, CRaw: 10, M: 3},
			W:        Material{Rho: 19300, CRaw: 100, M: 3},
			Li:       Material{Rho: 534, CRaw: 70, M: 1.5},
			Be:       Material{Rho: 1850, CRaw: 900, M: 3},
			FLiBe:    Material{Rho: 1940, CRaw: 40, M: 1.2},
			Li4SiO4:  Material{Rho: 2390, CRaw: 1, M: 2},
			Li2TiO3:  Material{Rho: 3430, CRaw: 150, M: 3},
			SiC:      Material{Rho: 3200, CRaw: 14.49, M: 3},
			BFS:      Material{Rho: 7800, CRaw: 30, M: 2},
			Pb:       Material{Rho: 9400, CRaw: 2.4, M: 1.5},
			SS316:    Material{Rho: 7860, CRaw: 2, M: 2},
			Concrete: Material{Rho: 2300, CRaw: 0.52, M: 2},
		},

		Coils: CoilConstants{
			CostPerKAm: map[CoilMaterial]float64{
				CoilREBCO:  50,
				CoilNb3Sn:  7,
				CoilNbTi:   7,
				CoilCopper: 1,
			},
			Markup: map[ConfinementType]float64{
				ConfinementMagneticMirror:      2.5,
				ConfinementSphericalTokamak:    6,
				ConfinementConventionalTokamak: 8,
				ConfinementStellarator:         12,
			},
			DefaultNCoils: map[ConfinementType]int{
				ConfinementMagneticMirror:      4,
				ConfinementSphericalTokamak:    20,
				ConfinementConventionalTokamak: 26,
				ConfinementStellarator:         50,
			},
			PathFactor:     2,
			JTape:          150,
			FracSC:         0.257,
			FracCu:         0.307,
			FracSS:         0.257,
			CostYBCO:       50,
			CuDensity:      7900,
			CuCost:         10.3,
			SSDensity:      7900,
			SSCost:         5,
			InsDensity:     3000,
			InsCost:        20,
			ShimFraction:   0.05,
			StructFactor:   0.5,
			CoolingFrac:    0.1,
			DefaultMfrFact: 3,
		},

		ReactorEquipment: ReactorEquipmentConstants{
			MultiplierFraction:    0.075,
			IFEShieldScaling:      5,
			MiscShieldFraction:    0.1,
			NBIPerMW:              7.06,
			ICRFPerMW:             4.15,
			ECRHPerMW:             4.83,
			LHCDPerMW:             4.15,
			DivertorThicknessZ:    0.2,
			DivertorVolFraction:   0.3,
			DivertorComplexity:    6,
			DECPerMW:              1.5,
			TargetFactoryRef:      150,
			TargetFactoryRefFreq:  10,
			TargetFactoryExp:      0.7,
			DefaultCostPump:       40000,
			DefaultVPumpCap:       0.4,
			DefaultSupplyCostPerW: 1.0,
			WorkersPerAxisMeter:   66.0 / 4,
			InstallDaysPerYear:    300,
			InstallBaseCrew:       20,
			InstallItemDays:       []float64{100, 100, 200, 100, 150, 60, 200, 200},
			IsotopeD2O:            300,
			IsotopeLi6:            100,
			IsotopeH1:             30,
			IsotopeB11:            125,
			IsotopeHe3:            0,
			IsotopeExponent:       0.6,
		},

		PlantEquipment: PlantEquipmentConstants{
			HeatTransferPerMWth:   0.0527,
			AuxCoolingFactor:      1.1e-3,
			RadwasteFactor:        1.96e-3,
			CostIndex:             2.26,
			CryoplantRefCost:      200,
			CryoplantRefPower:     30,
			CryoplantExponent:     0.7,
			FuelHandlingRefs:      []float64{20.465, 7, 22.511, 9.76, 22.826, 47.542},
			FuelHandlingEscalate:  1.43,
			TritiumContainment:    FuelValues{DT: 200, DD: 20},
			TritiumExponent:       0.7,
			PelletInjectorRef:     30,
			PelletInjectorRefPNRL: 2000,
			PelletInjectorExp:     0.7,
			OtherEquipmentRef:     11.5,
			OtherEquipmentExp:     0.8,
			ICRefCost:             85,
			ICRefPTh:              2000,
			ICExp:                 0.5,
		},

		TurbinePlantPerMW:  0.219,
		ElectricPlantPerMW: 0.054,
		MiscPlantPerMW:     0.038,
		HeatRejectionPerMW: 0.107,
		HeatRejectionScale: 1.22,
		SpecialMaterials: map[Coolant]float64{
			CoolantFLiBe:             1.0,
			CoolantPbLi:              0.8,
			CoolantLithium:           0.5,
			CoolantOtherEutecticSalt: 0.5,
			CoolantHelium:            0.1,
			CoolantDualPbLiHelium:    0.9,
			CoolantWater:             0.01,
		},
		DigitalTwin: 5,

		IndirectFraction:     0.2,
		IndirectRefBuildTime: 6,

		Shipping:           8,
		SparePartsFraction: 0.1,
		Taxes:              100,
		Insurance:          1,
		FuelLoadRefCost:    34,
		FuelLoadRefPower:   150,
		Decommissioning:    200,

		OMCostPerKWYear:      60,
		DeuteriumCostPerKg:   2175,
		DefaultLaserCostPerW: 1.0,
		DefaultTargetCost:    0.5,
	}
}

// WithoutFixedCosts returns a copy with every plant-level fixed item zeroed.
// Under such a table LCOE does not depend on module count.
func (c CostingConstants) WithoutFixedCosts() CostingConstants {
	c.LandIntensity = 0
	c.SitePermits = 0
	c.Licensing = FuelValues{}
	c.PlantPermits = 0
	c.PlantStudiesFOAK = 0
	c.PlantStudiesNOAK = 0
	c.PlantReports = 0
	c.OtherPreConst = 0
	c.DigitalTwin = 0
	c.Shipping = 0
	c.Taxes = 0
	c.Insurance = 0
	c.Decommissioning = 0
	return c
}

// Burn-fraction defaults of the D-D and D-He3 fuel models
const (
	DefaultDDFractionT    = 0.969
	DefaultDDFractionHe3  = 0.689
	DefaultDHe3SideDDFrac = 0.07
	DefaultDHe3FractionT  = 0.97
)
