package domain

// SensitivityEntry is the measured elasticity of LCOE to one input leaf
type SensitivityEntry struct {
	Path          string  `json:"path"`
	DisplayName   string  `json:"displayName"`
	BaselineValue float64 `json:"baselineValue"`
	PerturbedLCOE float64 `json:"perturbedLcoe"`
	Derivative    float64 `json:"derivative"` // dLCOE/dparam, USD/MWh per unit
	Elasticity    float64 `json:"elasticity"`
}

// SensitivityFailure records a perturbation run that could not complete
type SensitivityFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// SensitivityResult is the ranked outcome of a sweep
type SensitivityResult struct {
	DeltaFraction      float64              `json:"deltaFraction"`
	BaselineLCOE       float64              `json:"baselineLcoe"`
	ParametersAnalyzed int                  `json:"parametersAnalyzed"`
	SkippedZero        []string             `json:"skippedZero,omitempty"`
	Entries            []SensitivityEntry   `json:"entries"`
	Failures           []SensitivityFailure `json:"failures,omitempty"`
	Interrupted        bool                 `json:"interrupted,omitempty"`
}

// SensitivityOptions configures a sweep
type SensitivityOptions struct {
	Step    float64  `yaml:"step" json:"step"` // relative perturbation, default 0.01
	TopN    int      `yaml:"top_n" json:"topN"`
	Workers int      `yaml:"workers" json:"workers"`
	Skip    []string `yaml:"skip,omitempty" json:"skip,omitempty"` // paths already measured
}

// DefaultSensitivityStep is the relative perturbation used when none is given
const DefaultSensitivityStep = 0.01

// DefaultSensitivityTopN is the default ranking cut-off
const DefaultSensitivityTopN = 10
