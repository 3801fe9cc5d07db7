package domain

// LineItem is one itemized subcost of a cost account
type LineItem struct {
	Code  string  `json:"code"`
	Label string  `json:"label"`
	Value float64 `json:"value"` // M USD
}

// CostAccountResult is the output of one cost-account group
type CostAccountResult struct {
	Code         string     `json:"code"`
	Label        string     `json:"label"`
	Total        float64    `json:"total"` // M USD
	Items        []LineItem `json:"items"`
	ModuleScaled bool       `json:"moduleScaled"`
}

// Item returns the value of the line item with the given code
func (r *CostAccountResult) Item(code string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	for _, it := range r.Items {
		if it.Code == code {
			return it.Value, true
		}
	}
	return 0, false
}

// PowerTable is the per-module power balance in MW
type PowerTable struct {
	PNRL        float64 `json:"pNrl"`
	PAsh        float64 `json:"pAsh"`
	PNeutron    float64 `json:"pNeutron"`
	PWall       float64 `json:"pWall"`
	PDEE        float64 `json:"pDee"`
	PDECWaste   float64 `json:"pDecWaste"`
	PTh         float64 `json:"pTh"`
	PThE        float64 `json:"pThe"`
	PET         float64 `json:"pEt"`
	PLoss       float64 `json:"pLoss"`
	PAux        float64 `json:"pAux"`
	PSub        float64 `json:"pSub"`
	PCoils      float64 `json:"pCoils"`
	PCool       float64 `json:"pCool"`
	PPump       float64 `json:"pPump"`
	PRecirc     float64 `json:"pRecirc"`
	PNet        float64 `json:"pNet"`
	QSci        float64 `json:"qSci"`
	QEng        float64 `json:"qEng"`
	RecFrac     float64 `json:"recFrac"`
	GainE       float64 `json:"gainE,omitempty"` // IFE only
	AshFraction float64 `json:"ashFraction"`
}

// FuelSplit is the fuel physics output
type FuelSplit struct {
	Fuel            FuelType `json:"fuel"`
	ChargedFraction float64  `json:"chargedFraction"`
	NeutronFraction float64  `json:"neutronFraction"`
	ChargedEnergy   float64  `json:"chargedEnergy"` // MeV per effective reaction
	TotalEnergy     float64  `json:"totalEnergy"`
}

// Layer is one shell of the radial build
type Layer struct {
	Name        string  `json:"name"`
	InnerRadius float64 `json:"innerRadius"`
	OuterRadius float64 `json:"outerRadius"`
	Volume      float64 `json:"volume"` // m^3
}

// Geometry is the resolved radial build
type Geometry struct {
	Layers []Layer `json:"layers"`
}

// Layer returns the named layer
func (g *Geometry) Layer(name string) Layer {
	for _, l := range g.Layers {
		if l.Name == name {
			return l
		}
	}
	return Layer{Name: name}
}

// Volume returns the named layer volume, 0 when absent
func (g *Geometry) Volume(name string) float64 {
	return g.Layer(name).Volume
}

// EconomicsResult is the terminal artifact of one pipeline run
type EconomicsResult struct {
	Name             string              `json:"name,omitempty"`
	Fuel             FuelType            `json:"fuel"`
	NOAK             bool                `json:"noak"`
	NMod             int                 `json:"nMod"`
	LCOE             float64             `json:"lcoe"` // USD/MWh
	LCOECentsPerKWh  float64             `json:"lcoeCentsPerKwh"`
	NPV              float64             `json:"npv"` // M USD
	OvernightCost    float64             `json:"overnightCost"`
	TotalCapitalCost float64             `json:"totalCapitalCost"`
	AnnualEnergyMWh  float64             `json:"annualEnergyMwh"`
	TotalProjectTime float64             `json:"totalProjectTime"`
	CoilModel        string              `json:"coilModel,omitempty"`
	PowerTable       PowerTable          `json:"powerTable"`
	FuelSplit        FuelSplit           `json:"fuelSplit"`
	Geometry         Geometry            `json:"geometry"`
	Accounts         []CostAccountResult `json:"accounts"`
	Notes            []string            `json:"notes,omitempty"`
}

// Account returns the account with the given code or nil
func (r *EconomicsResult) Account(code string) *CostAccountResult {
	for i := range r.Accounts {
		if r.Accounts[i].Code == code {
			return &r.Accounts[i]
		}
	}
	return nil
}

// AccountTotal returns the total of an account, 0 when absent
func (r *EconomicsResult) AccountTotal(code string) float64 {
	if a := r.Account(code); a != nil {
		return a.Total
	}
	return 0
}
