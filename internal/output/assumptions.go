package output

// DefaultAssumptions lists key modeling assumptions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"All cost accounts in millions of USD; LCOE in USD per MWh",
	"Annual energy: 8760 h x net electric power x modules x plant availability",
	"Per-module accounts (CAS22 reactor plant equipment and its dependents) are multiplied by n_mod once",
	"Annualized capital uses the effective capital recovery factor over plant lifetime",
	"O&M and fuel are levelized with the yearly inflation rate",
	"In-vessel component replacement is not costed separately",
}
