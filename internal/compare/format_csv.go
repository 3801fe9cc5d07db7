package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Design",
		"Type",
		"Fuel",
		"Maturity",
		"LCOE (USD/MWh)",
		"Overnight Cost (MUSD)",
		"Total Capital (MUSD)",
		"NPV (MUSD)",
		"Net Power (MW)",
		"LCOE Diff from Base",
		"LCOE % Change",
		"Overnight Diff from Base",
		"Error",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row; failed rows leave the
// numeric columns empty
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	row := []string{
		result.ScenarioName,
		scenarioType,
		string(result.Variant.Fuel),
		maturityLabel(result.Variant.NOAK),
	}
	if result.Failed() {
		return append(row, "", "", "", "", "", "", "", "", firstLine(result.Error))
	}
	return append(row,
		result.LCOE.StringFixed(4),
		result.OvernightCost.StringFixed(4),
		result.TotalCapitalCost.StringFixed(4),
		result.NPV.StringFixed(4),
		result.NetPower.StringFixed(4),
		result.LCOEDiffFromBase.StringFixed(4),
		result.LCOEPctFromBase.StringFixed(2),
		result.OvernightDiffFromBase.StringFixed(4),
		"",
	)
}
