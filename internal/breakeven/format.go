package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats break-even results as a console table
type TableFormatter struct{}

// Format generates a formatted report for one solve
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN LCOE SEARCH\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Parameter:      %s (%s)\n", result.DisplayName, result.Path))
	sb.WriteString(fmt.Sprintf("Search range:   [%s, %s]\n", tf.formatValue(result.Lower), tf.formatValue(result.Upper)))
	sb.WriteString(fmt.Sprintf("Status:         %s\n", tf.formatStatus(result.Converged)))
	sb.WriteString(fmt.Sprintf("Iterations:     %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:    %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("%-12s %16s %16s\n", "", "Value", "LCOE $/MWh"))
	sb.WriteString(strings.Repeat("-", 46) + "\n")
	sb.WriteString(fmt.Sprintf("%-12s %16s %16s\n", "Baseline", tf.formatValue(result.BaselineValue), tf.formatLCOE(result.BaselineLCOE)))
	sb.WriteString(fmt.Sprintf("%-12s %16s %16s\n", "Break-even", tf.formatValue(result.Value), tf.formatLCOE(result.LCOE)))
	sb.WriteString(fmt.Sprintf("%-12s %16s %16s\n", "Target", "", tf.formatLCOE(result.TargetLCOE)))
	sb.WriteString("\n")

	change := decimal.NewFromFloat(result.RelativeChange() * 100)
	if result.BaselineValue != 0 {
		sb.WriteString(fmt.Sprintf("Required change: %s%s%%\n", tf.deltaSymbol(change), change.StringFixed(1)))
	}
	return sb.String()
}

// FormatMulti formats the ranked levers for one target
func (tf *TableFormatter) FormatMulti(result *MultiResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN LEVERS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Baseline LCOE: $%s/MWh   Target: $%s/MWh\n\n",
		tf.formatLCOE(result.BaselineLCOE), tf.formatLCOE(result.TargetLCOE)))

	sb.WriteString(fmt.Sprintf("%-28s %14s %14s %10s %6s\n", "Parameter", "Baseline", "Break-even", "Change", "Conv."))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for i := range result.Results {
		r := &result.Results[i]
		change := decimal.NewFromFloat(r.RelativeChange() * 100)
		conv := "yes"
		if !r.Converged {
			conv = "no"
		}
		sb.WriteString(fmt.Sprintf("%-28s %14s %14s %10s %6s\n",
			tf.truncate(r.DisplayName, 28),
			tf.formatValue(r.BaselineValue),
			tf.formatValue(r.Value),
			tf.deltaSymbol(change)+change.StringFixed(1)+"%",
			conv))
	}
	sb.WriteString("\n")

	if len(result.Failures) > 0 {
		sb.WriteString("NOT REACHABLE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, f := range result.Failures {
			sb.WriteString(fmt.Sprintf("%-28s %s\n", f.Path, firstLine(f.Error)))
		}
		sb.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output for a single result or a MultiResult
func (jf *JSONFormatter) Format(result any) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) formatStatus(converged bool) string {
	if converged {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) formatLCOE(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func (tf *TableFormatter) formatValue(v float64) string {
	return decimal.NewFromFloat(v).Round(4).String()
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
