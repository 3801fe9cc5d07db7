package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing design variants
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	// Header
	sb.WriteString("FUSION PLANT DESIGN COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Base Design: %s\n", compSet.BaseScenarioName))
	if compSet.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Input: %s\n", compSet.ConfigPath))
	}
	sb.WriteString("\n")

	nameWidth := 32
	numWidth := 11

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Design",
		numWidth, "LCOE $/MWh",
		numWidth, "Overnight",
		numWidth, "Capital",
		numWidth, "P_net MW"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	if base := compSet.BaseResult; base != nil {
		sb.WriteString(tf.formatRow(base, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 80) + "\n")

	// Comparison details (deltas from base)
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Failed() {
				sb.WriteString(fmt.Sprintf("  FAILED: %s\n", firstLine(alt.Error)))
				for _, v := range alt.Violations {
					sb.WriteString(fmt.Sprintf("    - %s\n", v.String()))
				}
				continue
			}

			sb.WriteString(fmt.Sprintf("  LCOE:             %s$%s/MWh (%s%s%%)\n",
				tf.deltaSymbol(alt.LCOEDiffFromBase),
				alt.LCOEDiffFromBase.Abs().StringFixed(2),
				tf.deltaSymbol(alt.LCOEPctFromBase),
				alt.LCOEPctFromBase.Abs().StringFixed(1)))

			if !alt.OvernightDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Overnight Cost:   %s$%s\n",
					tf.deltaSymbol(alt.OvernightDiffFromBase),
					tf.formatMUSD(alt.OvernightDiffFromBase)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single design row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}
	if result.Failed() {
		return fmt.Sprintf("%-*s %*s\n", nameWidth, tf.truncate(name, nameWidth), numWidth, "FAILED")
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, result.LCOE.StringFixed(2),
		numWidth, "$"+tf.formatMUSD(result.OvernightCost),
		numWidth, "$"+tf.formatMUSD(result.TotalCapitalCost),
		numWidth, result.NetPower.StringFixed(1))
}

// formatMUSD formats a value given in millions, switching to billions above 1000
func (tf *TableFormatter) formatMUSD(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		return d.Abs().Div(decimal.NewFromInt(1000)).StringFixed(2) + "B"
	}
	return d.Abs().StringFixed(1) + "M"
}

// deltaSymbol returns the sign prefix printed before an absolute delta
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary for each alternative
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		switch {
		case alt.Failed():
			change = "failed"
		case alt.LCOEDiffFromBase.IsPositive():
			change = fmt.Sprintf("+$%s/MWh", alt.LCOEDiffFromBase.StringFixed(2))
		case alt.LCOEDiffFromBase.IsNegative():
			change = fmt.Sprintf("-$%s/MWh", alt.LCOEDiffFromBase.Abs().StringFixed(2))
		}

		sb.WriteString(fmt.Sprintf("%s: %s", alt.ScenarioName, change))
	}

	return sb.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
