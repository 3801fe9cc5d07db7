package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// SensitivityFormatter defines a formatter for sensitivity analysis
type SensitivityFormatter interface {
	FormatSensitivity(res *domain.SensitivityResult) (string, error)
	Name() string
}

// SensitivityConsoleFormatter formats sensitivity analysis output for console
type SensitivityConsoleFormatter struct{}

func (scf SensitivityConsoleFormatter) Name() string { return "console" }

func (scf SensitivityConsoleFormatter) FormatSensitivity(res *domain.SensitivityResult) (string, error) {
	if res == nil {
		return "", fmt.Errorf("no sensitivity result")
	}
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "LCOE SENSITIVITY ANALYSIS")
	fmt.Fprintln(&buf, strings.Repeat("=", 96))
	fmt.Fprintf(&buf, "Baseline LCOE: %s/MWh\n", FormatCurrency(toDecimal(res.BaselineLCOE)))
	fmt.Fprintf(&buf, "Perturbation:  +%s%% per parameter\n", toDecimal(res.DeltaFraction*100).StringFixed(1))
	fmt.Fprintf(&buf, "Parameters:    %d analyzed, %d skipped at zero, %d failed\n",
		res.ParametersAnalyzed, len(res.SkippedZero), len(res.Failures))
	if res.Interrupted {
		fmt.Fprintln(&buf, "Status:        INTERRUPTED (partial results)")
	}
	fmt.Fprintln(&buf)

	if len(res.Entries) == 0 {
		fmt.Fprintln(&buf, "No sensitivity entries.")
	} else {
		fmt.Fprintf(&buf, "%-4s %-28s %-40s %12s %12s\n", "Rank", "Parameter", "Path", "Baseline", "Elasticity")
		fmt.Fprintln(&buf, strings.Repeat("-", 96))
		for i, e := range res.Entries {
			fmt.Fprintf(&buf, "%-4d %-28s %-40s %12.4g %+12.4f\n",
				i+1, truncate(e.DisplayName, 28), truncate(e.Path, 40), e.BaselineValue, e.Elasticity)
		}
		fmt.Fprintln(&buf)

		top := res.Entries[0]
		fmt.Fprintf(&buf, "A 1%% increase in %s changes LCOE by %+.3f%%.\n", top.DisplayName, top.Elasticity)
	}

	if len(res.Failures) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "FAILED PERTURBATIONS:")
		for _, f := range res.Failures {
			fmt.Fprintf(&buf, "• %s: %s\n", f.Path, f.Error)
		}
	}
	return buf.String(), nil
}

// SensitivityCSVFormatter formats sensitivity analysis output as CSV
type SensitivityCSVFormatter struct{}

func (scf SensitivityCSVFormatter) Name() string { return "csv" }

func (scf SensitivityCSVFormatter) FormatSensitivity(res *domain.SensitivityResult) (string, error) {
	if res == nil {
		return "", fmt.Errorf("no sensitivity result")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"rank", "path", "display_name", "baseline_value", "perturbed_lcoe", "derivative", "elasticity"}); err != nil {
		return "", err
	}
	for i, e := range res.Entries {
		row := []string{
			strconv.Itoa(i + 1),
			e.Path,
			e.DisplayName,
			strconv.FormatFloat(e.BaselineValue, 'g', -1, 64),
			toDecimal(e.PerturbedLCOE).StringFixed(4),
			strconv.FormatFloat(e.Derivative, 'g', 8, 64),
			toDecimal(e.Elasticity).StringFixed(6),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

// SensitivityJSONFormatter formats sensitivity analysis output as JSON
type SensitivityJSONFormatter struct{}

func (sjf SensitivityJSONFormatter) Name() string { return "json" }

func (sjf SensitivityJSONFormatter) FormatSensitivity(res *domain.SensitivityResult) (string, error) {
	if res == nil {
		return "", fmt.Errorf("no sensitivity result")
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// NewSensitivityFormatter creates a sensitivity formatter based on the format name
func NewSensitivityFormatter(format string) SensitivityFormatter {
	switch NormalizeFormatName(format) {
	case "console", "console-lite":
		return SensitivityConsoleFormatter{}
	case "csv", "detailed-csv":
		return SensitivityCSVFormatter{}
	case "json":
		return SensitivityJSONFormatter{}
	default:
		return SensitivityConsoleFormatter{} // Default to console
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
