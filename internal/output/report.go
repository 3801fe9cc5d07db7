package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ReportGenerator writes economics reports in the requested format
type ReportGenerator struct {
	Out io.Writer
}

// NewReportGenerator creates a new report generator writing to out
func NewReportGenerator(out io.Writer) *ReportGenerator {
	if out == nil {
		out = os.Stdout
	}
	return &ReportGenerator{Out: out}
}

// GenerateReport renders res with the formatter registered under format
func (rg *ReportGenerator) GenerateReport(res *domain.EconomicsResult, format string) error {
	if res == nil {
		return fmt.Errorf("no economics result to report")
	}
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s (available: %v)", format, AvailableFormatterNames())
	}
	data, err := f.Format(res)
	if err != nil {
		return err
	}
	_, err = rg.Out.Write(data)
	return err
}

// GenerateSensitivityReport renders a sweep result
func (rg *ReportGenerator) GenerateSensitivityReport(res *domain.SensitivityResult, format string) error {
	s, err := NewSensitivityFormatter(format).FormatSensitivity(res)
	if err != nil {
		return err
	}
	_, err = io.WriteString(rg.Out, s)
	return err
}

// SaveInputs writes an input model back to YAML
func SaveInputs(in *domain.Inputs, filename string) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3C3C8C")).
			Padding(0, 2)
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	noteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

// Banner renders a one-line title block for console reports
func Banner(title string) string {
	return bannerStyle.Render(title)
}

// ConsoleFormatter prints the headline economics with a styled banner
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(res *domain.EconomicsResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, Banner("FUSION PLANT ECONOMICS SUMMARY"))
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Design:            %s\n", designName(res))
	fmt.Fprintf(&buf, "Fuel / maturity:   %s / %s\n", res.Fuel, maturity(res.NOAK))
	fmt.Fprintf(&buf, "Modules:           %d x %.1f MWe net\n", res.NMod, res.PowerTable.PNet)
	fmt.Fprintf(&buf, "Overnight cost:    %s\n", FormatMUSD(res.OvernightCost))
	fmt.Fprintf(&buf, "Total capital:     %s\n", FormatMUSD(res.TotalCapitalCost))
	fmt.Fprintf(&buf, "NPV:               %s\n", FormatMUSD(res.NPV))
	fmt.Fprintln(&buf, headlineStyle.Render(fmt.Sprintf("LCOE:              %s/MWh (%s c/kWh)",
		FormatCurrency(toDecimal(res.LCOE)), toDecimal(res.LCOECentsPerKWh).StringFixed(2))))
	for _, n := range res.Notes {
		fmt.Fprintln(&buf, noteStyle.Render("note: "+n))
	}
	return buf.Bytes(), nil
}

// JSONFormatter emits the full result as indented JSON
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(res *domain.EconomicsResult) ([]byte, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func designName(res *domain.EconomicsResult) string {
	if res.Name == "" {
		return "(unnamed)"
	}
	return res.Name
}

func maturity(noak bool) string {
	if noak {
		return "NOAK"
	}
	return "FOAK"
}

// toDecimal converts engineering floats for fixed-point display. Non-finite
// values become zero; callers check finiteness where it matters.
func toDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatMUSD formats a value in millions of USD
func FormatMUSD(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return FormatCurrency(toDecimal(v)) + "M"
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
