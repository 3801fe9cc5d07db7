package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// ConsoleVerboseFormatter renders the full cost-account breakdown
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(res *domain.EconomicsResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf, "FUSION POWER PLANT COSTING REPORT")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintf(&buf, "Design: %s   Fuel: %s   Maturity: %s   Modules: %d\n",
		designName(res), res.Fuel, maturity(res.NOAK), res.NMod)
	if res.CoilModel != "" {
		fmt.Fprintf(&buf, "Coil model: %s\n", res.CoilModel)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range DefaultAssumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	writePowerTable(&buf, res)
	writeFuelSplit(&buf, res)
	writeGeometry(&buf, res)
	writeAccounts(&buf, res)

	fmt.Fprintln(&buf, "ECONOMICS")
	fmt.Fprintln(&buf, strings.Repeat("-", 45))
	fmt.Fprintf(&buf, "  Overnight cost (CAS10-CAS60): %s\n", FormatMUSD(res.OvernightCost))
	fmt.Fprintf(&buf, "  Total capital cost:           %s\n", FormatMUSD(res.TotalCapitalCost))
	fmt.Fprintf(&buf, "  Project time:                 %.2f years\n", res.TotalProjectTime)
	fmt.Fprintf(&buf, "  Annual energy:                %s MWh\n", toDecimal(res.AnnualEnergyMWh).StringFixed(0))
	fmt.Fprintf(&buf, "  LCOE:                         %s/MWh\n", FormatCurrency(toDecimal(res.LCOE)))
	fmt.Fprintf(&buf, "  LCOE:                         %s c/kWh\n", toDecimal(res.LCOECentsPerKWh).StringFixed(2))
	fmt.Fprintf(&buf, "  NPV:                          %s\n", FormatMUSD(res.NPV))

	if len(res.Notes) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "NOTES:")
		for _, n := range res.Notes {
			fmt.Fprintf(&buf, "• %s\n", n)
		}
	}
	return buf.Bytes(), nil
}

func writePowerTable(buf *bytes.Buffer, res *domain.EconomicsResult) {
	p := res.PowerTable
	rows := []struct {
		label string
		value float64
		unit  string
	}{
		{"Fusion power (P_NRL)", p.PNRL, "MW"},
		{"Charged-particle power", p.PAsh, "MW"},
		{"Neutron power", p.PNeutron, "MW"},
		{"Wall power", p.PWall, "MW"},
		{"Direct-conversion electric", p.PDEE, "MW"},
		{"Thermal power", p.PTh, "MW"},
		{"Thermal electric", p.PThE, "MW"},
		{"Gross electric", p.PET, "MW"},
		{"Recirculating power", p.PRecirc, "MW"},
		{"Net electric (per module)", p.PNet, "MW"},
	}
	fmt.Fprintln(buf, "POWER BALANCE (per module)")
	fmt.Fprintln(buf, strings.Repeat("-", 45))
	for _, r := range rows {
		fmt.Fprintf(buf, "  %-28s %10.2f %s\n", r.label, r.value, r.unit)
	}
	fmt.Fprintf(buf, "  %-28s %10.3f\n", "Q_sci", p.QSci)
	fmt.Fprintf(buf, "  %-28s %10.3f\n", "Q_eng", p.QEng)
	fmt.Fprintf(buf, "  %-28s %10.3f\n", "Recirculating fraction", p.RecFrac)
	if p.GainE != 0 {
		fmt.Fprintf(buf, "  %-28s %10.3f\n", "Engineering gain", p.GainE)
	}
	fmt.Fprintln(buf)
}

func writeFuelSplit(buf *bytes.Buffer, res *domain.EconomicsResult) {
	fs := res.FuelSplit
	fmt.Fprintln(buf, "FUEL ENERGY SPLIT")
	fmt.Fprintln(buf, strings.Repeat("-", 45))
	fmt.Fprintf(buf, "  Charged fraction: %.4f   Neutron fraction: %.4f\n", fs.ChargedFraction, fs.NeutronFraction)
	fmt.Fprintf(buf, "  Energy per reaction: %.3f MeV (%.3f MeV charged)\n", fs.TotalEnergy, fs.ChargedEnergy)
	fmt.Fprintln(buf)
}

func writeGeometry(buf *bytes.Buffer, res *domain.EconomicsResult) {
	if len(res.Geometry.Layers) == 0 {
		return
	}
	fmt.Fprintln(buf, "RADIAL BUILD")
	fmt.Fprintf(buf, "  %-16s %10s %10s %12s\n", "Layer", "Inner [m]", "Outer [m]", "Volume [m3]")
	fmt.Fprintln(buf, strings.Repeat("-", 52))
	for _, l := range res.Geometry.Layers {
		fmt.Fprintf(buf, "  %-16s %10.3f %10.3f %12.2f\n", l.Name, l.InnerRadius, l.OuterRadius, l.Volume)
	}
	fmt.Fprintln(buf)
}

func writeAccounts(buf *bytes.Buffer, res *domain.EconomicsResult) {
	fmt.Fprintln(buf, "COST ACCOUNTS (M USD)")
	fmt.Fprintln(buf, strings.Repeat("=", 81))
	for _, acct := range res.Accounts {
		scaled := ""
		if acct.ModuleScaled {
			scaled = fmt.Sprintf(" (x%d modules)", res.NMod)
		}
		fmt.Fprintf(buf, "%-8s %-50s %18s\n", acct.Code, acct.Label+scaled, FormatMUSD(acct.Total))
		for _, item := range acct.Items {
			fmt.Fprintf(buf, "  %-10s %-48s %18s\n", item.Code, item.Label, FormatMUSD(item.Value))
		}
		fmt.Fprintln(buf, strings.Repeat("-", 81))
	}
	fmt.Fprintln(buf)
}
