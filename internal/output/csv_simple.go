package output

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per account).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(res *domain.EconomicsResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Account", "Label", "TotalMUSD", "ModuleScaled"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	accounts := append([]domain.CostAccountResult(nil), res.Accounts...)
	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	for _, a := range accounts {
		row := []string{a.Code, a.Label, toDecimal(a.Total).StringFixed(4), strconv.FormatBool(a.ModuleScaled)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	summary := [][]string{
		{"OVERNIGHT", "Overnight cost", toDecimal(res.OvernightCost).StringFixed(4), ""},
		{"LCOE", "Levelized cost of electricity (USD/MWh)", toDecimal(res.LCOE).StringFixed(4), ""},
		{"NPV", "Net present value", toDecimal(res.NPV).StringFixed(4), ""},
	}
	if err := w.WriteAll(summary); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DetailedCSVFormatter writes every line item of every account
type DetailedCSVFormatter struct{}

func (d DetailedCSVFormatter) Name() string { return "detailed-csv" }

func (d DetailedCSVFormatter) Format(res *domain.EconomicsResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Account", "Item", "Label", "ValueMUSD"}); err != nil {
		return nil, err
	}
	for _, a := range res.Accounts {
		for _, item := range a.Items {
			if err := w.Write([]string{a.Code, item.Code, item.Label, toDecimal(item.Value).StringFixed(4)}); err != nil {
				return nil, err
			}
		}
		if err := w.Write([]string{a.Code, a.Code, "Total", toDecimal(a.Total).StringFixed(4)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
