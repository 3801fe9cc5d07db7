package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// HTMLFormatter produces a standalone HTML cost report.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"musd":  FormatMUSD,
	"fixed": func(v float64, places int32) string { return toDecimal(v).StringFixed(places) },
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(res *domain.EconomicsResult) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		*domain.EconomicsResult
		Title       string
		Maturity    string
		Assumptions []string
	}{res, designName(res), maturity(res.NOAK), DefaultAssumptions}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
