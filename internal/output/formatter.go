package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/fecons/internal/domain"
)

// Formatter renders one economics result
type Formatter interface {
	Name() string
	Format(res *domain.EconomicsResult) ([]byte, error)
}

// FormatterFunc adapts a plain function to Formatter
type FormatterFunc struct {
	ID string
	F  func(res *domain.EconomicsResult) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(res *domain.EconomicsResult) ([]byte, error) { return f.F(res) }

var formatters = []Formatter{
	ConsoleFormatter{},
	ConsoleVerboseFormatter{},
	CSVSummarizer{},
	DetailedCSVFormatter{},
	JSONFormatter{},
	HTMLFormatter{},
}

var formatAliases = map[string]string{
	"verbose":         "console",
	"console-verbose": "console",
	"table":           "console",
	"summary":         "console-lite",
	"lite":            "console-lite",
	"csv-detailed":    "detailed-csv",
	"items":           "detailed-csv",
}

// NormalizeFormatName lowercases name and resolves aliases
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := formatAliases[n]; ok {
		return canonical
	}
	return n
}

// GetFormatterByName returns nil for unknown names
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range formatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// AvailableFormatterNames lists the canonical formatter names
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for _, f := range formatters {
		names = append(names, f.Name())
	}
	return names
}

// AvailableFormatAliases lists the accepted alternative spellings, sorted
func AvailableFormatAliases() []string {
	aliases := make([]string, 0, len(formatAliases))
	for a := range formatAliases {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	return aliases
}

// WriteFormatted renders res with f into a timestamped file under dir and
// returns the file path
func WriteFormatted(f Formatter, res *domain.EconomicsResult, dir, ext string) (string, error) {
	data, err := f.Format(res)
	if err != nil {
		return "", fmt.Errorf("%s formatter failed: %w", f.Name(), err)
	}
	filename := filepath.Join(dir, fmt.Sprintf("fecons_report_%s_%s.%s", slug(res.Name), time.Now().Format("20060102_150405"), ext))
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return filename, nil
}

func slug(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if s := strings.Trim(sb.String(), "_"); s != "" {
		return s
	}
	return "design"
}
