package compare

import (
	"encoding/json"
	"errors"
	"strings"
)

// JSONFormatter writes a ComparisonSet as a single JSON document
type JSONFormatter struct {
	Pretty bool
}

// Format encodes compSet newline-terminated. Scenario labels are written
// without HTML escaping so names like "dd/FOAK" or "<draft>" survive intact.
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	if compSet == nil {
		return "", errors.New("no comparison to format")
	}
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if jf.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(compSet); err != nil {
		return "", err
	}
	return sb.String(), nil
}
