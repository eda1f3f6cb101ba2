package compare

import (
	"github.com/rgehrsitz/tpacalc/internal/output"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

// Format generates JSON output for comparison results
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	data, err := (&output.JSONFormatter{Pretty: jf.Pretty}).Marshal(compSet)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
