package output

import (
	"encoding/json"

	"github.com/rgehrsitz/tpacalc/internal/domain"
)

// JSONFormatter formats plan reports as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

// Format generates JSON output for a plan report
func (jf *JSONFormatter) Format(report *domain.PlanReport) ([]byte, error) {
	return jf.Marshal(report)
}

// Marshal encodes any result the same way Format encodes a report
func (jf *JSONFormatter) Marshal(v any) ([]byte, error) {
	if jf.Pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
