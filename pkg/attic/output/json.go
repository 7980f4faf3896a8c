package output

import (
	"bytes"
	"encoding/json"
)

// JSONFormatter emits the full result structure as indented JSON. Counts are
// reproducible from the changes list; consumers needing totals can derive
// them from the same structure the text formatters use.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
