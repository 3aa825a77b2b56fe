package inspector

import (
	"encoding/json"

	"github.com/felixgeelhaar/suggest-go/infrastructure/statemachine"
)

// JSONFormatter formats charts as JSON.
type JSONFormatter struct {
	pretty bool
}

// JSONFormatterOption configures the JSON formatter.
type JSONFormatterOption func(*JSONFormatter)

// WithPrettyPrint enables pretty-printed output.
func WithPrettyPrint() JSONFormatterOption {
	return func(f *JSONFormatter) {
		f.pretty = true
	}
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts ...JSONFormatterOption) *JSONFormatter {
	f := &JSONFormatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats the chart as JSON.
func (f *JSONFormatter) Format(chart statemachine.Chart) ([]byte, error) {
	if f.pretty {
		return json.MarshalIndent(chart, "", "  ")
	}
	return json.Marshal(chart)
}

// FormatType returns the format type.
func (f *JSONFormatter) FormatType() ExportFormat {
	return FormatJSON
}

var _ Formatter = (*JSONFormatter)(nil)
