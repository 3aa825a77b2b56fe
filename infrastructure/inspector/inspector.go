// Package inspector renders detector statecharts for inspection.
package inspector

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/suggest-go/infrastructure/statemachine"
)

// ExportFormat identifies the export format.
type ExportFormat string

const (
	// FormatJSON exports the chart as JSON.
	FormatJSON ExportFormat = "json"

	// FormatDOT exports as Graphviz DOT.
	FormatDOT ExportFormat = "dot"

	// FormatMermaid exports as Mermaid diagram.
	FormatMermaid ExportFormat = "mermaid"
)

// ErrInvalidFormat indicates an unsupported export format.
var ErrInvalidFormat = errors.New("invalid export format")

// Formatter renders a chart in one format.
type Formatter interface {
	Format(chart statemachine.Chart) ([]byte, error)
	FormatType() ExportFormat
}

// Inspector renders charts with its registered formatters.
type Inspector struct {
	formatters map[ExportFormat]Formatter
}

// New creates an inspector with the JSON, DOT and Mermaid formatters.
func New() *Inspector {
	i := &Inspector{
		formatters: make(map[ExportFormat]Formatter),
	}

	i.RegisterFormatter(NewJSONFormatter(WithPrettyPrint()))
	i.RegisterFormatter(NewDOTFormatter())
	i.RegisterFormatter(NewMermaidFormatter())

	return i
}

// RegisterFormatter registers a formatter for a specific format.
func (i *Inspector) RegisterFormatter(formatter Formatter) {
	i.formatters[formatter.FormatType()] = formatter
}

// Export renders chart in format.
func (i *Inspector) Export(chart statemachine.Chart, format ExportFormat) ([]byte, error) {
	formatter, ok := i.formatters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}

	result, err := formatter.Format(chart)
	if err != nil {
		return nil, fmt.Errorf("formatting failed: %w", err)
	}

	return result, nil
}
