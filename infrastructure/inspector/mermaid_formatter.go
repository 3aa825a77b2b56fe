package inspector

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/suggest-go/infrastructure/statemachine"
)

// MermaidFormatter formats charts as Mermaid state diagrams.
type MermaidFormatter struct{}

// NewMermaidFormatter creates a new Mermaid formatter.
func NewMermaidFormatter() *MermaidFormatter {
	return &MermaidFormatter{}
}

// Format formats the chart as Mermaid.
func (f *MermaidFormatter) Format(chart statemachine.Chart) ([]byte, error) {
	var b strings.Builder

	b.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&b, "  [*] --> %s\n", chart.Initial)

	for _, t := range chart.Transitions {
		fmt.Fprintf(&b, "  %s --> %s: %s\n", t.From, t.To, transitionLabel(t))
	}

	return []byte(b.String()), nil
}

// FormatType returns the format type.
func (f *MermaidFormatter) FormatType() ExportFormat {
	return FormatMermaid
}

var _ Formatter = (*MermaidFormatter)(nil)
