package inspector

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/suggest-go/infrastructure/statemachine"
)

// DOTFormatter formats charts as Graphviz DOT.
type DOTFormatter struct{}

// NewDOTFormatter creates a new DOT formatter.
func NewDOTFormatter() *DOTFormatter {
	return &DOTFormatter{}
}

// Format formats the chart as DOT. The initial phase is filled; guarded
// transitions are dashed.
func (f *DOTFormatter) Format(chart statemachine.Chart) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %s {\n", sanitizeDOTID(chart.Name))
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n")
	b.WriteString("\n")

	for _, phase := range chart.Phases {
		attrs := []string{
			fmt.Sprintf(`label="%s"`, phase),
		}
		if phase == chart.Initial {
			attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&b, "  %s [%s];\n", sanitizeDOTID(string(phase)), strings.Join(attrs, ", "))
	}

	b.WriteString("\n")

	for _, t := range chart.Transitions {
		attrs := []string{
			fmt.Sprintf(`label="%s"`, transitionLabel(t)),
		}
		if t.Guard != "" {
			attrs = append(attrs, "style=dashed")
		}

		fmt.Fprintf(&b, "  %s -> %s [%s];\n",
			sanitizeDOTID(string(t.From)),
			sanitizeDOTID(string(t.To)),
			strings.Join(attrs, ", "),
		)
	}

	b.WriteString("}\n")

	return []byte(b.String()), nil
}

// FormatType returns the format type.
func (f *DOTFormatter) FormatType() ExportFormat {
	return FormatDOT
}

// transitionLabel renders EVENT [guard] / action.
func transitionLabel(t statemachine.Transition) string {
	label := string(t.Event)
	if t.Guard != "" {
		label += " [" + t.Guard + "]"
	}
	if t.Action != "" {
		label += " / " + t.Action
	}
	return label
}

func sanitizeDOTID(s string) string {
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

var _ Formatter = (*DOTFormatter)(nil)
