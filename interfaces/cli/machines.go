package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/suggest-go/domain/detector"
	infradetector "github.com/felixgeelhaar/suggest-go/infrastructure/detector"
	"github.com/felixgeelhaar/suggest-go/infrastructure/inspector"
	"github.com/felixgeelhaar/suggest-go/infrastructure/statemachine"
)

// charted is implemented by detectors that track a statechart.
type charted interface {
	detector.Detector
	Chart() statemachine.Chart
}

// machinesOptions holds options for the machines command.
type machinesOptions struct {
	format string
}

// newMachinesCmd creates the machines command.
func (a *App) newMachinesCmd() *cobra.Command {
	opts := &machinesOptions{}

	cmd := &cobra.Command{
		Use:   "machines [detector]",
		Short: "Export detector statecharts",
		Long: `Export the statecharts of the stateful detectors as Graphviz DOT,
Mermaid or JSON. Without an argument every charted detector is exported.

Examples:
  # Render the run-to-cursor chart with Graphviz
  suggest machines run_to_cursor | dot -Tsvg > run_to_cursor.svg

  # Mermaid for every charted detector
  suggest machines --format mermaid`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return a.exportMachines(id, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", string(inspector.FormatDOT), "Output format (dot, mermaid, json)")

	return cmd
}

// exportMachines writes the chart of detector id, or of every charted
// detector when id is empty.
func (a *App) exportMachines(id string, opts *machinesOptions) error {
	detectors, err := infradetector.Defaults()
	if err != nil {
		return fmt.Errorf("failed to create detectors: %w", err)
	}

	var charts []statemachine.Chart
	var known []string
	for _, d := range detectors {
		c, ok := d.(charted)
		if !ok {
			continue
		}
		known = append(known, c.Descriptor().ID)
		if id == "" || id == c.Descriptor().ID {
			charts = append(charts, c.Chart())
		}
	}
	if len(charts) == 0 {
		return fmt.Errorf("no statechart for detector %q (charted: %s)", id, strings.Join(known, ", "))
	}

	insp := inspector.New()
	for i, chart := range charts {
		out, err := insp.Export(chart, inspector.ExportFormat(opts.format))
		if err != nil {
			return err
		}
		if i > 0 {
			_, _ = fmt.Fprintln(a.stdout)
		}
		_, _ = a.stdout.Write(out)
	}
	return nil
}
