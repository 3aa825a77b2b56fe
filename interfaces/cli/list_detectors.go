package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/suggest-go/infrastructure/detector"
)

// listDetectorsOptions holds options for the list-detectors command.
type listDetectorsOptions struct {
	configPath string
	jsonOutput bool
}

// newListDetectorsCmd creates the list-detectors command.
func (a *App) newListDetectorsCmd() *cobra.Command {
	opts := &listDetectorsOptions{}

	cmd := &cobra.Command{
		Use:   "list-detectors",
		Short: "List the built-in detectors",
		Long: `List every built-in detector with the feature it advertises, the
languages it runs for and whether the configuration enables it.

Examples:
  # List detectors with default settings
  suggest list-detectors

  # Show which detectors a configuration disables
  suggest list-detectors -c suggest.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listDetectors(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

type detectorInfo struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Languages   []string `json:"languages"`
	Enabled     bool     `json:"enabled"`
}

// listDetectors prints the built-in detectors.
func (a *App) listDetectors(opts *listDetectorsOptions) error {
	cfg, err := loadConfig(opts.configPath, false)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	detectors, err := detector.Defaults()
	if err != nil {
		return fmt.Errorf("failed to create detectors: %w", err)
	}

	infos := make([]detectorInfo, 0, len(detectors))
	for _, d := range detectors {
		desc := d.Descriptor()
		infos = append(infos, detectorInfo{
			ID:          desc.ID,
			DisplayName: desc.DisplayName,
			Languages:   desc.Languages,
			Enabled:     cfg.IsEnabled(desc.ID),
		})
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	_, _ = fmt.Fprintf(a.stdout, "Detectors (%d):\n", len(infos))
	for _, info := range infos {
		_, _ = fmt.Fprintf(a.stdout, "\n  %s (%s)\n", info.ID, enabledLabel(info.Enabled))
		_, _ = fmt.Fprintf(a.stdout, "    Feature: %s\n", info.DisplayName)
		_, _ = fmt.Fprintf(a.stdout, "    Languages: %s\n", strings.Join(info.Languages, ", "))
	}
	return nil
}
