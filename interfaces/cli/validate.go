package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	domainconfig "github.com/felixgeelhaar/suggest-go/domain/config"
	"github.com/felixgeelhaar/suggest-go/infrastructure/config"
	"github.com/felixgeelhaar/suggest-go/infrastructure/detector"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	configPath string
	strict     bool
	showSchema bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate an engine configuration file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Field types and constraints
  - Detector ids against the built-in detectors
  - Environment variable references (in strict mode)
  - That the cooldown store and webhook presenter can be built

Examples:
  # Validate a configuration file
  suggest validate -c suggest.yaml

  # Strict validation (fail on missing env vars)
  suggest validate -c suggest.yaml --strict

  # Show the JSON schema for configuration
  suggest validate --schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showSchema {
				return a.showConfigSchema()
			}
			return a.validateConfig(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")
	cmd.Flags().BoolVar(&opts.showSchema, "schema", false, "Show JSON schema for configuration")

	return cmd
}

// loadConfig loads the configuration at path, or the defaults when path is
// empty.
func loadConfig(path string, strict bool) (*domainconfig.Config, error) {
	if path == "" {
		return domainconfig.Default(), nil
	}

	loader := config.NewLoaderWithOptions(
		config.WithValidation(true),
		config.WithStrictEnv(strict),
		config.WithKnownDetectors(detector.IDUnwrap, detector.IDRunToCursor, detector.IDFileStructure),
	)
	return loader.LoadFile(path)
}

// validateConfig validates the configuration file.
func (a *App) validateConfig(opts *validateOptions) error {
	if opts.configPath == "" {
		return fmt.Errorf("configuration file path is required (-c flag)")
	}

	cfg, err := loadConfig(opts.configPath, opts.strict)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := config.NewBuilder(cfg).Build()
	if err != nil {
		return fmt.Errorf("configuration build failed: %w", err)
	}
	if err := result.Close(); err != nil {
		return fmt.Errorf("configuration build failed: %w", err)
	}

	_, _ = fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")
	if cfg.Name != "" {
		_, _ = fmt.Fprintf(a.stdout, "  Name: %s\n", cfg.Name)
	}
	_, _ = fmt.Fprintf(a.stdout, "  Version: %s\n", cfg.Version)

	_, _ = fmt.Fprintf(a.stdout, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(a.stdout, "  History capacity: %d\n", cfg.History.Capacity)
	_, _ = fmt.Fprintf(a.stdout, "  Suggesting interval: %d days\n", cfg.IntervalDays)
	_, _ = fmt.Fprintf(a.stdout, "  Cooldown backend: %s\n", cfg.Cooldown.Backend)

	if len(cfg.Detectors) > 0 {
		ids := make([]string, 0, len(cfg.Detectors))
		for id := range cfg.Detectors {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		_, _ = fmt.Fprintf(a.stdout, "  Detectors:\n")
		for _, id := range ids {
			_, _ = fmt.Fprintf(a.stdout, "    - %s: %s\n", id, enabledLabel(cfg.IsEnabled(id)))
		}
	}

	if cfg.Webhook.Enabled {
		_, _ = fmt.Fprintf(a.stdout, "  Webhook: enabled (%d endpoints)\n", len(cfg.Webhook.Endpoints))
	}

	return nil
}

// showConfigSchema displays the JSON schema for configuration.
func (a *App) showConfigSchema() error {
	schemaJSON, err := config.SchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	_, _ = fmt.Fprintln(a.stdout, schemaJSON)
	return nil
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
