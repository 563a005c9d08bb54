package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/kwvolume/internal/config"
)

// newConfigValidateCmd creates the config validate command for validating configuration.
func newConfigValidateCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Loads the effective configuration ($KWVOLUME_HOME/config.yaml, the --config
file, and KWVOLUME_* environment overrides) and checks it for errors.

This includes:
- YAML syntax of both configuration files
- A non-empty API endpoint
- A batch size between 1 and 100
- A non-negative request timeout`,
		Example: `  # Validate current configuration
  kwvolume config validate

  # Validate and show the effective values
  kwvolume config validate --verbose`,
		RunE: a.withLogCleanup(func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, a, verbose)
		}),
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, a *app, verbose bool) error {
	if a.cfgErr != nil {
		return fmt.Errorf("configuration validation failed: %w", a.cfgErr)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Configuration is valid")

	if verbose {
		printVerboseDetails(out, a.cfg, a.env)
	}

	return nil
}

// printVerboseDetails prints the effective configuration.
func printVerboseDetails(w io.Writer, cfg *config.Config, env *config.EnvSource) {
	timeout := "none"
	if cfg.API.Timeout > 0 {
		timeout = cfg.API.Timeout.String()
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Configuration details:")
	_, _ = fmt.Fprintf(w, "  Config file: %s\n", cfg.ConfigPath())
	_, _ = fmt.Fprintf(w, "  API endpoint: %s\n", cfg.API.Endpoint)
	_, _ = fmt.Fprintf(w, "  Country: %s\n", cfg.API.Country)
	_, _ = fmt.Fprintf(w, "  Currency: %s\n", cfg.API.Currency)
	_, _ = fmt.Fprintf(w, "  Data source: %s\n", cfg.API.DataSource)
	_, _ = fmt.Fprintf(w, "  Request timeout: %s\n", timeout)
	_, _ = fmt.Fprintf(w, "  Batch size: %d\n", cfg.Batch.Size)
	_, _ = fmt.Fprintf(w, "  Logging level: %s\n", cfg.Logging.Level)
	_, _ = fmt.Fprintf(w, "  Log file: %s\n", cfg.Logging.File)

	if key, err := env.APIKey(); err == nil {
		_, _ = fmt.Fprintf(w, "  API key: %s\n", config.MaskKey(key))
	} else {
		_, _ = fmt.Fprintf(w, "  API key: not set (%s)\n", config.EnvAPIKey)
	}
}
