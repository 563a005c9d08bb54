package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/kwvolume/internal/config"
)

// newConfigInitCmd creates the config init command for initializing configuration.
func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates $KWVOLUME_HOME/config.yaml (default ~/.kwvolume/config.yaml) with the
built-in defaults: the Keywords Everywhere endpoint, country, currency, data
source, batch size, and logging settings.`,
		Example: `  # Create the configuration file
  kwvolume config init

  # Create configuration, overwriting existing
  kwvolume config init --force`,
		RunE: a.withLogCleanup(func(cmd *cobra.Command, _ []string) error {
			return initGlobalConfig(cmd, a, force)
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

// initGlobalConfig writes the default configuration to the global config path.
func initGlobalConfig(cmd *cobra.Command, a *app, force bool) error {
	path, err := config.FilePath(a.env.Lookup)
	if err != nil {
		return err
	}

	// Check if config already exists and force isn't set
	if !force {
		if _, statErr := os.Stat(path); statErr == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		} else if !os.IsNotExist(statErr) {
			return fmt.Errorf("cannot access config path %s: %w", path, statErr)
		}
	}

	cfg := config.Default()
	cfg.SetConfigPath(path)
	if saveErr := cfg.Save(); saveErr != nil {
		return fmt.Errorf("failed to save configuration: %w", saveErr)
	}

	logger.Debug().Ctx(cmd.Context()).Str("path", path).Msg("configuration initialized")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized successfully\n")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration file: %s\n", path)

	return nil
}
