package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/kwvolume/internal/config"
	"github.com/rshade/kwvolume/internal/logging"
)

// defaultEnvFile is consulted in the working directory when --env-file is not set.
const defaultEnvFile = ".env"

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// rootFlags holds the values of the root command's flags.
type rootFlags struct {
	input       string
	output      string
	verbose     bool
	debug       bool
	configPath  string
	envFile     string
	batchSize   int
	endpoint    string
	metricsFile string
}

// app carries state shared by the root command and its subcommands for one
// invocation.
type app struct {
	version   string
	lookupEnv func(string) (string, bool)
	flags     rootFlags

	env       *config.EnvSource
	apiKey    string
	cfg       *config.Config
	cfgErr    error
	logResult *logging.LogPathResult
}

// NewRootCmd creates the root Cobra command for the kwvolume CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
// Values from .env files are layered under lookupEnv.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	a := &app{version: ver, lookupEnv: lookupEnv}

	cmd := &cobra.Command{
		Use:   "kwvolume",
		Short: "Add search volumes to a keyword CSV",
		Long: `kwvolume reads a CSV file with a Keyword column, looks up the monthly search
volume of every keyword with the Keywords Everywhere API, and writes the file
back with a Search Volume column.

The API key is read from KEYWORDS_EVERYWHERE_API_KEY, falling back to a .env
file in the working directory.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.prepare(cmd)
		},
		RunE: a.withLogCleanup(func(cmd *cobra.Command, _ []string) error {
			return a.runEnrich(cmd)
		}),
	}

	cmd.PersistentFlags().BoolVar(&a.flags.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&a.flags.configPath, "config", "",
		"config file merged over $KWVOLUME_HOME/config.yaml")
	cmd.PersistentFlags().StringVar(&a.flags.envFile, "env-file", "",
		"read fallback environment values from this file instead of ./.env")

	cmd.Flags().StringVarP(&a.flags.input, "input", "i", "", "input CSV file path (required)")
	cmd.Flags().StringVarP(&a.flags.output, "output", "o", "",
		"output CSV file path (defaults to overwriting the input file)")
	cmd.Flags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "print detailed results to the console")
	cmd.Flags().IntVar(&a.flags.batchSize, "batch-size", config.DefaultBatchSize,
		"keywords per API request (1-100, overrides config file and env var)")
	cmd.Flags().StringVar(&a.flags.endpoint, "endpoint", "",
		"keyword data API endpoint (overrides config file and env var)")
	cmd.Flags().StringVar(&a.flags.metricsFile, "metrics-file", "",
		"write run metrics in Prometheus text format to this file")
	_ = cmd.MarkFlagRequired("input")

	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

const rootCmdExample = `  # Add search volumes to keywords.csv in place
  kwvolume --input keywords.csv

  # Write the result to a new file and show every keyword's volume
  kwvolume -i keywords.csv -o enriched.csv --verbose

  # Use smaller batches and record run metrics
  kwvolume -i keywords.csv --batch-size 50 --metrics-file /var/lib/node_exporter/kwvolume.prom

  # Create the default configuration file
  kwvolume config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(newConfigInitCmd(a), newConfigValidateCmd(a))
	return cmd
}

// prepare resolves the environment and configuration and sets up logging.
// A configuration error is kept for the command to report so that logging
// is still available.
func (a *app) prepare(cmd *cobra.Command) error {
	envPaths := []string{defaultEnvFile}
	if a.flags.envFile != "" {
		if _, err := os.Stat(a.flags.envFile); err != nil {
			return fmt.Errorf("reading env file: %w", err)
		}
		envPaths = []string{a.flags.envFile}
	}

	env, err := config.NewEnvSource(a.lookupEnv, envPaths...)
	if err != nil {
		return err
	}
	a.env = env

	// The enrichment run resolves its credential before any config or log
	// file is touched.
	if cmd == cmd.Root() {
		apiKey, keyErr := env.APIKey()
		if keyErr != nil {
			return keyErr
		}
		a.apiKey = apiKey
	}

	a.cfg, a.cfgErr = a.loadConfig(cmd)

	loggingCfg := config.Default().Logging
	if a.cfg != nil {
		loggingCfg = a.cfg.Logging
	}
	result := setupLogging(cmd, loggingCfg, a.flags.debug)
	a.logResult = &result
	return nil
}

// withLogCleanup wraps run so the log file is closed when it returns,
// whether or not it failed.
func (a *app) withLogCleanup(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if closeErr := cleanupLogging(a.logResult); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return run(cmd, args)
	}
}

// loadConfig builds the effective configuration: files, then environment,
// then flags that were set explicitly.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(a.flags.configPath, a.env.Lookup)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if cmd.Flags().Changed("batch-size") {
		cfg.Batch.Size = a.flags.batchSize
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.API.Endpoint = a.flags.endpoint
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}
	return cfg, nil
}
