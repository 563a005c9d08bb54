// Package config loads kwvolume configuration from YAML, environment
// variables, and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Keywords Everywhere API defaults.
const (
	DefaultEndpoint   = "https://api.keywordseverywhere.com/v1/get_keyword_data"
	DefaultCountry    = "us"
	DefaultCurrency   = "USD"
	DefaultDataSource = "gkp"

	// DefaultBatchSize is the API's per-request keyword limit.
	DefaultBatchSize = 100
	MaxBatchSize     = 100
)

// Environment variable names.
const (
	EnvAPIKey    = "KEYWORDS_EVERYWHERE_API_KEY"
	EnvHome      = "KWVOLUME_HOME"
	EnvEndpoint  = "KWVOLUME_ENDPOINT"
	EnvBatchSize = "KWVOLUME_BATCH_SIZE"
	EnvLogLevel  = "KWVOLUME_LOG_LEVEL"
)

const configFileName = "config.yaml"

// Config is the effective kwvolume configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`

	configPath string
}

// APIConfig configures the keyword data endpoint and its fixed form fields.
type APIConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Country    string        `yaml:"country"`
	Currency   string        `yaml:"currency"`
	DataSource string        `yaml:"data_source"`
	Timeout    time.Duration `yaml:"timeout"`
}

// BatchConfig configures request batching.
type BatchConfig struct {
	Size int `yaml:"size"`
}

// LoggingConfig configures the run logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Endpoint:   DefaultEndpoint,
			Country:    DefaultCountry,
			Currency:   DefaultCurrency,
			DataSource: DefaultDataSource,
		},
		Batch: BatchConfig{Size: DefaultBatchSize},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the effective configuration. The global config file under the
// config directory is read if it exists, then overlayPath (when non-empty) is
// merged on top, then environment overrides from lookupEnv are applied.
// A missing global file is not an error; a missing overlay is.
func Load(overlayPath string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	path, err := FilePath(lookupEnv)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path

	if _, statErr := os.Stat(cfg.configPath); statErr == nil {
		if mergeErr := MergeYAML(cfg, cfg.configPath); mergeErr != nil {
			return nil, mergeErr
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot access config path %s: %w", cfg.configPath, statErr)
	}

	if overlayPath != "" {
		if mergeErr := MergeYAML(cfg, overlayPath); mergeErr != nil {
			return nil, mergeErr
		}
	}

	if envErr := cfg.applyEnv(lookupEnv); envErr != nil {
		return nil, envErr
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookupEnv func(string) (string, bool)) error {
	if lookupEnv == nil {
		return nil
	}
	if v, ok := lookupEnv(EnvEndpoint); ok && v != "" {
		c.API.Endpoint = v
	}
	if v, ok := lookupEnv(EnvBatchSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvBatchSize, v)
		}
		c.Batch.Size = n
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate reports configuration values the run cannot work with.
func (c *Config) Validate() error {
	if c.API.Endpoint == "" {
		return errors.New("api.endpoint must not be empty")
	}
	if c.Batch.Size < 1 || c.Batch.Size > MaxBatchSize {
		return fmt.Errorf("batch.size must be between 1 and %d, got %d", MaxBatchSize, c.Batch.Size)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be >= 0, got %s", c.API.Timeout)
	}
	return nil
}

// ConfigPath returns the path of the global config file.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath overrides where Save writes.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration as YAML to ConfigPath.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	tmpPath := c.configPath + ".tmp"
	if writeErr := os.WriteFile(tmpPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing config temp file: %w", writeErr)
	}
	if renameErr := os.Rename(tmpPath, c.configPath); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming config temp file: %w", renameErr)
	}
	return nil
}

// ConfigDir returns the kwvolume configuration directory: $KWVOLUME_HOME if
// set, otherwise ~/.kwvolume.
func ConfigDir(lookupEnv func(string) (string, bool)) (string, error) {
	if lookupEnv != nil {
		if home, ok := lookupEnv(EnvHome); ok && home != "" {
			return home, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".kwvolume"), nil
}

// FilePath returns the path of the global config file inside ConfigDir.
func FilePath(lookupEnv func(string) (string, bool)) (string, error) {
	dir, err := ConfigDir(lookupEnv)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}
