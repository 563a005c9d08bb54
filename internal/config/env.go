package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ErrMissingCredential indicates the API key is not set in the environment
// or any .env file.
var ErrMissingCredential = errors.New("API credential not configured")

// apiKeyPreviewLen is how many leading characters of the key are shown in logs.
const apiKeyPreviewLen = 5

// EnvSource resolves environment values from the process environment first
// and falls back to values parsed from .env files. Values from .env files
// never override the process environment.
type EnvSource struct {
	lookup func(string) (string, bool)
	dotenv map[string]string
}

// NewEnvSource builds an EnvSource over lookup (usually os.LookupEnv) and the
// given .env files. Files that do not exist are skipped; files that exist but
// cannot be parsed are an error. Earlier files win over later ones.
func NewEnvSource(lookup func(string) (string, bool), dotenvPaths ...string) (*EnvSource, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	merged := make(map[string]string)
	for _, path := range dotenvPaths {
		if path == "" {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading env file %s: %w", path, err)
		}
		for k, v := range values {
			if _, seen := merged[k]; !seen {
				merged[k] = v
			}
		}
	}

	return &EnvSource{lookup: lookup, dotenv: merged}, nil
}

// Lookup returns the value for key and whether it was found.
func (s *EnvSource) Lookup(key string) (string, bool) {
	if v, ok := s.lookup(key); ok {
		return v, true
	}
	v, ok := s.dotenv[key]
	return v, ok
}

// APIKey returns the Keywords Everywhere API key.
func (s *EnvSource) APIKey() (string, error) {
	key, ok := s.Lookup(EnvAPIKey)
	if !ok || key == "" {
		return "", fmt.Errorf("%w: %s not found in environment variables; set it or create a .env file",
			ErrMissingCredential, EnvAPIKey)
	}
	return key, nil
}

// MaskKey returns the first few characters of key followed by an ellipsis,
// suitable for logging.
func MaskKey(key string) string {
	if len(key) <= apiKeyPreviewLen {
		return key + "..."
	}
	return key[:apiKeyPreviewLen] + "..."
}
