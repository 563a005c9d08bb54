package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config section names.
const (
	keyAPI     = "api"
	keyBatch   = "batch"
	keyLogging = "logging"
)

// MergeYAML loads a YAML file and merges its sections onto the target Config.
// Fields set in the overlay override the target; fields the overlay omits keep
// their current value. Unknown top-level keys are ignored.
func MergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in MergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing config YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if err = unmarshalSection(target, key, &node); err != nil {
			return fmt.Errorf("applying config section %q from %s: %w", key, overlayPath, err)
		}
	}

	return nil
}

// unmarshalSection decodes one section onto a copy of the current value and
// only assigns it back when decoding succeeds.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyAPI:
		v := target.API
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.API = v
	case keyBatch:
		v := target.Batch
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Batch = v
	case keyLogging:
		v := target.Logging
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	}
	return nil
}
