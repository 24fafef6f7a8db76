// Package config loads training configs for the wakeword CLI.
//
// A config file is YAML laid over pipeline.DefaultConfig: keys that are
// absent keep their defaults, unknown keys are rejected.
//
//	sources:
//	  positive: [friday-wav]
//	  negative: [background-wav]
//	train:
//	  epochs: 20
//	output:
//	  uri: s3://models/friday
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/wakeword/pkg/pipeline"
)

// Load reads the YAML file at path onto the default config. An empty path
// returns the defaults.
func Load(path string) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode strictly decodes YAML data onto cfg. Empty documents leave cfg
// unchanged.
func Decode(data []byte, cfg *pipeline.Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg pipeline.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Write writes cfg to path as YAML. It refuses to overwrite an existing
// file unless force is set.
func Write(path string, cfg pipeline.Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists", path)
		}
	}
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
