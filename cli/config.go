package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultConfigFile is read from the working directory when --config is not
// given.
const defaultConfigFile = ".cherri.yaml"

// Config holds the settings read from a .cherri.yaml file. Flags given on
// the command line take precedence.
type Config struct {
	Format   string `yaml:"format"`
	MaxDepth int    `yaml:"max_depth"`
	Recover  bool   `yaml:"recover"`
	Color    *bool  `yaml:"color"`
}

// loadConfig reads the config file at path. A missing default file yields
// an empty config; a missing explicit file is an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("error opening config %s: %w", path, err)
	}
	defer f.Close()

	var config Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		if errors.Is(err, io.EOF) {
			return &config, nil
		}
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.Format != "" && !isFormat(c.Format) {
		return fmt.Errorf("unknown format %q (want one of %v)", c.Format, formats)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	return nil
}
