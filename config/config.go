// Package config holds the runtime settings of the pipeline viewer.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sarchlab/akita/v4/sim"
	"go.yaml.in/yaml/v3"

	"github.com/sarchlab/pipeviz/timing/clock"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

// Config holds simulation settings loaded from a JSON or YAML file.
type Config struct {
	// ClockHz is how many cycles advance per wall-clock second.
	// Default: 1 cycle per second.
	ClockHz sim.Freq `json:"clock_hz" yaml:"clock_hz"`

	// Mode is the initial hazard handling mode: normal, stall or forwarding.
	// Default: normal.
	Mode string `json:"mode" yaml:"mode"`

	// ZeroRegisterHardwired makes register 0 carry no dependencies.
	// Default: false.
	ZeroRegisterHardwired bool `json:"zero_register_hardwired" yaml:"zero_register_hardwired"`

	// History is how many elapsed cycles a renderer keeps on screen.
	// Zero shows the whole timeline. Default: 0.
	History uint64 `json:"history" yaml:"history"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		ClockHz: 1 * sim.Hz,
		Mode:    pipeline.ModeNormal.String(),
	}
}

// Load loads a Config from a file. Files ending in .yaml or .yml are parsed
// as YAML, everything else as JSON. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes the Config to a file, as YAML or JSON depending on the
// extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	hz := float64(c.ClockHz)
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
		return fmt.Errorf("clock_hz must be a finite value > 0")
	}
	if _, err := pipeline.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	return nil
}

// HazardMode returns the parsed Mode. Validate reports an invalid mode.
func (c *Config) HazardMode() pipeline.Mode {
	m, err := pipeline.ParseMode(c.Mode)
	if err != nil {
		return pipeline.ModeNormal
	}
	return m
}

// HazardOptions returns the hazard unit options selected by the Config.
func (c *Config) HazardOptions() []pipeline.HazardOption {
	var opts []pipeline.HazardOption
	if c.ZeroRegisterHardwired {
		opts = append(opts, pipeline.WithZeroRegisterHardwired())
	}
	return opts
}

// Period returns the wall-clock time between two cycles.
func (c *Config) Period() time.Duration {
	return clock.Period(c.ClockHz)
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
