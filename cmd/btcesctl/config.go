package main

import (
	"fmt"
	"os"

	"github.com/btces/btces"
	"gopkg.in/yaml.v3"
)

// Config is btcesctl's YAML configuration file shape: a defaults struct
// overridden by whatever the file sets.
type Config struct {
	AFHGuardBand int    `yaml:"afh_guard_band"`
	CAMode       string `yaml:"ca_mode"`
}

// DefaultConfig returns btcesctl's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		AFHGuardBand: btces.DefaultGuardBand,
		CAMode:       "leave-alone",
	}
}

// LoadConfig reads and parses a Config file, starting from DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) caModeValue() (btces.CAMode, error) {
	switch c.CAMode {
	case "", "leave-alone":
		return btces.CALeaveAlone, nil
	case "read-controller":
		return btces.CAReadFromController, nil
	case "assume-on":
		return btces.CAAssumeInitiallyOn, nil
	case "assume-off":
		return btces.CAAssumeInitiallyOff, nil
	default:
		return 0, fmt.Errorf("unknown ca_mode %q", c.CAMode)
	}
}
