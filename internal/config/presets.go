package config

import (
	"fmt"
	"sort"
)

func preset(mod func(c *Config)) *Config {
	c := DefaultConfig()
	mod(c)
	return c
}

var Presets = map[string]*Config{
	"baseline": DefaultConfig(),
	"fine": preset(func(c *Config) {
		c.Sweep.Points = 1000
	}),
	"coarse": preset(func(c *Config) {
		c.Sweep.Points = 29
	}),
	"low-pressure": preset(func(c *Config) {
		c.ChamberPressure = 4e6
	}),
	"vacuum-exit": preset(func(c *Config) {
		c.ExitPressure = 2000
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the named preset, the config file at path, or the default
// config when both are empty. A preset and a file cannot be combined.
func Resolve(name, path string) (*Config, error) {
	switch {
	case name != "" && path != "":
		return nil, invalid("preset %q and config file %s cannot be combined", name, path)
	case name != "":
		cfg := GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, ListPresets())
		}
		return cfg, nil
	case path != "":
		cfg, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	return DefaultConfig(), nil
}
