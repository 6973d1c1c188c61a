package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ispsweep/internal/perf"
	"github.com/san-kum/ispsweep/internal/sweep"
)

const (
	DefaultFuel                = "H2(L):1"
	DefaultFuelTemperature     = 20.27
	DefaultOxidizer            = "O2(L):1"
	DefaultOxidizerTemperature = 90.17
	DefaultChamberPressure     = 20e6
	DefaultExitPressure        = 101325.0
	DefaultMinRatio            = 3.0
	DefaultMaxRatio            = 10.0
	DefaultPoints              = 200
	DefaultG0                  = 9.807
	DefaultGasConstant         = 8314.0
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Fuel            ReactantConfig  `yaml:"fuel" json:"fuel"`
	Oxidizer        ReactantConfig  `yaml:"oxidizer" json:"oxidizer"`
	ChamberPressure float64         `yaml:"chamber_pressure" json:"chamber_pressure"`
	ExitPressure    float64         `yaml:"exit_pressure" json:"exit_pressure"`
	Sweep           SweepConfig     `yaml:"sweep" json:"sweep"`
	Workers         int             `yaml:"workers" json:"workers"`
	OnError         string          `yaml:"on_error" json:"on_error"`
	Constants       ConstantsConfig `yaml:"constants" json:"constants"`
}

type ReactantConfig struct {
	Composition string  `yaml:"composition" json:"composition"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
}

type SweepConfig struct {
	Min    float64 `yaml:"min" json:"min"`
	Max    float64 `yaml:"max" json:"max"`
	Points int     `yaml:"points" json:"points"`
}

type ConstantsConfig struct {
	G0 float64 `yaml:"g0" json:"g0"`
	Ru float64 `yaml:"r_u" json:"r_u"`
}

func DefaultConfig() *Config {
	return &Config{
		Fuel:            ReactantConfig{Composition: DefaultFuel, Temperature: DefaultFuelTemperature},
		Oxidizer:        ReactantConfig{Composition: DefaultOxidizer, Temperature: DefaultOxidizerTemperature},
		ChamberPressure: DefaultChamberPressure,
		ExitPressure:    DefaultExitPressure,
		Sweep: SweepConfig{
			Min:    DefaultMinRatio,
			Max:    DefaultMaxRatio,
			Points: DefaultPoints,
		},
		Workers: 1,
		OnError: sweep.Abort.String(),
		Constants: ConstantsConfig{
			G0: DefaultG0,
			Ru: DefaultGasConstant,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func (c *Config) Validate() error {
	for _, r := range []struct {
		name string
		rc   ReactantConfig
	}{{"fuel", c.Fuel}, {"oxidizer", c.Oxidizer}} {
		if strings.TrimSpace(r.rc.Composition) == "" {
			return invalid("%s composition is empty", r.name)
		}
		if !positive(r.rc.Temperature) {
			return invalid("%s temperature must be positive, got %g", r.name, r.rc.Temperature)
		}
	}

	if !positive(c.ChamberPressure) {
		return invalid("chamber_pressure must be positive, got %g", c.ChamberPressure)
	}
	if !positive(c.ExitPressure) {
		return invalid("exit_pressure must be positive, got %g", c.ExitPressure)
	}
	if c.ExitPressure >= c.ChamberPressure {
		return invalid("exit_pressure %g must be below chamber_pressure %g", c.ExitPressure, c.ChamberPressure)
	}

	if c.Sweep.Points < 1 {
		return invalid("sweep.points must be at least 1, got %d", c.Sweep.Points)
	}
	if c.Sweep.Min < 0 || math.IsNaN(c.Sweep.Min) || math.IsInf(c.Sweep.Min, 0) {
		return invalid("sweep.min must be finite and non-negative, got %g", c.Sweep.Min)
	}
	if !(c.Sweep.Max >= c.Sweep.Min) || math.IsInf(c.Sweep.Max, 0) {
		return invalid("sweep.max %g must be finite and not below sweep.min %g", c.Sweep.Max, c.Sweep.Min)
	}

	if c.Workers < 0 {
		return invalid("workers must not be negative, got %d", c.Workers)
	}
	if _, err := sweep.ParsePolicy(c.OnError); err != nil {
		return invalid("on_error: %v", err)
	}

	if !positive(c.Constants.G0) || !positive(c.Constants.Ru) {
		return invalid("constants g0 and r_u must be positive")
	}
	return nil
}

// Setup describes the reactant streams for a sweep evaluator.
func (c *Config) Setup() sweep.Setup {
	s := sweep.DefaultSetup()
	s.Fuel = sweep.Reactant{Composition: c.Fuel.Composition, Temperature: c.Fuel.Temperature}
	s.Oxidizer = sweep.Reactant{Composition: c.Oxidizer.Composition, Temperature: c.Oxidizer.Temperature}
	s.ChamberPressure = c.ChamberPressure
	return s
}

func (c *Config) Conditions() perf.Conditions {
	return perf.Conditions{
		G0:              c.Constants.G0,
		GasConstant:     c.Constants.Ru,
		ExitPressure:    c.ExitPressure,
		ChamberPressure: c.ChamberPressure,
	}
}

func (c *Config) Ratios() []float64 {
	return sweep.Linspace(c.Sweep.Min, c.Sweep.Max, c.Sweep.Points)
}

func (c *Config) Policy() (sweep.Policy, error) {
	return sweep.ParsePolicy(c.OnError)
}
