package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/san-kum/ispsweep/internal/sweep"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ChamberPressure != 20e6 {
		t.Errorf("expected chamber pressure 20e6, got %f", cfg.ChamberPressure)
	}
	if cfg.ExitPressure != 101325 {
		t.Errorf("expected exit pressure 101325, got %f", cfg.ExitPressure)
	}

	ratios := cfg.Ratios()
	if len(ratios) != 200 || ratios[0] != 3 || ratios[199] != 10 {
		t.Errorf("unexpected ratios: len %d, %v..%v", len(ratios), ratios[0], ratios[len(ratios)-1])
	}

	setup := cfg.Setup()
	if !reflect.DeepEqual(setup, sweep.DefaultSetup()) {
		t.Errorf("expected default setup, got %+v", setup)
	}

	cond := cfg.Conditions()
	if cond.G0 != 9.807 || cond.GasConstant != 8314 {
		t.Errorf("unexpected constants %+v", cond)
	}

	p, err := cfg.Policy()
	if err != nil || p != sweep.Abort {
		t.Errorf("expected abort policy, got %v (%v)", p, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(c *Config)
	}{
		{"empty fuel", func(c *Config) { c.Fuel.Composition = " " }},
		{"zero oxidizer temperature", func(c *Config) { c.Oxidizer.Temperature = 0 }},
		{"negative chamber pressure", func(c *Config) { c.ChamberPressure = -1 }},
		{"exit above chamber", func(c *Config) { c.ExitPressure = 30e6 }},
		{"no points", func(c *Config) { c.Sweep.Points = 0 }},
		{"negative min", func(c *Config) { c.Sweep.Min = -1 }},
		{"max below min", func(c *Config) { c.Sweep.Max = 2 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"unknown policy", func(c *Config) { c.OnError = "retry" }},
		{"zero g0", func(c *Config) { c.Constants.G0 = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	data := "chamber_pressure: 7e6\nsweep:\n  points: 50\non_error: skip\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ChamberPressure != 7e6 {
		t.Errorf("expected chamber pressure 7e6, got %f", cfg.ChamberPressure)
	}
	if cfg.Sweep.Points != 50 || cfg.Sweep.Min != 3 || cfg.Sweep.Max != 10 {
		t.Errorf("unexpected sweep %+v", cfg.Sweep)
	}
	if cfg.Fuel.Composition != DefaultFuel {
		t.Errorf("expected default fuel, got %q", cfg.Fuel.Composition)
	}
	if p, _ := cfg.Policy(); p != sweep.Skip {
		t.Errorf("expected skip policy, got %v", p)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("vacuum-exit")
	cfg.Workers = 4

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("fine")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Sweep.Points != 1000 {
		t.Errorf("expected 1000 points, got %d", cfg.Sweep.Points)
	}

	cfg.Sweep.Points = 3
	if Presets["fine"].Sweep.Points != 1000 {
		t.Error("modifying a preset copy changed the preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	if err := os.WriteFile(path, []byte("sweep:\n  points: 12\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, preset, path string
		points             int
		wantErr            bool
	}{
		{"default", "", "", DefaultPoints, false},
		{"preset", "coarse", "", 29, false},
		{"file", "", path, 12, false},
		{"unknown preset", "nope", "", 0, true},
		{"preset and file", "fine", path, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Resolve(tt.preset, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Sweep.Points != tt.points {
				t.Errorf("expected %d points, got %d", tt.points, cfg.Sweep.Points)
			}
		})
	}

	if _, err := Resolve("fine", path); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for preset with file, got %v", err)
	}
}
