package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/sysdyn/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "sir" {
		t.Errorf("expected model sir, got %s", cfg.Model)
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if cfg.Dt != 0 {
		t.Error("dt should default to the model's own timestep")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("model: inventory\ndt: 0.5\nparameters:\n  customer demand: 60\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "inventory" {
		t.Errorf("expected model inventory, got %s", cfg.Model)
	}
	if cfg.Dt != 0.5 {
		t.Errorf("expected dt 0.5, got %f", cfg.Dt)
	}
	if cfg.Duration != DefaultDuration {
		t.Errorf("expected default duration, got %f", cfg.Duration)
	}
	if cfg.Parameters["customer demand"] != 60 {
		t.Errorf("expected parameter override 60, got %f", cfg.Parameters["customer demand"])
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Model = "predator-prey"
	cfg.Duration = 100
	cfg.Stocks = map[string]float64{"Predators": 5}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != cfg.Model || got.Duration != cfg.Duration {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Stocks["Predators"] != 5 {
		t.Errorf("expected stock override to survive, got %+v", got.Stocks)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyOverrides(t *testing.T) {
	m, err := models.SIR()
	if err != nil {
		t.Fatal(err)
	}
	cfg := &Config{
		Parameters: map[string]float64{"contact rate": 2},
		Stocks:     map[string]float64{"Infected": 10, "Susceptible": 9990},
	}
	if err := cfg.Apply(m); err != nil {
		t.Fatal(err)
	}

	v, _ := m.System.Value("contact rate")
	if v.Magnitude() != 2 {
		t.Errorf("expected contact rate 2, got %f", v.Magnitude())
	}
	if v.Dim().IsDimensionless() {
		t.Error("override should keep the declared unit")
	}
	v, _ = m.System.Value("Infected")
	if v.Magnitude() != 10 {
		t.Errorf("expected Infected 10, got %f", v.Magnitude())
	}
}

func TestApplyUnknownNameFails(t *testing.T) {
	m, err := models.SIR()
	if err != nil {
		t.Fatal(err)
	}
	cfg := &Config{Parameters: map[string]float64{"contact rote": 2}}
	if err := cfg.Apply(m); err == nil {
		t.Error("expected error for misspelled parameter")
	}
	cfg = &Config{Stocks: map[string]float64{"Exposed": 1}}
	if err := cfg.Apply(m); err == nil {
		t.Error("expected error for unknown stock")
	}
}

func TestTimestepResolution(t *testing.T) {
	m, err := models.SIR()
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if got := cfg.Timestep(m); got.Magnitude() != m.Timestep.Magnitude() {
		t.Errorf("zero dt should keep model timestep, got %s", got)
	}

	cfg.Dt = 0.05
	got := cfg.Timestep(m)
	if got.Magnitude() != 0.05 {
		t.Errorf("expected dt 0.05, got %s", got)
	}
	if !got.Dim().Equal(m.Timestep.Dim()) {
		t.Error("config dt must adopt the model's time dimension")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("sir", "slow-burn")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Parameters["contact rate"] != 2 {
		t.Errorf("expected contact rate 2, got %f", cfg.Parameters["contact rate"])
	}

	if GetPreset("sir", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "baseline") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestGetPresetReturnsACopy(t *testing.T) {
	cfg := GetPreset("sir", "slow-burn")
	cfg.Parameters["contact rate"] = 99
	cfg.Stocks = map[string]float64{"Infected": 500}
	cfg.Duration = 1

	fresh := GetPreset("sir", "slow-burn")
	if fresh.Parameters["contact rate"] != 2 {
		t.Errorf("preset table mutated: contact rate %f", fresh.Parameters["contact rate"])
	}
	if fresh.Stocks != nil {
		t.Errorf("preset table mutated: stocks %v", fresh.Stocks)
	}
	if fresh.Duration != 90 {
		t.Errorf("preset table mutated: duration %f", fresh.Duration)
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("sir")
	if len(presets) == 0 {
		t.Error("expected presets for sir")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetNamesResolve(t *testing.T) {
	reg := models.NewRegistry()
	for modelName, presets := range Presets {
		m, err := reg.Build(modelName)
		if err != nil {
			t.Fatalf("preset model %q does not build: %v", modelName, err)
		}
		for presetName, cfg := range presets {
			if err := cfg.Apply(m); err != nil {
				t.Errorf("preset %s/%s: %v", modelName, presetName, err)
			}
		}
	}
}
