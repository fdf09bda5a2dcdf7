package config

import "sort"

// Presets are named starting points per model, keyed model -> preset.
var Presets = map[string]map[string]*Config{
	"sir": {
		"baseline": {
			Model: "sir", Duration: 30,
		},
		"slow-burn": {
			Model: "sir", Duration: 90,
			Parameters: map[string]float64{"contact rate": 2, "infectious period": 4},
		},
		"contained": {
			Model: "sir", Duration: 60,
			Parameters: map[string]float64{"infectivity": 0.05},
		},
	},
	"inventory": {
		"steady": {
			Model: "inventory", Duration: 40,
		},
		"demand-shock": {
			Model: "inventory", Duration: 60,
			Parameters: map[string]float64{"customer demand": 80},
		},
		"sluggish": {
			Model: "inventory", Duration: 80,
			Parameters: map[string]float64{"adjustment time": 12},
		},
	},
	"predator-prey": {
		"cycles": {
			Model: "predator-prey", Duration: 100,
		},
		"sparse-predators": {
			Model: "predator-prey", Duration: 100,
			Stocks: map[string]float64{"Predators": 5},
		},
	},
}

// GetPreset returns a copy of the named preset, so callers can layer
// their own overrides without mutating the shared table.
func GetPreset(model, name string) *Config {
	if presets, ok := Presets[model]; ok {
		if p, ok := presets[name]; ok {
			return p.Clone()
		}
	}
	return nil
}

func ListPresets(model string) []string {
	presets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
