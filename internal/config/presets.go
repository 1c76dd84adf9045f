package config

import "sort"

// Presets are named parameter sets in the known dynamical regimes of the
// Ricker map.
var Presets = map[string]*Config{
	"stable": {
		R: 1.5, K: 100, N0: 20, Steps: 100, Generator: "scalar",
		Sweep: SweepConfig{RMin: 0.5, RMax: 1.9, RSteps: 50, Record: 40},
	},
	"two-cycle": {
		R: 2.3, K: 100, N0: 20, Steps: 200, Generator: "scalar",
		Sweep: SweepConfig{RMin: 2.0, RMax: 2.5, RSteps: 50, Record: 40},
	},
	"four-cycle": {
		R: 2.6, K: 100, N0: 20, Steps: 300, Generator: "scalar",
		Sweep: SweepConfig{RMin: 2.5, RMax: 2.69, RSteps: 50, Record: 40},
	},
	"chaos": {
		R: 3.0, K: 100, N0: 50, Steps: 1000, Generator: "scalar",
		Sweep: SweepConfig{RMin: 2.7, RMax: 3.5, RSteps: 100, Record: 100},
	},
	"boom-bust": {
		R: 4.5, K: 100, N0: 10, Steps: 200, Generator: "scalar",
		Sweep: SweepConfig{RMin: 3.5, RMax: 5.0, RSteps: 50, Record: 40},
	},
	"diagram": {
		R: 2.0, K: 1, N0: 0.5, Steps: 1000, Generator: "vectorized",
		Sweep: SweepConfig{RMin: 1.5, RMax: 3.5, RSteps: 400, Record: 40},
	},
	"grid": {
		R: 2.0, K: 100, N0: 50, Steps: 200, Generator: "vectorized",
		Sweep: SweepConfig{
			RMin: 1.5, RMax: 3.0, RSteps: 7,
			K:  []float64{50, 100, 200},
			N0: []float64{1, 50},
			Record: 40,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
