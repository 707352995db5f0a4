package config

import "github.com/san-kum/fracsim/internal/fracdyn"

var Presets = map[string]map[string]*Config{
	"stability": {
		"gentle": {
			Analysis: "stability",
			Params:   fracdyn.Parameters{Alpha: 1.0, Beta: 0.05, Gamma: 0.5, FractalOrder: 2.0, Dt: 0.00005, Hurst: 0.7},
			NX:       64, NT: 2000, DomainSize: 1.0, SaveInterval: 20, Seed: 42,
		},
		"noisy": {
			Analysis: "stability",
			Params:   fracdyn.Parameters{Alpha: 0.5, Beta: 1.0, Gamma: 0.2, FractalOrder: 1.5, Dt: 0.0001, Hurst: 0.3},
			NX:       128, NT: 5000, DomainSize: 1.0, SaveInterval: 50, Seed: 42,
		},
		"stiff": {
			Analysis: "stability",
			Params:   fracdyn.Parameters{Alpha: 2.0, Beta: 0.1, Gamma: 1.0, FractalOrder: 3.0, Dt: 0.0001, Hurst: 0.7},
			NX:       64, NT: 1000, DomainSize: 1.0, SaveInterval: 10, Seed: 42,
		},
		"blowup": {
			Analysis: "stability",
			Params:   fracdyn.Parameters{Alpha: 1.0, Beta: 0.0, Gamma: 0.0, FractalOrder: 2.0, Dt: 0.1, Hurst: 0.7},
			NX:       32, NT: 100, DomainSize: 1.0, SaveInterval: 1, Seed: 42,
		},
	},
	"convergence": {
		"diffusion": {
			Analysis:  "convergence",
			Params:    fracdyn.Parameters{Alpha: 1.0, Beta: 0.0, Gamma: 0.0, FractalOrder: 2.0, Dt: 0.00001, Hurst: 0.7},
			NSteps:    200, DomainSize: 1.0, Seed: 42,
			MeshSizes: []int{16, 32, 64, 128},
		},
		"fractional": {
			Analysis:  "convergence",
			Params:    fracdyn.Parameters{Alpha: 1.0, Beta: 0.0, Gamma: 0.1, FractalOrder: 1.5, Dt: 0.00001, Hurst: 0.7},
			NSteps:    200, DomainSize: 1.0, Seed: 42,
			MeshSizes: []int{16, 32, 64, 128},
		},
		"refined": {
			Analysis:            "convergence",
			Params:              fracdyn.Parameters{Alpha: 1.0, Beta: 0.0, Gamma: 0.0, FractalOrder: 2.0, Dt: 0.0001, Hurst: 0.7},
			NSteps:              50, DomainSize: 1.0, Seed: 42,
			MeshSizes:           []int{16, 32, 64, 128, 256},
			HoldDiffusionNumber: true,
		},
	},
}

func GetPreset(analysis, name string) *Config {
	group, ok := Presets[analysis]
	if !ok {
		return nil
	}
	return group[name]
}

func ListPresets(analysis string) []string {
	group, ok := Presets[analysis]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
