package config

import "sort"

var Presets = map[string]map[string]*Config{
	"harmonic": {
		"coherent": {
			Model: "harmonic", Solver: SolverChebychev, Dt: 0.1, Steps: 200,
			Grid:    GridConfig{Xmin: -10, Xmax: 10, N: 128},
			Physics: PhysicsConfig{Mass: 1, Omega: 1},
			Initial: InitialConfig{Kind: "gaussian", Position: 2, Width: 1},
		},
		"squeezed": {
			Model: "harmonic", Solver: SolverChebychev, Dt: 0.1, Steps: 200,
			Grid:    GridConfig{Xmin: -10, Xmax: 10, N: 128},
			Physics: PhysicsConfig{Mass: 1, Omega: 1},
			Initial: InitialConfig{Kind: "gaussian", Position: 0, Width: 0.3},
		},
		"ground": {
			Model: "harmonic", Solver: SolverRelaxation, Dt: 1, Steps: 30,
			Grid:    GridConfig{Xmin: -8, Xmax: 8, N: 64},
			Physics: PhysicsConfig{Mass: 1, Omega: 1},
			Initial: InitialConfig{Kind: "gaussian", Position: 1, Width: 2},
		},
	},
	"free": {
		"spreading": {
			Model: "free", Solver: SolverChebychev, Dt: 0.5, Steps: 40,
			Grid:    GridConfig{Xmin: -30, Xmax: 30, N: 256},
			Physics: PhysicsConfig{Mass: 1},
			Initial: InitialConfig{Kind: "gaussian", Position: -10, Momentum: 1, Width: 1},
		},
		"mixed": {
			Model: "free", Solver: SolverChebychev, Dt: 0.5, Steps: 20, Density: true,
			Grid:    GridConfig{Xmin: -20, Xmax: 20, N: 64},
			Physics: PhysicsConfig{Mass: 1},
			Initial: InitialConfig{Kind: "gaussian", Position: -5, Momentum: 0.5, Width: 1.5},
		},
	},
	"rotor": {
		"field": {
			Model: "rotor", Solver: SolverChebychev, Dt: 0.05, Steps: 200,
			Grid:    GridConfig{Lmax: 20},
			Physics: PhysicsConfig{Inertia: 1, Field: 2},
			Initial: InitialConfig{Kind: "harmonic", L: 0},
		},
		"kick": {
			Model: "rotor", Solver: SolverOde, Dt: 0.05, Steps: 200,
			Grid:    GridConfig{Lmax: 20},
			Physics: PhysicsConfig{Inertia: 1, Field: 5, Frequency: 3, PulseT0: 3, PulseWidth: 4},
			Initial: InitialConfig{Kind: "harmonic", L: 0},
			Ode:     OdeConfig{Method: "rk45", Rtol: 1e-8, Atol: 1e-8, MaxSteps: 100000},
		},
	},
	"double_well": {
		"tunneling": {
			Model: "double_well", Solver: SolverChebychev, Dt: 0.5, Steps: 400,
			Grid:    GridConfig{Xmin: -4, Xmax: 4, N: 128},
			Physics: PhysicsConfig{Mass: 1, Barrier: 2},
			Initial: InitialConfig{Kind: "gaussian", Position: -1, Width: 0.4},
		},
		"ground": {
			Model: "double_well", Solver: SolverRelaxation, Dt: 1, Steps: 50,
			Grid:    GridConfig{Xmin: -4, Xmax: 4, N: 64},
			Physics: PhysicsConfig{Mass: 1, Barrier: 2},
			Initial: InitialConfig{Kind: "gaussian", Position: 0, Width: 1},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil if there is none.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	if c.Ode == (OdeConfig{}) {
		c.Ode = DefaultConfig().Ode
	}
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
