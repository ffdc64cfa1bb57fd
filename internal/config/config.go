package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/wavesim/internal/qdyn"
)

const (
	DefaultDt    = 0.1
	DefaultSteps = 100
	DefaultXmin  = -10.0
	DefaultXmax  = 10.0
	DefaultN     = 128
	DefaultLmax  = 20
	DefaultMass  = 1.0
	DefaultOmega = 1.0
	DefaultWidth = 1.0

	// EnvPrefix prefixes the environment variables read by LoadWithEnv, e.g.
	// WAVESIM_DT or WAVESIM_GRID_N.
	EnvPrefix = "WAVESIM"
)

// Solver names.
const (
	SolverChebychev  = "chebychev"
	SolverRelaxation = "relaxation"
	SolverOde        = "ode"
)

type Config struct {
	Model  string  `yaml:"model" mapstructure:"model"`
	Solver string  `yaml:"solver" mapstructure:"solver"`
	Dt     float64 `yaml:"dt" mapstructure:"dt"`
	Steps  int     `yaml:"steps" mapstructure:"steps"`
	Seed   int64   `yaml:"seed" mapstructure:"seed"`

	// SampleEvery records the observables every n steps; zero records every
	// step.
	SampleEvery int `yaml:"sample_every" mapstructure:"sample_every"`

	// Density propagates the pure density operator of the initial state
	// instead of the wave function.
	Density bool `yaml:"density" mapstructure:"density"`

	// Spectrum overrides the spectral bounds that the model estimates.
	Spectrum *SpectrumConfig `yaml:"spectrum,omitempty" mapstructure:"spectrum"`

	Grid    GridConfig    `yaml:"grid" mapstructure:"grid"`
	Physics PhysicsConfig `yaml:"physics" mapstructure:"physics"`
	Initial InitialConfig `yaml:"initial" mapstructure:"initial"`
	Ode     OdeConfig     `yaml:"ode" mapstructure:"ode"`
}

type SpectrumConfig struct {
	Min float64 `yaml:"min" mapstructure:"min"`
	Max float64 `yaml:"max" mapstructure:"max"`
}

type GridConfig struct {
	Xmin float64 `yaml:"xmin" mapstructure:"xmin"`
	Xmax float64 `yaml:"xmax" mapstructure:"xmax"`
	N    int     `yaml:"n" mapstructure:"n"`
	Lmax int     `yaml:"lmax" mapstructure:"lmax"`
	M    int     `yaml:"m" mapstructure:"m"`
}

type PhysicsConfig struct {
	Mass    float64 `yaml:"mass" mapstructure:"mass"`
	Omega   float64 `yaml:"omega" mapstructure:"omega"`
	Inertia float64 `yaml:"inertia" mapstructure:"inertia"`
	Barrier float64 `yaml:"barrier" mapstructure:"barrier"`
	// Field is the static field strength, or the amplitude of the laser
	// pulse if Frequency is set.
	Field     float64 `yaml:"field" mapstructure:"field"`
	Frequency float64 `yaml:"frequency" mapstructure:"frequency"`
	PulseT0   float64 `yaml:"pulse_t0" mapstructure:"pulse_t0"`
	// PulseWidth is the half width of the sin^2 pulse envelope.
	PulseWidth float64 `yaml:"pulse_width" mapstructure:"pulse_width"`
}

type InitialConfig struct {
	// Kind is "gaussian", "harmonic" (spherical harmonic Y_lm), "random"
	// (seeded by Config.Seed) or "eigenstate" of the Hamiltonian.
	Kind     string  `yaml:"kind" mapstructure:"kind"`
	Position float64 `yaml:"position" mapstructure:"position"`
	Momentum float64 `yaml:"momentum" mapstructure:"momentum"`
	Width    float64 `yaml:"width" mapstructure:"width"`
	Level    int     `yaml:"level" mapstructure:"level"`
	L        int     `yaml:"l" mapstructure:"l"`
}

type OdeConfig struct {
	Method   string  `yaml:"method" mapstructure:"method"`
	Rtol     float64 `yaml:"rtol" mapstructure:"rtol"`
	Atol     float64 `yaml:"atol" mapstructure:"atol"`
	MaxSteps int     `yaml:"max_steps" mapstructure:"max_steps"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:  "harmonic",
		Solver: SolverChebychev,
		Dt:     DefaultDt,
		Steps:  DefaultSteps,
		Grid: GridConfig{
			Xmin: DefaultXmin,
			Xmax: DefaultXmax,
			N:    DefaultN,
			Lmax: DefaultLmax,
		},
		Physics: PhysicsConfig{
			Mass:    DefaultMass,
			Omega:   DefaultOmega,
			Inertia: DefaultMass,
		},
		Initial: InitialConfig{
			Kind:     "gaussian",
			Position: 1,
			Width:    DefaultWidth,
		},
		Ode: OdeConfig{
			Method:   "rk45",
			Rtol:     1e-6,
			Atol:     1e-6,
			MaxSteps: 100000,
		},
	}
}

// Duration is the total propagation time.
func (c *Config) Duration() float64 { return c.Dt * float64(c.Steps) }

// Validate checks the parameters that do not depend on the model.
func (c *Config) Validate() error {
	switch {
	case c.Model == "":
		return fmt.Errorf("%w: no model given", qdyn.ErrInvalidValue)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", qdyn.ErrInvalidValue, c.Dt)
	case c.Steps < 0:
		return fmt.Errorf("%w: steps must not be negative, got %d", qdyn.ErrInvalidValue, c.Steps)
	case c.SampleEvery < 0:
		return fmt.Errorf("%w: sampling interval must not be negative, got %d", qdyn.ErrInvalidValue, c.SampleEvery)
	case c.Spectrum != nil && c.Spectrum.Max <= c.Spectrum.Min:
		return fmt.Errorf("%w: spectrum [%g, %g] is not monotonic", qdyn.ErrInvalidValue, c.Spectrum.Min, c.Spectrum.Max)
	}

	switch c.Solver {
	case SolverChebychev, SolverRelaxation:
	case SolverOde:
		if c.Ode.Rtol < 0 || c.Ode.Atol < 0 || c.Ode.Rtol+c.Ode.Atol == 0 {
			return fmt.Errorf("%w: ode tolerances rtol=%g atol=%g", qdyn.ErrInvalidValue, c.Ode.Rtol, c.Ode.Atol)
		}
	default:
		return fmt.Errorf("%w: unknown solver %q", qdyn.ErrInvalidValue, c.Solver)
	}
	return nil
}

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

// LoadWithEnv layers the defaults, the file at path (skipped if empty) and
// WAVESIM_* environment variables, in this order of precedence.
func LoadWithEnv(path string) (*Config, error) {
	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
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
