// Package experiment assembles runs from a configuration: it builds the
// model, the initial state and the solver, and drives them with a
// sim.Simulator.
package experiment

import (
	"context"
	"log/slog"

	"github.com/san-kum/wavesim/internal/config"
	"github.com/san-kum/wavesim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	setup     *Setup
	simulator *sim.Simulator
	logger    *slog.Logger
}

type Option func(*Experiment)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Experiment) { e.logger = logger }
}

// New builds the experiment with the default registry and metrics.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	return NewWithRegistry(NewRegistry(), cfg, opts...)
}

func NewWithRegistry(r *Registry, cfg *config.Config, opts ...Option) (*Experiment, error) {
	e := &Experiment{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	setup, err := r.Build(cfg)
	if err != nil {
		return nil, err
	}
	e.setup = setup
	e.simulator = sim.New(setup.Solver, sim.WithLogger(e.logger))
	for _, m := range r.DefaultMetrics(setup.System) {
		e.simulator.AddMetric(m)
	}

	e.logger.Info("experiment ready",
		"model", cfg.Model,
		"solver", cfg.Solver,
		"grid_size", setup.Grid.Size(),
		"spectrum_min", setup.SpecMin,
		"spectrum_max", setup.SpecMax,
	)
	return e, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Setup() *Setup          { return e.setup }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.setup.Initial, sim.Config{
		Steps:       e.cfg.Steps,
		SampleEvery: e.cfg.SampleEvery,
	})
}
