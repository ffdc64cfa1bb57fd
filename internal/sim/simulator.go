package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/solver"
)

type Simulator struct {
	solver    solver.Solver
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

type Option func(*Simulator)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

func New(s solver.Solver, opts ...Option) *Simulator {
	sim := &Simulator{
		solver:    s,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(sim)
	}
	return sim
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run propagates state0 for cfg.Steps steps. On failure it returns the
// partial result together with the error; solver failures are wrapped in a
// StepError.
func (s *Simulator) Run(ctx context.Context, state0 *grid.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	probe, err := NewProbe(state0.Grid())
	if err != nil {
		return nil, err
	}

	every := max(cfg.SampleEvery, 1)
	result := &Result{
		Samples: make([]Sample, 0, cfg.Steps/every+2),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Debug("run started", "t0", cfg.T0, "dt", s.solver.Dt(), "steps", cfg.Steps)

	calls := 0
	err = solver.Propagate(ctx, s.solver, state0, cfg.T0, cfg.Steps, true, func(t float64, st *grid.State) error {
		k := calls
		calls++

		result.Final = st
		result.StepsTaken = k

		sample := k == 0 || k == cfg.Steps || k%every == 0
		if err := s.record(result, probe, t, st, sample, cfg.KeepStates); err != nil {
			return &StepError{Step: k, Time: t, Wrapped: err}
		}
		return nil
	})

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if err != nil {
		var stepErr *StepError
		if !errors.As(err, &stepErr) && ctx.Err() == nil {
			k := calls - 1
			err = &StepError{Step: k, Time: cfg.T0 + float64(k)*s.solver.Dt(), Wrapped: err}
		}
		s.logger.Warn("run aborted", "steps", result.StepsTaken, "error", err)
		return result, err
	}

	s.logger.Debug("run finished", "steps", result.StepsTaken, "metrics", result.Metrics)
	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", qdyn.ErrInvalidValue, cfg.Steps)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sampling interval must not be negative, got %d", qdyn.ErrInvalidValue, cfg.SampleEvery)
	}
	return nil
}

func (s *Simulator) record(result *Result, probe *Probe, t float64, st *grid.State, sample, keep bool) error {
	tr, err := grid.Trace(st)
	if err != nil {
		return err
	}
	if math.IsNaN(tr) || math.IsInf(tr, 0) {
		return fmt.Errorf("%w: state diverged", qdyn.ErrExecution)
	}

	for _, m := range s.metrics {
		if err := m.Observe(t, st); err != nil {
			return fmt.Errorf("metric %s: %w", m.Name(), err)
		}
	}
	for _, o := range s.observers {
		o.OnStep(t, st)
	}

	if !sample {
		return nil
	}
	smp, err := probe.Measure(t, st)
	if err != nil {
		return err
	}
	result.Samples = append(result.Samples, smp)
	if keep {
		result.States = append(result.States, st)
	}
	return nil
}
