package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/wavesim/internal/config"
	"github.com/san-kum/wavesim/internal/expression"
	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/metrics"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/sim"
	"github.com/san-kum/wavesim/internal/solver"
)

// SolverFunc builds a solver for a system. specMin and specMax bound the
// spectrum of the generator the solver expands.
type SolverFunc func(cfg *config.Config, sys *System, specMin, specMax float64) (solver.Solver, error)

type Registry struct {
	models  map[string]ModelFunc
	solvers map[string]SolverFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		models:  make(map[string]ModelFunc),
		solvers: make(map[string]SolverFunc),
	}

	r.models["harmonic"] = harmonicModel
	r.models["free"] = freeModel
	r.models["double_well"] = doubleWellModel
	r.models["rotor"] = rotorModel

	r.solvers[config.SolverChebychev] = func(cfg *config.Config, sys *System, specMin, specMax float64) (solver.Solver, error) {
		return solver.NewChebychevSolver(equationOfMotion(cfg, sys), cfg.Dt, specMin, specMax)
	}
	r.solvers[config.SolverRelaxation] = func(cfg *config.Config, sys *System, specMin, specMax float64) (solver.Solver, error) {
		return solver.NewRelaxationSolver(sys.Hamiltonian, cfg.Dt, specMin, specMax)
	}
	r.solvers[config.SolverOde] = func(cfg *config.Config, sys *System, _, _ float64) (solver.Solver, error) {
		return solver.NewOdeSolver(equationOfMotion(cfg, sys), cfg.Dt,
			solver.WithMethod(cfg.Ode.Method),
			solver.WithRtol(cfg.Ode.Rtol),
			solver.WithAtol(cfg.Ode.Atol),
			solver.WithMaxSteps(cfg.Ode.MaxSteps),
		)
	}

	return r
}

// Register adds or replaces a model.
func (r *Registry) Register(name string, fn ModelFunc) {
	r.models[name] = fn
}

func (r *Registry) GetModel(name string) (ModelFunc, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", qdyn.ErrInvalidValue, name)
	}
	return fn, nil
}

func (r *Registry) GetSolver(name string) (SolverFunc, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown solver %q", qdyn.ErrInvalidValue, name)
	}
	return fn, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh metrics for a run of sys.
func (r *Registry) DefaultMetrics(sys *System) []sim.Metric {
	return []sim.Metric{
		metrics.NewTraceDrift(),
		metrics.NewEnergyDrift(sys.Hamiltonian),
		metrics.NewAutocorrelation(),
	}
}

// Setup is everything needed to start a propagation.
type Setup struct {
	*System
	Initial *grid.State
	Solver  solver.Solver
	// SpecMin and SpecMax are the bounds handed to the solver.
	SpecMin, SpecMax float64
}

// Build creates the system, the initial state and the solver described by
// cfg.
func (r *Registry) Build(cfg *config.Config) (*Setup, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := r.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	newSolver, err := r.GetSolver(cfg.Solver)
	if err != nil {
		return nil, err
	}

	sys, err := model(cfg)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", cfg.Model, err)
	}

	initial, err := initialState(cfg, sys)
	if err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}

	specMin, specMax := solverSpectrum(cfg, sys)
	s, err := newSolver(cfg, sys, specMin, specMax)
	if err != nil {
		return nil, fmt.Errorf("solver %s: %w", cfg.Solver, err)
	}

	return &Setup{
		System:  sys,
		Initial: initial,
		Solver:  s,
		SpecMin: specMin,
		SpecMax: specMax,
	}, nil
}

func equationOfMotion(cfg *config.Config, sys *System) expression.Expression {
	if cfg.Density {
		return expression.NewCommutatorLiouvillian(sys.Hamiltonian)
	}
	return expression.NewSchroedingerEquation(sys.Hamiltonian)
}

// solverSpectrum pads the energy bounds of sys by five percent of their
// width. The commutator [H, rho] has the energy differences as its spectrum,
// which lie within +-(Emax - Emin). An explicit spectrum in cfg is used
// unchanged.
func solverSpectrum(cfg *config.Config, sys *System) (float64, float64) {
	if cfg.Spectrum != nil {
		return cfg.Spectrum.Min, cfg.Spectrum.Max
	}

	width := sys.Emax - sys.Emin
	pad := max(0.05*width, 1e-3)
	if cfg.Density && cfg.Solver != config.SolverRelaxation {
		return -width - pad, width + pad
	}
	return sys.Emin - pad, sys.Emax + pad
}
