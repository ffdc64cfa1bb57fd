package sim

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/solver"
)

// Ensemble propagates several initial states with one solver concurrently.
// Solvers are immutable, metrics are not; every member gets fresh metrics
// from the factory.
type Ensemble struct {
	solver  solver.Solver
	metrics func() []Metric
	logger  *slog.Logger
	limit   int
}

func NewEnsemble(s solver.Solver, metrics func() []Metric) *Ensemble {
	return &Ensemble{
		solver:  s,
		metrics: metrics,
		logger:  slog.Default(),
		limit:   runtime.GOMAXPROCS(0),
	}
}

func (e *Ensemble) SetLogger(logger *slog.Logger) { e.logger = logger }

// SetLimit bounds the number of concurrent runs; n <= 0 removes the bound.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns the results in the order of states. The first failing member
// cancels the others.
func (e *Ensemble) Run(ctx context.Context, states []*grid.State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(states))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, st := range states {
		g.Go(func() error {
			sim := New(e.solver, WithLogger(e.logger.With("member", i)))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					sim.AddMetric(m)
				}
			}

			res, err := sim.Run(ctx, st, cfg)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
