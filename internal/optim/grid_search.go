// Package optim scans run parameters for the best value of a metric.
package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"maps"

	"github.com/san-kum/wavesim/internal/config"
	"github.com/san-kum/wavesim/internal/experiment"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/sim"
)

// BuildFunc turns one point of the parameter grid into a run configuration.
type BuildFunc func(params map[string]float64) (*config.Config, error)

// GridSearch evaluates every combination of the parameter values and keeps
// the one with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	logger     *slog.Logger
	run        func(ctx context.Context, cfg *config.Config) (*sim.Result, error)
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters but %d ranges", qdyn.ErrInvalidValue, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: no values for parameter %q", qdyn.ErrInvalidValue, params[i])
		}
	}
	g := &GridSearch{paramNames: params, ranges: ranges, logger: slog.Default()}
	g.run = g.runExperiment
	return g, nil
}

func (g *GridSearch) SetLogger(logger *slog.Logger) { g.logger = logger }

type Point struct {
	Params map[string]float64
	Value  float64
}

// Search returns the best point and all points that could be evaluated.
// Points whose configuration or run fails, or whose metric is NaN, are logged
// and skipped; if none succeeds, the last error is returned.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (Point, []Point, error) {
	best := Point{Value: math.Inf(1)}
	var (
		points  []Point
		lastErr error
	)

	var visit func(depth int, current map[string]float64) error
	visit = func(depth int, current map[string]float64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if depth < len(g.paramNames) {
			for _, v := range g.ranges[depth] {
				next := maps.Clone(current)
				next[g.paramNames[depth]] = v
				if err := visit(depth+1, next); err != nil {
					return err
				}
			}
			return nil
		}

		value, err := g.evaluate(ctx, build, current, metricName)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.logger.Warn("grid point failed", "params", current, "error", err)
			lastErr = err
			return nil
		}

		p := Point{Params: current, Value: value}
		points = append(points, p)
		if value < best.Value {
			best = p
		}
		return nil
	}

	if err := visit(0, map[string]float64{}); err != nil {
		return Point{}, points, err
	}
	if len(points) == 0 {
		return Point{}, nil, fmt.Errorf("no grid point succeeded: %w", lastErr)
	}
	return best, points, nil
}

func (g *GridSearch) evaluate(ctx context.Context, build BuildFunc, params map[string]float64, metricName string) (float64, error) {
	cfg, err := build(params)
	if err != nil {
		return 0, err
	}
	result, err := g.run(ctx, cfg)
	if err != nil {
		return 0, err
	}
	value, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("%w: unknown metric %q", qdyn.ErrInvalidValue, metricName)
	}
	if math.IsNaN(value) {
		return 0, fmt.Errorf("%w: metric %q is NaN", qdyn.ErrExecution, metricName)
	}
	return value, nil
}

func (g *GridSearch) runExperiment(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	exp, err := experiment.New(cfg, experiment.WithLogger(g.logger))
	if err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}
