package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/wavesim/internal/grid"
)

// LogObserver logs the trace and <x_i> +/- dx_i of every state it sees.
type LogObserver struct {
	logger *slog.Logger
	probe  *Probe
	level  slog.Level
}

func NewLogObserver(logger *slog.Logger, g *grid.Grid) (*LogObserver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	probe, err := NewProbe(g)
	if err != nil {
		return nil, err
	}
	return &LogObserver{logger: logger, probe: probe, level: slog.LevelInfo}, nil
}

// SetLevel sets the level of the per-step records.
func (o *LogObserver) SetLevel(level slog.Level) { o.level = level }

func (o *LogObserver) OnStep(t float64, s *grid.State) {
	sample, err := o.probe.Measure(t, s)
	if err != nil {
		o.logger.Warn("cannot evaluate observables", "t", t, "error", err)
		return
	}

	attrs := make([]slog.Attr, 0, 2+2*len(sample.Mean))
	attrs = append(attrs, slog.Float64("t", t), slog.Float64("trace", sample.Trace))
	for i := range sample.Mean {
		attrs = append(attrs,
			slog.Float64(fmt.Sprintf("x%d", i), sample.Mean[i]),
			slog.Float64(fmt.Sprintf("dx%d", i), sample.Width[i]),
		)
	}
	o.logger.LogAttrs(context.Background(), o.level, "state", attrs...)
}
