package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/wavesim/internal/config"
	"github.com/san-kum/wavesim/internal/sim"
)

type ExportData struct {
	Model   string             `json:"model"`
	Solver  string             `json:"solver"`
	Dt      float64            `json:"dt"`
	Steps   int                `json:"steps"`
	Times   []float64          `json:"times"`
	Traces  []float64          `json:"traces"`
	Means   [][]float64        `json:"means"`
	Widths  [][]float64        `json:"widths"`
	Metrics map[string]float64 `json:"metrics"`
}

// ExportJSON writes the samples of a run as one JSON document.
func ExportJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	data := ExportData{
		Model:   cfg.Model,
		Solver:  cfg.Solver,
		Dt:      cfg.Dt,
		Steps:   result.StepsTaken,
		Times:   result.Times(),
		Traces:  make([]float64, len(result.Samples)),
		Means:   make([][]float64, len(result.Samples)),
		Widths:  make([][]float64, len(result.Samples)),
		Metrics: result.Metrics,
	}
	for i, s := range result.Samples {
		data.Traces[i] = s.Trace
		data.Means[i] = s.Mean
		data.Widths[i] = s.Width
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
