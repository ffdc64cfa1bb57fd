package analysis

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/mjibson/go-dsp/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/wavesim/internal/qdyn"
)

const (
	numSamples = 256
	dt         = 0.1
)

// dw is the energy resolution of a series of numSamples samples.
var dw = 2 * math.Pi / (numSamples * dt)

func sampleTimes() []float64 {
	times := make([]float64, numSamples)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times
}

func autocorrelation(weights, energies []float64) []complex128 {
	values := make([]complex128, numSamples)
	for i, t := range sampleTimes() {
		for j, e := range energies {
			values[i] += complex(weights[j], 0) * cmplx.Exp(complex(0, -e*t))
		}
	}
	return values
}

func TestEnergySpectrum_SingleLevel(t *testing.T) {
	energy := 10 * dw
	spec, err := EnergySpectrum(sampleTimes(), autocorrelation([]float64{1}, []float64{energy}))
	require.NoError(t, err)

	require.Len(t, spec.Energies, numSamples)
	assert.InDelta(t, -numSamples/2*dw, spec.Energies[0], 1e-12)
	assert.Zero(t, spec.Energies[numSamples/2])

	e, intensity := spec.Peak()
	assert.InDelta(t, energy, e, 1e-12)
	// the symmetric Hann window sums up to (n-1)/2
	assert.InDelta(t, (numSamples-1)*dt/2, intensity, 1e-9)
}

func TestEnergySpectrum_TwoLevels(t *testing.T) {
	levels := []float64{-20 * dw, 35 * dw}
	spec, err := EnergySpectrum(sampleTimes(), autocorrelation([]float64{0.6, 0.4}, levels))
	require.NoError(t, err)

	peaks := spec.Peaks(0.2)
	require.Len(t, peaks, 2)
	assert.InDelta(t, levels[0], peaks[0], 1e-12)
	assert.InDelta(t, levels[1], peaks[1], 1e-12)

	e, _ := spec.Peak()
	assert.InDelta(t, levels[0], e, 1e-12)
}

func TestEnergySpectrum_RectangularWindow(t *testing.T) {
	energy := -7 * dw
	spec, err := EnergySpectrum(sampleTimes(), autocorrelation([]float64{1}, []float64{energy}), WithWindow(window.Rectangular))
	require.NoError(t, err)

	e, intensity := spec.Peak()
	assert.InDelta(t, energy, e, 1e-12)
	assert.InDelta(t, numSamples*dt, intensity, 1e-9)
	// without leakage all other bins vanish
	for i, v := range spec.Intensity {
		if spec.Energies[i] != e {
			assert.InDelta(t, 0, v, 1e-9)
		}
	}
}

func TestEnergySpectrum_Errors(t *testing.T) {
	_, err := EnergySpectrum([]float64{0}, []complex128{1})
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)

	_, err = EnergySpectrum([]float64{0, 1}, []complex128{1})
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)

	_, err = EnergySpectrum([]float64{0, 1, 3}, []complex128{1, 1, 1})
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)

	_, err = EnergySpectrum([]float64{1, 0}, []complex128{1, 1})
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
}

func TestOscillationFrequency(t *testing.T) {
	omega := 8 * dw
	times := sampleTimes()
	values := make([]float64, len(times))
	for i, tt := range times {
		values[i] = 3 + 2*math.Cos(omega*tt)
	}

	w, err := OscillationFrequency(times, values)
	require.NoError(t, err)
	assert.InDelta(t, omega, w, 1e-12)
}

func TestOscillationFrequency_Constant(t *testing.T) {
	times := sampleTimes()
	values := make([]float64, len(times))
	for i := range values {
		values[i] = 1.5
	}
	_, err := OscillationFrequency(times, values)
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
}
