package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/wavesim/internal/qdyn"
)

// Spectrum is an intensity over angular frequencies, which are energies for
// hbar = 1. Energies are ascending and centred at zero.
type Spectrum struct {
	Energies  []float64
	Intensity []float64
}

type Option func(*options)

type options struct {
	window func(n int) []float64
}

// WithWindow replaces the Hann window, e.g. by window.Rectangular.
func WithWindow(w func(n int) []float64) Option {
	return func(o *options) { o.window = w }
}

func collect(opts []Option) options {
	o := options{window: window.Hann}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EnergySpectrum returns |int a(t) exp(iEt) dt| for the autocorrelation a(t)
// sampled at the equally spaced times.
func EnergySpectrum(times []float64, values []complex128, opts ...Option) (*Spectrum, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d times for %d values", qdyn.ErrInvalidValue, len(times), len(values))
	}
	dt, err := spacing(times)
	if err != nil {
		return nil, err
	}

	n := len(values)
	w := collect(opts).window(n)

	// exp(+iEt) is the conjugate of the FFT kernel
	data := make([]complex128, n)
	for i, v := range values {
		data[i] = cmplx.Conj(v) * complex(w[i], 0)
	}
	transformed := fft.FFT(data)

	energies := frequencyAxis(n, dt)
	intensity := make([]float64, n)
	for i := range energies {
		k := (i + n - n/2) % n
		intensity[i] = cmplx.Abs(transformed[k]) * dt
	}
	return &Spectrum{Energies: energies, Intensity: intensity}, nil
}

// Peak returns the energy and intensity of the global maximum.
func (s *Spectrum) Peak() (float64, float64) {
	best := 0
	for i, v := range s.Intensity {
		if v > s.Intensity[best] {
			best = i
		}
	}
	return s.Energies[best], s.Intensity[best]
}

// Peaks returns the energies of all local maxima whose intensity exceeds
// threshold times the global maximum.
func (s *Spectrum) Peaks(threshold float64) []float64 {
	_, top := s.Peak()
	var peaks []float64
	for i := 1; i < len(s.Intensity)-1; i++ {
		v := s.Intensity[i]
		if v > s.Intensity[i-1] && v >= s.Intensity[i+1] && v >= threshold*top {
			peaks = append(peaks, s.Energies[i])
		}
	}
	return peaks
}

// OscillationFrequency returns the positive angular frequency with the
// largest amplitude in a real signal. The mean is removed first.
func OscillationFrequency(times, values []float64, opts ...Option) (float64, error) {
	if len(times) != len(values) {
		return 0, fmt.Errorf("%w: %d times for %d values", qdyn.ErrInvalidValue, len(times), len(values))
	}
	dt, err := spacing(times)
	if err != nil {
		return 0, err
	}

	n := len(values)
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	w := collect(opts).window(n)
	data := make([]float64, n)
	for i, v := range values {
		data[i] = (v - mean) * w[i]
	}
	transformed := fft.FFTReal(data)

	best, amp := 0, 0.0
	for k := 1; k <= n/2; k++ {
		if a := cmplx.Abs(transformed[k]); a > amp {
			best, amp = k, a
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("%w: signal is constant", qdyn.ErrInvalidValue)
	}
	return 2 * math.Pi * float64(best) / (float64(n) * dt), nil
}

// frequencyAxis returns the angular frequencies 2 pi k / (n dt) for
// k = -n/2, ..., n - n/2 - 1.
func frequencyAxis(n int, dt float64) []float64 {
	axis := make([]float64, n)
	dw := 2 * math.Pi / (float64(n) * dt)
	for i := range axis {
		axis[i] = float64(i-n/2) * dw
	}
	return axis
}

func spacing(times []float64) (float64, error) {
	if len(times) < 2 {
		return 0, fmt.Errorf("%w: need at least two samples, got %d", qdyn.ErrInvalidValue, len(times))
	}
	dt := times[1] - times[0]
	if !(dt > 0) {
		return 0, fmt.Errorf("%w: times must be ascending", qdyn.ErrInvalidValue)
	}
	for i := 2; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-dt) > 1e-9*math.Max(1, math.Abs(dt)) {
			return 0, fmt.Errorf("%w: times are not equally spaced at index %d", qdyn.ErrInvalidValue, i)
		}
	}
	return dt, nil
}
