// Package analysis post-processes the time series of a run.
//
//   - [EnergySpectrum]: Fourier transform of the autocorrelation function
//     <psi(0)|psi(t)>, whose peaks sit at the eigenenergies populated by the
//     initial state
//   - [OscillationFrequency]: dominant angular frequency of a real signal,
//     e.g. the mean position of a wave packet
//
// Both window the signal with a Hann window before the transform, so peaks
// are a few grid points wide; the resolution in energy is 2 pi / T for a
// series of length T.
package analysis
