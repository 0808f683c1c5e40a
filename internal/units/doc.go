// Package units implements the pure spectral conversions the pipeline is
// built on: wavelength/wavenumber/frequency/energy axis families, the
// Edlén (1966) air-to-vacuum correction, Doppler shifting, intensity-mode
// transforms, and Gaussian resolution matching.
//
// Every function operates element-wise over float64 slices, never mutates
// its input, and guards division by zero by producing +Inf, so round trips
// are exact to floating-point precision wherever the math allows.
package units
