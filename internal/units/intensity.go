package units

import "math"

// Intensity-mode conversions between transmission, absorbance, and optical
// depth. Transmission is clipped to [1e-12, 1] before taking logarithms so
// zero-transmission rows convert to large finite values instead of Inf.

const transmissionFloor = 1e-12

func clipTransmission(v float64) float64 {
	if v < transmissionFloor {
		return transmissionFloor
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// TransmissionToAbsorbance computes A = -log10(T).
func TransmissionToAbsorbance(transmission []float64) []float64 {
	out := make([]float64, len(transmission))
	for i, v := range transmission {
		out[i] = -math.Log10(clipTransmission(v))
	}
	return out
}

// AbsorbanceToTransmission computes T = 10^(-A).
func AbsorbanceToTransmission(absorbance []float64) []float64 {
	out := make([]float64, len(absorbance))
	for i, v := range absorbance {
		out[i] = math.Pow(10.0, -v)
	}
	return out
}

// TransmissionToOpticalDepth computes tau = -ln(T).
func TransmissionToOpticalDepth(transmission []float64) []float64 {
	out := make([]float64, len(transmission))
	for i, v := range transmission {
		out[i] = -math.Log(clipTransmission(v))
	}
	return out
}

// OpticalDepthToTransmission computes T = exp(-tau).
func OpticalDepthToTransmission(opticalDepth []float64) []float64 {
	out := make([]float64, len(opticalDepth))
	for i, v := range opticalDepth {
		out[i] = math.Exp(-v)
	}
	return out
}

// AbsorbanceToOpticalDepth chains through transmission.
func AbsorbanceToOpticalDepth(absorbance []float64) []float64 {
	return TransmissionToOpticalDepth(AbsorbanceToTransmission(absorbance))
}

// OpticalDepthToAbsorbance chains through transmission.
func OpticalDepthToAbsorbance(opticalDepth []float64) []float64 {
	return TransmissionToAbsorbance(OpticalDepthToTransmission(opticalDepth))
}
