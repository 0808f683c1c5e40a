package units

import (
	"errors"
	"math"
	"sort"
)

// ResolutionMatch reports the outcome of convolving a spectrum down to a
// target resolving power.
type ResolutionMatch struct {
	Flux             []float64
	KernelSigmaPx    float64
	TargetResolution float64
}

// MatchResolution convolves flux with a Gaussian kernel sized so the spectrum
// reaches the requested resolving power R at the grid-median wavelength.
// currentResolution may be zero when unknown. The call is a no-op (returning
// a copy of flux) when the target is coarser than nothing: target >= current,
// or the wavelength grid has no usable spacing.
func MatchResolution(wavelengthNm, flux []float64, currentResolution, targetResolution float64) (ResolutionMatch, error) {
	if targetResolution <= 0 {
		return ResolutionMatch{}, errors.New("target resolution must be positive")
	}
	if len(wavelengthNm) != len(flux) {
		return ResolutionMatch{}, errors.New("wavelength and flux lengths differ")
	}

	passthrough := func() ResolutionMatch {
		out := make([]float64, len(flux))
		copy(out, flux)
		return ResolutionMatch{Flux: out, TargetResolution: targetResolution}
	}

	if currentResolution > 0 && targetResolution >= currentResolution {
		return passthrough(), nil
	}

	spacing := medianSpacing(wavelengthNm)
	if spacing <= 0 {
		return passthrough(), nil
	}

	lamRef := median(wavelengthNm)
	currentFWHM := 0.0
	if currentResolution > 0 {
		currentFWHM = lamRef / currentResolution
	}
	targetFWHM := lamRef / targetResolution
	kernelFWHM := math.Sqrt(math.Max(targetFWHM*targetFWHM-currentFWHM*currentFWHM, 0.0))
	sigmaNm := kernelFWHM / (2.0 * math.Sqrt(2.0*math.Log(2.0)))
	sigmaPx := sigmaNm / spacing
	if !(sigmaPx > 0) || math.IsInf(sigmaPx, 0) {
		return passthrough(), nil
	}

	return ResolutionMatch{
		Flux:             gaussianFilter(flux, sigmaPx),
		KernelSigmaPx:    sigmaPx,
		TargetResolution: targetResolution,
	}, nil
}

// gaussianFilter convolves values with a normalized Gaussian kernel,
// replicating edge samples (nearest-mode padding). The kernel is truncated
// at four sigma.
func gaussianFilter(values []float64, sigmaPx float64) []float64 {
	radius := int(4.0*sigmaPx + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-x * x / (2.0 * sigmaPx * sigmaPx))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	n := len(values)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k := -radius; k <= radius; k++ {
			j := i + k
			if j < 0 {
				j = 0
			} else if j >= n {
				j = n - 1
			}
			acc += values[j] * kernel[k+radius]
		}
		out[i] = acc
	}
	return out
}

// EstimateFWHM measures the full width at half maximum of the strongest peak,
// used to validate resolution matching.
func EstimateFWHM(wavelengthNm, flux []float64) float64 {
	if len(flux) == 0 || len(wavelengthNm) != len(flux) {
		return 0.0
	}
	peak := 0
	for i, v := range flux {
		if v > flux[peak] {
			peak = i
		}
	}
	halfMax := flux[peak] / 2.0

	left := -1
	for i := peak - 1; i >= 0; i-- {
		if flux[i] <= halfMax {
			left = i
			break
		}
	}
	right := -1
	for i := peak; i < len(flux); i++ {
		if flux[i] <= halfMax {
			right = i
			break
		}
	}
	if left < 0 || right < 0 {
		return 0.0
	}
	return wavelengthNm[right] - wavelengthNm[left]
}

func medianSpacing(wavelengthNm []float64) float64 {
	diffs := make([]float64, 0, len(wavelengthNm))
	for i := 1; i < len(wavelengthNm); i++ {
		d := wavelengthNm[i] - wavelengthNm[i-1]
		if !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0 {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) == 0 {
		return 0.0
	}
	return median(diffs)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2.0
}
