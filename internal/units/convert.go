package units

import (
	"fmt"
	"math"
)

// Physical constants shared by the conversion families.
const (
	SpeedOfLightKms = 299792.458     // km/s, used for Doppler shifts
	speedOfLightMs  = 299792458.0    // m/s
	hcEVnm          = 1239.8419843320026 // h*c in eV*nm
)

// safeInverse returns numerator/value element-wise, producing +Inf where the
// divisor is exactly zero instead of a runtime panic or NaN ambiguity.
func safeInverse(values []float64, numerator float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v == 0 {
			out[i] = math.Inf(1)
			continue
		}
		out[i] = numerator / v
	}
	return out
}

func scaled(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}

// NmToWavenumber converts wavelength in nm to wavenumber in cm^-1.
func NmToWavenumber(wavelengthNm []float64) []float64 {
	return safeInverse(wavelengthNm, 1e7)
}

// WavenumberToNm converts wavenumber in cm^-1 to wavelength in nm. The
// relation is its own inverse.
func WavenumberToNm(wavenumber []float64) []float64 {
	return safeInverse(wavenumber, 1e7)
}

// NmToFrequency converts wavelength in nm to frequency, divided by scale
// (1 for Hz, 1e9 for GHz, ...).
func NmToFrequency(wavelengthNm []float64, scale float64) []float64 {
	out := make([]float64, len(wavelengthNm))
	for i, nm := range wavelengthNm {
		if nm == 0 {
			out[i] = math.Inf(1)
			continue
		}
		out[i] = speedOfLightMs / (nm * 1e-9) / scale
	}
	return out
}

// FrequencyToNm converts frequency (in units of scale hertz) to wavelength
// in nm.
func FrequencyToNm(frequency []float64, scale float64) []float64 {
	out := make([]float64, len(frequency))
	for i, f := range frequency {
		hz := f * scale
		if hz == 0 {
			out[i] = math.Inf(1)
			continue
		}
		out[i] = speedOfLightMs * 1e9 / hz
	}
	return out
}

// NmToEnergyEV converts wavelength in nm to photon energy in eV.
func NmToEnergyEV(wavelengthNm []float64) []float64 {
	return safeInverse(wavelengthNm, hcEVnm)
}

// EnergyEVToNm converts photon energy in eV to wavelength in nm.
func EnergyEVToNm(energyEV []float64) []float64 {
	return safeInverse(energyEV, hcEVnm)
}

// ToNanometers converts an axis expressed in any supported unit onto the
// canonical nanometre baseline. Unknown resolves to an identity conversion;
// the caller decides whether that default is acceptable.
func ToNanometers(values []float64, from Unit) ([]float64, error) {
	switch from {
	case Nanometer, Unknown:
		out := make([]float64, len(values))
		copy(out, values)
		return out, nil
	case Angstrom:
		return scaled(values, 0.1), nil
	case Micron:
		return scaled(values, 1000.0), nil
	case Wavenumber:
		return WavenumberToNm(values), nil
	case EnergyEV, EnergyKeV, EnergyMeV:
		return EnergyEVToNm(scaled(values, energyScale[from])), nil
	}
	if scale, ok := frequencyScale[from]; ok {
		return FrequencyToNm(values, scale), nil
	}
	return nil, fmt.Errorf("unsupported axis unit %q", from)
}

// FromNanometers converts the canonical nanometre axis into any supported
// display unit.
func FromNanometers(valuesNm []float64, to Unit) ([]float64, error) {
	switch to {
	case Nanometer, Unknown:
		out := make([]float64, len(valuesNm))
		copy(out, valuesNm)
		return out, nil
	case Angstrom:
		return scaled(valuesNm, 10.0), nil
	case Micron:
		return scaled(valuesNm, 0.001), nil
	case Wavenumber:
		return NmToWavenumber(valuesNm), nil
	case EnergyEV, EnergyKeV, EnergyMeV:
		return scaled(NmToEnergyEV(valuesNm), 1.0/energyScale[to]), nil
	}
	if scale, ok := frequencyScale[to]; ok {
		return NmToFrequency(valuesNm, scale), nil
	}
	return nil, fmt.Errorf("unsupported axis unit %q", to)
}
