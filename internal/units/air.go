package units

// RefractiveIndexEdlen evaluates the Edlén (1966) empirical refractive index
// of standard air at the given vacuum-adjacent wavelength in nm. The
// polynomial is expressed in inverse-squared wavenumber (sigma^2, um^-2).
func RefractiveIndexEdlen(wavelengthNm float64) float64 {
	wavelengthUm := wavelengthNm / 1000.0
	sigma2 := (1.0 / wavelengthUm) * (1.0 / wavelengthUm)
	term := 8342.13 + 2406030.0/(130.0-sigma2) + 15997.0/(38.9-sigma2)
	return 1.0 + term*1e-8
}

// AirToVacuum converts air wavelengths in nm to vacuum wavelengths using the
// Edlén refractive index. Vacuum wavelengths are always longer than their air
// counterparts for physically valid optical input.
func AirToVacuum(wavelengthAirNm []float64) []float64 {
	out := make([]float64, len(wavelengthAirNm))
	for i, nm := range wavelengthAirNm {
		out[i] = nm * RefractiveIndexEdlen(nm)
	}
	return out
}

// VacuumToAir inverts AirToVacuum to first order by evaluating the index at
// the vacuum wavelength, the same convention the ingestion sources use.
func VacuumToAir(wavelengthVacNm []float64) []float64 {
	out := make([]float64, len(wavelengthVacNm))
	for i, nm := range wavelengthVacNm {
		out[i] = nm / RefractiveIndexEdlen(nm)
	}
	return out
}

// DopplerShift applies a first-order (non-relativistic) Doppler shift:
// lambda * (1 + v/c) with the velocity in km/s.
func DopplerShift(wavelengthNm []float64, velocityKms float64) []float64 {
	factor := 1.0 + velocityKms/SpeedOfLightKms
	return scaled(wavelengthNm, factor)
}
