package ingest

import (
	"spectrasuite/internal/provenance"
	"spectrasuite/internal/spectrum"
	"spectrasuite/internal/units"
)

const airCorrectionMethod = "edlen1966"

// Canonicalize rebases a pre-canonical result onto the vacuum-nanometer
// axis. Fixed step order: axis family/unit to nanometers, then the Edlén
// refractive-index correction when the axis was standard air. Each mutating
// step appends exactly one provenance event; identity steps append nothing,
// so feeding an already-canonical result back through adds no events. An
// axis of unknown unit is taken to be nanometers already.
func Canonicalize(result *Result) (*spectrum.CanonicalSpectrum, error) {
	wave := append([]float64(nil), result.Wave...)
	values := append([]float64(nil), result.Values...)
	var sigma []float64
	if result.Uncertainties != nil {
		sigma = append([]float64(nil), result.Uncertainties...)
	}
	events := append([]provenance.Event(nil), result.Events...)

	converted := false
	if result.WaveUnit != units.Unknown && result.WaveUnit != units.Nanometer {
		var err error
		wave, err = units.ToNanometers(wave, result.WaveUnit)
		if err != nil {
			return nil, Wrap(ErrParse, result.Filename, "convert", "axis conversion", err)
		}
		converted = true
	}

	if converted {
		events = append(events, provenance.New(provenance.UnitConvert{
			From: result.WaveUnitText,
			To:   string(units.Nanometer),
		}))
	}

	if result.IsAir {
		wave = units.AirToVacuum(wave)
		events = append(events, provenance.New(provenance.AirToVacuum{Method: airCorrectionMethod}))
	}

	// Inverse-family conversions can push edge samples to infinity.
	wave, values, sigma = filterFinitePairs(wave, values, sigma)

	metadata := result.Metadata
	switch metadata.WavelengthStandard {
	case spectrum.StandardAir, spectrum.StandardVacuum:
		metadata.WavelengthStandard = spectrum.StandardVacuum
	}

	mode := spectrum.ModeFluxDensity
	valueUnit := result.ValueUnit
	if valueUnit == "unknown" {
		valueUnit = ""
	}

	out := &spectrum.CanonicalSpectrum{
		Label:           result.Label,
		WavelengthVacNm: wave,
		Values:          values,
		ValueMode:       mode,
		ValueUnit:       valueUnit,
		Metadata:        metadata,
		Provenance:      events,
		SourceHash:      result.Hash,
		Uncertainties:   sigma,
	}
	if low, high, ok := out.WaveRange(); ok {
		out.Metadata.WaveRangeNm = &[2]float64{low, high}
	}
	if err := out.Validate(); err != nil {
		return nil, Wrap(ErrParse, result.Filename, "canonicalize", "", err)
	}
	return out, nil
}
