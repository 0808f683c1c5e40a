package spectrum_test

import (
	"encoding/json"
	"math"
	"testing"

	"spectrasuite/internal/provenance"
	"spectrasuite/internal/spectrum"
)

func sample() *spectrum.CanonicalSpectrum {
	return &spectrum.CanonicalSpectrum{
		Label:           "NGC 1275",
		WavelengthVacNm: []float64{656.4, 656.2, 486.2},
		Values:          []float64{1.0, 2.0, 3.0},
		ValueMode:       spectrum.ModeFluxDensity,
		ValueUnit:       "erg/s/cm2/A",
		Metadata: spectrum.TraceMetadata{
			Provider:           "upload",
			ProductID:          "abc123",
			WavelengthStandard: spectrum.StandardVacuum,
		},
		SourceHash: "abc123",
		Provenance: []provenance.Event{
			provenance.New(provenance.UnitConvert{From: "angstrom", To: "nm"}),
		},
	}
}

func TestValidateAcceptsNonMonotonicAxes(t *testing.T) {
	// Axis ordering is opaque: decreasing or multi-segment grids are valid.
	if err := sample().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsShapeAndFiniteViolations(t *testing.T) {
	s := sample()
	s.Values = s.Values[:2]
	if err := s.Validate(); err == nil {
		t.Fatal("length mismatch must fail validation")
	}

	s = sample()
	s.Values[1] = math.NaN()
	if err := s.Validate(); err == nil {
		t.Fatal("non-finite value must fail validation")
	}

	s = sample()
	s.Uncertainties = []float64{0.1}
	if err := s.Validate(); err == nil {
		t.Fatal("uncertainty length mismatch must fail validation")
	}
}

func TestWaveRangeIgnoresOrdering(t *testing.T) {
	low, high, ok := sample().WaveRange()
	if !ok || low != 486.2 || high != 656.4 {
		t.Fatalf("WaveRange = %g, %g, %v", low, high, ok)
	}
}

func TestFingerprintFallsBackToLabel(t *testing.T) {
	s := sample()
	hash, id := s.Fingerprint()
	if hash != "abc123" || id != "abc123" {
		t.Fatalf("Fingerprint = %q, %q", hash, id)
	}
	s.Metadata.ProductID = ""
	if _, id = s.Fingerprint(); id != "NGC 1275" {
		t.Fatalf("fallback identifier = %q", id)
	}
}

func TestManifestEntryRoundTrip(t *testing.T) {
	original := sample()
	original.Uncertainties = []float64{0.1, 0.2, 0.3}

	data, err := json.Marshal(original.ToManifestEntry())
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	restored, err := spectrum.DecodeManifestEntry(data)
	if err != nil {
		t.Fatalf("decode entry: %v", err)
	}

	if restored.Label != original.Label || restored.SourceHash != original.SourceHash {
		t.Fatalf("identity fields lost: %+v", restored)
	}
	if len(restored.WavelengthVacNm) != 3 || restored.WavelengthVacNm[2] != 486.2 {
		t.Fatalf("axis corrupted: %v", restored.WavelengthVacNm)
	}
	if len(restored.Provenance) != 1 {
		t.Fatalf("provenance lost: %v", restored.Provenance)
	}
	if _, ok := restored.Provenance[0].Payload.(provenance.UnitConvert); !ok {
		t.Fatalf("provenance payload type lost: %T", restored.Provenance[0].Payload)
	}
	if restored.Metadata.WavelengthStandard != spectrum.StandardVacuum {
		t.Fatalf("metadata corrupted: %+v", restored.Metadata)
	}
	if err := restored.Validate(); err != nil {
		t.Fatalf("restored spectrum invalid: %v", err)
	}
}
