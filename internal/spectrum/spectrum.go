// Package spectrum defines the canonical spectral representation every
// ingestion path converges on: a vacuum-wavelength axis in nanometres, a
// flux array, optional uncertainties, trace metadata, and an ordered
// provenance log.
package spectrum

import (
	"fmt"
	"math"

	"spectrasuite/internal/provenance"
)

// ValueMode identifies what physical quantity the value array holds.
type ValueMode string

const (
	ModeFluxDensity       ValueMode = "flux_density"
	ModeRelativeIntensity ValueMode = "relative_intensity"
	ModeTransmission      ValueMode = "transmission"
	ModeAbsorbance        ValueMode = "absorbance"
	ModeOpticalDepth      ValueMode = "optical_depth"
)

// CanonicalSpectrum is the normalized form of one ingested trace. The array
// fields are value-immutable after construction; only the provenance log
// grows as the owning session applies further operations. Array ordering is
// opaque: it is preserved exactly as ingested and is not required to be
// monotonically increasing.
type CanonicalSpectrum struct {
	Label           string
	WavelengthVacNm []float64
	Values          []float64
	ValueMode       ValueMode
	ValueUnit       string
	Metadata        TraceMetadata
	Provenance      []provenance.Event
	SourceHash      string
	Uncertainties   []float64
}

// Validate enforces the structural invariant: equal-length finite arrays,
// with uncertainties (when present) matching too.
func (s *CanonicalSpectrum) Validate() error {
	if len(s.WavelengthVacNm) == 0 {
		return fmt.Errorf("spectrum %q has no samples", s.Label)
	}
	if len(s.WavelengthVacNm) != len(s.Values) {
		return fmt.Errorf("spectrum %q: wavelength and value lengths differ (%d vs %d)",
			s.Label, len(s.WavelengthVacNm), len(s.Values))
	}
	if s.Uncertainties != nil && len(s.Uncertainties) != len(s.Values) {
		return fmt.Errorf("spectrum %q: uncertainty length %d does not match %d samples",
			s.Label, len(s.Uncertainties), len(s.Values))
	}
	for i := range s.WavelengthVacNm {
		if !isFinite(s.WavelengthVacNm[i]) || !isFinite(s.Values[i]) {
			return fmt.Errorf("spectrum %q: non-finite sample at row %d", s.Label, i)
		}
	}
	return nil
}

// AppendEvent appends to the audit trail, preserving order.
func (s *CanonicalSpectrum) AppendEvent(event provenance.Event) {
	s.Provenance = append(s.Provenance, event)
}

// WaveRange returns the finite min/max of the wavelength axis regardless of
// ordering.
func (s *CanonicalSpectrum) WaveRange() (float64, float64, bool) {
	low := math.Inf(1)
	high := math.Inf(-1)
	found := false
	for _, nm := range s.WavelengthVacNm {
		if !isFinite(nm) {
			continue
		}
		found = true
		if nm < low {
			low = nm
		}
		if nm > high {
			high = nm
		}
	}
	if !found {
		return 0, 0, false
	}
	return low, high, true
}

// Fingerprint is the dedup key for this spectrum: content hash plus product
// id when known, display label otherwise.
func (s *CanonicalSpectrum) Fingerprint() (string, string) {
	identifier := s.Metadata.ProductID
	if identifier == "" {
		identifier = s.Label
	}
	return s.SourceHash, identifier
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
