package spectrum

import (
	"encoding/json"

	"spectrasuite/internal/provenance"
)

// ManifestEntry is the serialized form of a canonical spectrum inside an
// export manifest: enough to reconstruct the trace without re-running
// ingestion.
type ManifestEntry struct {
	Label           string             `json:"label"`
	WavelengthVacNm []float64          `json:"wavelength_vac_nm"`
	Values          []float64          `json:"values"`
	ValueMode       ValueMode          `json:"value_mode"`
	ValueUnit       string             `json:"value_unit,omitempty"`
	Metadata        TraceMetadata      `json:"metadata"`
	Provenance      []provenance.Event `json:"provenance"`
	SourceHash      string             `json:"source_hash,omitempty"`
	Uncertainties   []float64          `json:"uncertainties,omitempty"`
}

// ToManifestEntry captures the spectrum for export.
func (s *CanonicalSpectrum) ToManifestEntry() ManifestEntry {
	return ManifestEntry{
		Label:           s.Label,
		WavelengthVacNm: s.WavelengthVacNm,
		Values:          s.Values,
		ValueMode:       s.ValueMode,
		ValueUnit:       s.ValueUnit,
		Metadata:        s.Metadata,
		Provenance:      s.Provenance,
		SourceHash:      s.SourceHash,
		Uncertainties:   s.Uncertainties,
	}
}

// FromManifestEntry reconstructs a canonical spectrum from its serialized
// form.
func FromManifestEntry(entry ManifestEntry) *CanonicalSpectrum {
	mode := entry.ValueMode
	if mode == "" {
		mode = ModeFluxDensity
	}
	return &CanonicalSpectrum{
		Label:           entry.Label,
		WavelengthVacNm: entry.WavelengthVacNm,
		Values:          entry.Values,
		ValueMode:       mode,
		ValueUnit:       entry.ValueUnit,
		Metadata:        entry.Metadata,
		Provenance:      entry.Provenance,
		SourceHash:      entry.SourceHash,
		Uncertainties:   entry.Uncertainties,
	}
}

// DecodeManifestEntry parses a single serialized trace entry.
func DecodeManifestEntry(data []byte) (*CanonicalSpectrum, error) {
	var entry ManifestEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return FromManifestEntry(entry), nil
}
