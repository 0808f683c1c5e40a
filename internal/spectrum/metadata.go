package spectrum

// WavelengthStandard names the convention a wavelength axis was expressed in.
type WavelengthStandard string

const (
	StandardAir     WavelengthStandard = "air"
	StandardVacuum  WavelengthStandard = "vacuum"
	StandardUnknown WavelengthStandard = "unknown"
)

// ReferenceFrame names the velocity frame of an observation.
type ReferenceFrame string

const (
	FrameTopocentric  ReferenceFrame = "topocentric"
	FrameHeliocentric ReferenceFrame = "heliocentric"
	FrameBarycentric  ReferenceFrame = "barycentric"
	FrameUnknown      ReferenceFrame = "unknown"
	FrameNone         ReferenceFrame = "none"
)

// TraceMetadata carries everything known about a spectrum's origin. Ingestion
// populates it from headers; the archive merge step fills only fields still
// empty afterwards. Extra holds unrecognized but salvaged header fields.
type TraceMetadata struct {
	Provider           string             `json:"provider,omitempty"`
	ProductID          string             `json:"product_id,omitempty"`
	Title              string             `json:"title,omitempty"`
	Target             string             `json:"target,omitempty"`
	Instrument         string             `json:"instrument,omitempty"`
	Telescope          string             `json:"telescope,omitempty"`
	RA                 *float64           `json:"ra,omitempty"`
	Dec                *float64           `json:"dec,omitempty"`
	WaveRangeNm        *[2]float64        `json:"wave_range_nm,omitempty"`
	ResolvingPower     *float64           `json:"resolving_power,omitempty"`
	WavelengthStandard WavelengthStandard `json:"wavelength_standard,omitempty"`
	FluxUnits          string             `json:"flux_units,omitempty"`
	PipelineVersion    string             `json:"pipeline_version,omitempty"`
	Frame              ReferenceFrame     `json:"frame,omitempty"`
	RadialVelocityKms  *float64           `json:"radial_velocity_kms,omitempty"`
	URLs               map[string]string  `json:"urls,omitempty"`
	Citation           string             `json:"citation,omitempty"`
	DOI                string             `json:"doi,omitempty"`
	Extra              map[string]any     `json:"extra,omitempty"`
}

// EnsureMaps initializes the URL and Extra maps so merge steps never have to
// nil-check them.
func (m *TraceMetadata) EnsureMaps() {
	if m.URLs == nil {
		m.URLs = make(map[string]string)
	}
	if m.Extra == nil {
		m.Extra = make(map[string]any)
	}
}

// Float returns a pointer to the given value, for optional numeric fields.
func Float(v float64) *float64 { return &v }
