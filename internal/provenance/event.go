package provenance

import "time"

// Kind tags the event variants.
type Kind string

const (
	KindIngestASCII         Kind = "ingest_ascii"
	KindIngestFITS          Kind = "ingest_fits"
	KindUnitConvert         Kind = "unit_convert"
	KindAirToVacuum         Kind = "air_to_vacuum"
	KindFetchArchiveProduct Kind = "fetch_archive_product"
	KindResolutionMatch     Kind = "resolution_match"
	KindDifferential        Kind = "differential"
)

// Payload is implemented by every event parameter variant.
type Payload interface {
	EventKind() Kind
}

// Event is one immutable, ordered entry in a spectrum's audit trail. Events
// are appended, never mutated or removed.
type Event struct {
	Kind    Kind
	Time    time.Time
	Note    string
	Payload Payload
}

// New builds an event stamped with the current UTC time.
func New(payload Payload) Event {
	return Event{Kind: payload.EventKind(), Time: time.Now().UTC(), Payload: payload}
}

// NewNote builds an event carrying a free-form audit note.
func NewNote(payload Payload, note string) Event {
	event := New(payload)
	event.Note = note
	return event
}

// IngestASCII records the full detection outcome of an ASCII ingestion.
type IngestASCII struct {
	Filename          string `json:"filename"`
	WaveColumn        string `json:"wave_column"`
	FluxColumn        string `json:"flux_column"`
	UncertaintyColumn string `json:"uncertainty_column,omitempty"`
	AxisFamily        string `json:"axis_family"`
	WaveUnit          string `json:"wave_unit"`
	FluxUnit          string `json:"flux_unit"`
	IsAir             bool   `json:"is_air"`
	Method            string `json:"detection_method"`
	Headerless        bool   `json:"headerless"`
	RowsTotal         int    `json:"rows_total"`
	RowsRetained      int    `json:"rows_retained"`
	Hash              string `json:"hash"`
}

func (IngestASCII) EventKind() Kind { return KindIngestASCII }

// WCSKeywords captures the dispersion-solution keywords consumed when
// reconstructing a wavelength axis from an image extension.
type WCSKeywords struct {
	CRVAL1 float64 `json:"crval1"`
	CDELT1 float64 `json:"cdelt1"`
	CRPIX1 float64 `json:"crpix1"`
	CTYPE1 string  `json:"ctype1,omitempty"`
	CUNIT1 string  `json:"cunit1,omitempty"`
}

// IngestFITS records the extension selection and axis reconstruction of a
// binary-table/image ingestion.
type IngestFITS struct {
	Filename          string       `json:"filename"`
	HDUIndex          int          `json:"hdu_index"`
	ExtName           string       `json:"extname"`
	WaveSource        string       `json:"wave_source"` // column, wcs, companion
	WaveColumn        string       `json:"wave_column,omitempty"`
	UncertaintyColumn string       `json:"uncertainty_column,omitempty"`
	WaveUnit          string       `json:"wavelength_unit"`
	FluxUnit          string       `json:"flux_unit"`
	IsAir             bool         `json:"is_air"`
	WCS               *WCSKeywords `json:"wcs,omitempty"`
	Hash              string       `json:"hash"`
}

func (IngestFITS) EventKind() Kind { return KindIngestFITS }

// UnitConvert records a non-identity axis unit conversion.
type UnitConvert struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (UnitConvert) EventKind() Kind { return KindUnitConvert }

// AirToVacuum records the refractive-index correction applied to an air
// wavelength axis.
type AirToVacuum struct {
	Method string `json:"method"`
}

func (AirToVacuum) EventKind() Kind { return KindAirToVacuum }

// FetchArchiveProduct records that a spectrum originated from an archive
// download rather than a local upload.
type FetchArchiveProduct struct {
	Provider  string `json:"provider"`
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
}

func (FetchArchiveProduct) EventKind() Kind { return KindFetchArchiveProduct }

// ResolutionMatch records a Gaussian resolution-matching convolution.
type ResolutionMatch struct {
	TargetResolution float64 `json:"target_resolution"`
	KernelSigmaPx    float64 `json:"kernel_sigma_px"`
}

func (ResolutionMatch) EventKind() Kind { return KindResolutionMatch }

// Differential records a differential operation between two traces. The core
// never emits it; replayed manifests may carry it.
type Differential struct {
	Operation string `json:"operation"`
	OperandA  string `json:"operand_a"`
	OperandB  string `json:"operand_b"`
}

func (Differential) EventKind() Kind { return KindDifferential }

// Generic preserves events of kinds this build does not know, so replaying a
// newer manifest loses nothing.
type Generic struct {
	Step   Kind           `json:"-"`
	Params map[string]any `json:"-"`
}

func (g Generic) EventKind() Kind { return g.Step }
