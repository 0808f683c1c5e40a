package ingest

import (
	"fmt"
	"math"
	"strings"

	"spectrasuite/internal/detect"
	"spectrasuite/internal/fitsio"
	"spectrasuite/internal/provenance"
	"spectrasuite/internal/spectrum"
	"spectrasuite/internal/textutil"
	"spectrasuite/internal/units"
)

// FITSOptions steer extension selection for multi-HDU files.
type FITSOptions struct {
	// HDU selects the extension to parse. Negative means auto-select, which
	// fails with ErrExtensionAmbiguous when more than one extension
	// qualifies.
	HDU int
}

// AutoHDU is the default extension selection.
var AutoHDU = FITSOptions{HDU: -1}

// Companion extension names, matched against EXTNAME case-insensitively.
var (
	wavelengthExtNames  = []string{"WAVELENGTH", "LAMBDA", "WAVE", "LOGLAM", "AWAV", "WAVEL"}
	uncertaintyExtNames = []string{"ERR", "ERROR", "UNC", "UNCERTAINTY", "SIG", "SIGMA", "IVAR", "VARIANCE", "STDEV"}
)

// LoadFITS parses a FITS container into a pre-canonical Result. Binary
// tables take the column path, images the dispersion-keyword path with a
// companion-extension fallback when the headers cannot reconstruct the axis.
func LoadFITS(raw []byte, filename string, opts FITSOptions) (*Result, error) {
	file, err := fitsio.Parse(raw)
	if err != nil {
		return nil, Wrap(ErrParse, filename, "parse", "", err)
	}

	selected, err := selectHDU(file, filename, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Filename: filename,
		Hash:     hashBytes(raw),
		Family:   units.FamilyWavelength,
		WaveUnit: units.Unknown,
	}

	var event provenance.IngestFITS
	event.Filename = filename
	event.HDUIndex = selected.Index
	event.ExtName = selected.Name
	event.Hash = result.Hash

	if selected.IsTable() {
		err = loadTableHDU(selected, result, &event)
	} else {
		err = loadImageHDU(file, selected, result, &event)
	}
	if err != nil {
		return nil, err
	}

	result.Wave, result.Values, result.Uncertainties = filterFinitePairs(result.Wave, result.Values, result.Uncertainties)
	if len(result.Wave) == 0 {
		// Invalid rows are dropped silently; only total loss of the axis is
		// a detection failure.
		return nil, Wrap(ErrDetection, filename, "filter", "no rows with a finite wavelength/flux pair", nil)
	}

	harvestHeaderMetadata(file, selected, result)

	result.WaveUnitText = string(result.WaveUnit)
	event.WaveUnit = result.WaveUnitText
	event.FluxUnit = result.ValueUnit
	event.IsAir = result.IsAir
	result.Events = append(result.Events, provenance.New(event))

	if result.Label == "" {
		result.Label = textutil.DeriveLabel(filename)
	}
	return result, nil
}

// selectHDU picks the extension carrying the spectrum. Companion wavelength
// and uncertainty extensions are never primary candidates; with several
// remaining candidates and no explicit choice the ambiguity is surfaced
// instead of guessed.
func selectHDU(file *fitsio.File, filename string, opts FITSOptions) (*fitsio.HDU, error) {
	if opts.HDU >= 0 {
		if opts.HDU >= len(file.HDUs) {
			return nil, Wrap(ErrParse, filename, "select",
				fmt.Sprintf("extension %d requested, file has %d", opts.HDU, len(file.HDUs)), nil)
		}
		hdu := &file.HDUs[opts.HDU]
		if !hdu.HasData() {
			return nil, Wrap(ErrParse, filename, "select",
				fmt.Sprintf("extension %d carries no data", opts.HDU), nil)
		}
		return hdu, nil
	}

	var candidates []*fitsio.HDU
	for i := range file.HDUs {
		hdu := &file.HDUs[i]
		if !hdu.HasData() || isCompanion(hdu.Name) {
			continue
		}
		candidates = append(candidates, hdu)
	}
	switch len(candidates) {
	case 0:
		return nil, Wrap(ErrParse, filename, "select", "no extension carries spectral data", nil)
	case 1:
		return candidates[0], nil
	}
	names := make([]string, len(candidates))
	for i, hdu := range candidates {
		name := hdu.Name
		if name == "" {
			name = "unnamed"
		}
		names[i] = fmt.Sprintf("%d (%s)", hdu.Index, name)
	}
	return nil, Wrap(ErrExtensionAmbiguous, filename, "select",
		"multiple data extensions, pick one: "+strings.Join(names, ", "), nil)
}

func isCompanion(extname string) bool {
	upper := strings.ToUpper(strings.TrimSpace(extname))
	for _, name := range append(append([]string(nil), wavelengthExtNames...), uncertaintyExtNames...) {
		if upper == name {
			return true
		}
	}
	return false
}

// loadTableHDU takes the explicit-column path: the detector runs over the
// table's numeric columns, log-wavelength grids are exponentiated, and an
// inverse-variance column becomes a standard-deviation channel.
func loadTableHDU(hdu *fitsio.HDU, result *Result, event *provenance.IngestFITS) error {
	columns := make([]detect.Column, 0, len(hdu.Table.Columns))
	for _, col := range hdu.Table.Columns {
		if !col.Numeric || col.Repeat != 1 {
			continue
		}
		columns = append(columns, detect.Column{Name: col.Name, Values: col.Values, Numeric: true})
	}
	detection, err := detect.Detect(columns)
	if err != nil {
		return Wrap(ErrDetection, result.Filename, "detect", "", err)
	}

	waveCol, _ := hdu.Table.Column(detection.WaveColumn)
	fluxCol, _ := hdu.Table.Column(detection.FluxColumn)
	if waveCol == nil || fluxCol == nil {
		return Wrap(ErrDetection, result.Filename, "detect", "detected columns missing from table", nil)
	}

	wave := append([]float64(nil), waveCol.Values...)
	logGrid := isLogWavelengthLabel(waveCol.Name)
	if logGrid {
		for i, v := range wave {
			wave[i] = math.Pow(10, v)
		}
	}

	unit := detection.WaveUnit
	if parsed, ok := units.Parse(waveCol.Unit); ok {
		unit = parsed
	}
	if unit == units.Unknown && logGrid {
		// Log-lambda grids are conventionally log10 of angstroms.
		unit = units.Angstrom
	}

	result.Wave = wave
	result.Values = append([]float64(nil), fluxCol.Values...)
	result.WaveUnit = unit
	result.Family = unit.Family()
	result.ValueUnit = fluxCol.Unit
	if result.ValueUnit == "" && detection.FluxUnitText != "unknown" {
		result.ValueUnit = detection.FluxUnitText
	}
	result.IsAir = airMarked(waveCol.Name, waveCol.Unit)

	if detection.UncertaintyColumn != "" {
		if uncCol, ok := hdu.Table.Column(detection.UncertaintyColumn); ok {
			result.Uncertainties = uncertaintyFromColumn(uncCol.Name, uncCol.Values)
			event.UncertaintyColumn = uncCol.Name
		}
	}

	event.WaveSource = "column"
	event.WaveColumn = waveCol.Name
	return nil
}

// loadImageHDU reconstructs the axis from linear dispersion keywords, or
// from a companion wavelength extension when the keywords are missing.
func loadImageHDU(file *fitsio.File, hdu *fitsio.HDU, result *Result, event *provenance.IngestFITS) error {
	flux := append([]float64(nil), hdu.Image...)
	header := hdu.Header

	crval, hasCRVAL := header.Float("CRVAL1")
	cdelt, hasCDELT := header.Float("CDELT1")
	if !hasCDELT {
		cdelt, hasCDELT = header.Float("CD1_1")
	}
	crpix, hasCRPIX := header.Float("CRPIX1")
	if !hasCRPIX {
		crpix = 1
	}
	ctype := strings.ToUpper(header.Str("CTYPE1"))
	cunit := header.Str("CUNIT1")

	switch {
	case hasCRVAL && hasCDELT:
		wave := make([]float64, len(flux))
		for i := range wave {
			wave[i] = crval + (float64(i)+1-crpix)*cdelt
		}
		if strings.HasPrefix(ctype, "LOG") {
			for i := range wave {
				wave[i] = math.Pow(10, wave[i])
			}
		}
		result.Wave = wave
		event.WaveSource = "wcs"
		event.WCS = &provenance.WCSKeywords{
			CRVAL1: crval, CDELT1: cdelt, CRPIX1: crpix,
			CTYPE1: header.Str("CTYPE1"), CUNIT1: cunit,
		}
	default:
		companion := findCompanionImage(file, hdu.Index, wavelengthExtNames, len(flux))
		if companion == nil {
			return Wrap(ErrParse, result.Filename, "wcs",
				"no linear dispersion keywords and no companion wavelength extension", nil)
		}
		wave := append([]float64(nil), companion.Image...)
		if isLogWavelengthLabel(companion.Name) {
			for i := range wave {
				wave[i] = math.Pow(10, wave[i])
			}
		}
		result.Wave = wave
		event.WaveSource = "companion"
		event.WaveColumn = companion.Name
		if cunit == "" {
			cunit = companion.Header.Str("CUNIT1")
		}
	}

	unit := units.Unknown
	if parsed, ok := units.Parse(cunit); ok {
		unit = parsed
	}
	if unit == units.Unknown {
		// Image spectra overwhelmingly carry angstrom axes when unlabeled.
		unit = units.Angstrom
	}
	result.WaveUnit = unit
	result.Family = unit.Family()
	result.Values = flux
	result.ValueUnit = header.Str("BUNIT")
	result.IsAir = airAxisFromHeader(header, ctype, cunit)

	if sigmaHDU := findCompanionImage(file, hdu.Index, uncertaintyExtNames, len(flux)); sigmaHDU != nil {
		result.Uncertainties = uncertaintyFromColumn(sigmaHDU.Name, sigmaHDU.Image)
		event.UncertaintyColumn = sigmaHDU.Name
	}
	return nil
}

// findCompanionImage locates an image extension by EXTNAME with a matching
// sample count.
func findCompanionImage(file *fitsio.File, selfIndex int, names []string, length int) *fitsio.HDU {
	for i := range file.HDUs {
		hdu := &file.HDUs[i]
		if hdu.Index == selfIndex || hdu.IsTable() || len(hdu.Image) != length {
			continue
		}
		upper := strings.ToUpper(strings.TrimSpace(hdu.Name))
		for _, name := range names {
			if upper == name {
				return hdu
			}
		}
	}
	return nil
}

// isLogWavelengthLabel recognizes log-wavelength grids by label.
func isLogWavelengthLabel(name string) bool {
	for _, token := range textutil.Tokens(name) {
		if token == "loglam" || token == "logwave" || token == "loglambda" {
			return true
		}
	}
	return false
}

// uncertaintyFromColumn converts the stored channel to standard deviations:
// inverse variance becomes 1/sqrt(ivar) with nonpositive values mapped to
// NaN, variance takes a square root, anything else passes through.
func uncertaintyFromColumn(name string, values []float64) []float64 {
	tokens := textutil.TokenSet(name)
	out := make([]float64, len(values))
	switch {
	case hasAny(tokens, "ivar"):
		for i, v := range values {
			if v > 0 {
				out[i] = 1 / math.Sqrt(v)
			} else {
				out[i] = math.NaN()
			}
		}
	case hasAny(tokens, "variance", "var"):
		for i, v := range values {
			if v >= 0 {
				out[i] = math.Sqrt(v)
			} else {
				out[i] = math.NaN()
			}
		}
	default:
		copy(out, values)
	}
	return out
}

// airAxisFromHeader resolves the wavelength standard from the dispersion
// keywords: AWAV ctype means air, WAVE means vacuum, with AIRORVAC and
// VACUUM cards and unit text as fallbacks.
func airAxisFromHeader(header fitsio.Header, ctype, cunit string) bool {
	switch {
	case strings.HasPrefix(ctype, "AWAV"):
		return true
	case strings.HasPrefix(ctype, "WAVE"):
		return false
	}
	if v := strings.ToLower(header.Str("AIRORVAC")); v != "" {
		return strings.HasPrefix(v, "air")
	}
	if vacuum, ok := header.Logical("VACUUM"); ok {
		return !vacuum
	}
	return airMarked(cunit)
}

// harvestHeaderMetadata populates trace metadata from the primary and
// selected headers, with the selected extension taking precedence.
func harvestHeaderMetadata(file *fitsio.File, selected *fitsio.HDU, result *Result) {
	headers := []fitsio.Header{selected.Header}
	if selected.Index != 0 {
		headers = append(headers, file.HDUs[0].Header)
	}

	str := func(key string) string {
		for _, h := range headers {
			if v := strings.TrimSpace(h.Str(key)); v != "" {
				return v
			}
		}
		return ""
	}
	num := func(key string) (float64, bool) {
		for _, h := range headers {
			if v, ok := h.Float(key); ok {
				return v, true
			}
		}
		return 0, false
	}

	m := &result.Metadata
	m.Target = str("OBJECT")
	m.Instrument = str("INSTRUME")
	m.Telescope = str("TELESCOP")
	if v, ok := num("RA"); ok {
		m.RA = spectrum.Float(v)
	}
	if v, ok := num("DEC"); ok {
		m.Dec = spectrum.Float(v)
	}
	if v, ok := num("SPEC_RES"); ok {
		m.ResolvingPower = spectrum.Float(v)
	} else if v, ok := num("RESOLUT"); ok {
		m.ResolvingPower = spectrum.Float(v)
	}
	if v := str("PIPEVERS"); v != "" {
		m.PipelineVersion = v
	} else if v := str("VERSION"); v != "" {
		m.PipelineVersion = v
	}
	m.Frame = normalizeFrame(str("SPECSYS"))
	if v, ok := num("VHELIO"); ok {
		m.RadialVelocityKms = spectrum.Float(v)
	} else if v, ok := num("VRAD"); ok {
		m.RadialVelocityKms = spectrum.Float(v)
	}
	for key, field := range map[string]string{
		"OBSERVER": "observer",
		"EXPTIME":  "exptime",
		"DATE-OBS": "date_obs",
	} {
		if v := str(key); v != "" && !textutil.IsNullLike(v) {
			m.EnsureMaps()
			m.Extra[field] = v
		}
	}

	if m.WavelengthStandard == "" {
		if result.IsAir {
			m.WavelengthStandard = spectrum.StandardAir
		} else {
			m.WavelengthStandard = spectrum.StandardVacuum
		}
	}
	if m.FluxUnits == "" {
		m.FluxUnits = result.ValueUnit
	}
	if result.Label == "" {
		result.Label = m.Target
	}
}

// normalizeFrame maps SPECSYS spellings onto the frame vocabulary.
func normalizeFrame(specsys string) spectrum.ReferenceFrame {
	switch strings.ToUpper(strings.TrimSpace(specsys)) {
	case "":
		return ""
	case "TOPOCENT":
		return spectrum.FrameTopocentric
	case "HELIOCEN":
		return spectrum.FrameHeliocentric
	case "BARYCENT":
		return spectrum.FrameBarycentric
	}
	return spectrum.FrameUnknown
}
