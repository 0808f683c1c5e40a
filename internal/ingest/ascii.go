package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"spectrasuite/internal/detect"
	"spectrasuite/internal/provenance"
	"spectrasuite/internal/spectrum"
	"spectrasuite/internal/textutil"
)

// LoadASCII parses a delimited text table into a pre-canonical Result. The
// delimiter is sniffed, `#` lines are comments, and a file whose first row is
// entirely numeric is treated as headerless with synthetic column names.
func LoadASCII(raw []byte, filename string) (*Result, error) {
	text := strings.TrimPrefix(string(raw), "\uFEFF")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil, Wrap(ErrParse, filename, "scan", "need a header or data plus at least one row", nil)
	}

	delim := sniffDelimiter(lines[0])
	first := splitRow(lines[0], delim)

	headerless := true
	for _, cell := range first {
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			headerless = false
			break
		}
	}

	var names []string
	dataLines := lines
	if headerless {
		names = make([]string, len(first))
		for i := range first {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	} else {
		names = first
		dataLines = lines[1:]
	}
	if len(dataLines) == 0 {
		return nil, Wrap(ErrParse, filename, "scan", "header without data rows", nil)
	}

	rows := make([][]string, len(dataLines))
	for r, line := range dataLines {
		cells := splitRow(line, delim)
		row := make([]string, len(names))
		copy(row, cells)
		rows[r] = row
	}

	columns := buildColumns(names, rows)

	detection, err := detect.Detect(columns)
	if err != nil {
		return nil, Wrap(ErrDetection, filename, "detect", "", err)
	}
	detection.Headerless = headerless

	wave := columnValues(columns, detection.WaveColumn)
	flux := columnValues(columns, detection.FluxColumn)
	var sigma []float64
	if detection.UncertaintyColumn != "" {
		sigma = columnValues(columns, detection.UncertaintyColumn)
	}

	rowsTotal := len(rows)
	wave, flux, sigma = filterFinitePairs(wave, flux, sigma)
	if len(wave) == 0 {
		// Invalid rows are dropped silently; only total loss of the axis is
		// a detection failure.
		return nil, Wrap(ErrDetection, filename, "filter", "no rows with a finite wavelength/flux pair", nil)
	}

	metadata := harvestColumnMetadata(columns, rows)
	isAir := airMarked(detection.WaveColumn, detection.WaveUnitText)
	if isAir {
		metadata.WavelengthStandard = spectrum.StandardAir
	} else {
		metadata.WavelengthStandard = spectrum.StandardVacuum
	}
	if detection.FluxUnitText != "unknown" {
		metadata.FluxUnits = detection.FluxUnitText
	}

	hash := hashBytes(raw)
	label := metadata.Target
	if label == "" {
		label = textutil.DeriveLabel(filename)
	}

	event := provenance.New(provenance.IngestASCII{
		Filename:          filename,
		WaveColumn:        detection.WaveColumn,
		FluxColumn:        detection.FluxColumn,
		UncertaintyColumn: detection.UncertaintyColumn,
		AxisFamily:        string(detection.Family),
		WaveUnit:          detection.WaveUnitText,
		FluxUnit:          detection.FluxUnitText,
		IsAir:             isAir,
		Method:            detection.Method,
		Headerless:        headerless,
		RowsTotal:         rowsTotal,
		RowsRetained:      len(wave),
		Hash:              hash,
	})

	return &Result{
		Label:         label,
		Filename:      filename,
		Wave:          wave,
		Values:        flux,
		Uncertainties: sigma,
		Family:        detection.Family,
		WaveUnit:      detection.WaveUnit,
		WaveUnitText:  detection.WaveUnitText,
		ValueUnit:     detection.FluxUnitText,
		IsAir:         isAir,
		Metadata:      metadata,
		Hash:          hash,
		Events:        []provenance.Event{event},
	}, nil
}

// sniffDelimiter picks the separator with the most hits on the first row;
// whitespace is the fallback.
func sniffDelimiter(line string) rune {
	best := rune(0)
	bestCount := 0
	for _, candidate := range []rune{',', '\t', ';'} {
		if n := strings.Count(line, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func splitRow(line string, delim rune) []string {
	var cells []string
	if delim == 0 {
		cells = strings.Fields(line)
	} else {
		cells = strings.Split(line, string(delim))
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// buildColumns transposes rows into detect.Column values. A cell that fails
// to parse becomes NaN; a column is numeric when at least half its cells
// parse.
func buildColumns(names []string, rows [][]string) []detect.Column {
	columns := make([]detect.Column, len(names))
	for c, name := range names {
		values := make([]float64, len(rows))
		parsed := 0
		for r := range rows {
			v, err := strconv.ParseFloat(rows[r][c], 64)
			if err != nil {
				values[r] = math.NaN()
				continue
			}
			values[r] = v
			parsed++
		}
		columns[c] = detect.Column{
			Name:    name,
			Values:  values,
			Numeric: parsed > 0 && parsed*2 >= len(rows),
		}
	}
	return columns
}

func columnValues(columns []detect.Column, name string) []float64 {
	for _, col := range columns {
		if col.Name == name {
			return col.Values
		}
	}
	return nil
}

// filterFinitePairs drops rows lacking a finite wavelength/flux pair, keeping
// the uncertainty channel in lockstep.
func filterFinitePairs(wave, flux, sigma []float64) ([]float64, []float64, []float64) {
	outWave := make([]float64, 0, len(wave))
	outFlux := make([]float64, 0, len(flux))
	var outSigma []float64
	if sigma != nil {
		outSigma = make([]float64, 0, len(sigma))
	}
	for i := range wave {
		if i >= len(flux) {
			break
		}
		if !finite(wave[i]) || !finite(flux[i]) {
			continue
		}
		outWave = append(outWave, wave[i])
		outFlux = append(outFlux, flux[i])
		if outSigma != nil && i < len(sigma) {
			outSigma = append(outSigma, sigma[i])
		}
	}
	return outWave, outFlux, outSigma
}

// harvestColumnMetadata lifts target/instrument/telescope columns into
// metadata fields and parks other recognized columns in Extra, skipping
// null-like cell values.
func harvestColumnMetadata(columns []detect.Column, rows [][]string) spectrum.TraceMetadata {
	var metadata spectrum.TraceMetadata
	for c, col := range columns {
		if !detect.IsMetadataColumn(col.Name) {
			continue
		}
		value := ""
		for r := range rows {
			if !textutil.IsNullLike(rows[r][c]) {
				value = strings.TrimSpace(rows[r][c])
				break
			}
		}
		if value == "" {
			continue
		}
		tokens := textutil.TokenSet(col.Name)
		switch {
		case hasAny(tokens, "target", "object", "name"):
			if metadata.Target == "" {
				metadata.Target = value
			}
		case hasAny(tokens, "instrument"):
			metadata.Instrument = value
		case hasAny(tokens, "telescope"):
			metadata.Telescope = value
		default:
			metadata.EnsureMaps()
			metadata.Extra[textutil.Slug(col.Name)] = value
		}
	}
	return metadata
}

func hasAny(set map[string]struct{}, keys ...string) bool {
	for _, key := range keys {
		if _, ok := set[key]; ok {
			return true
		}
	}
	return false
}

func hashBytes(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
