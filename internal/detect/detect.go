package detect

import (
	"fmt"
	"math"
	"strings"

	"spectrasuite/internal/textutil"
	"spectrasuite/internal/units"
)

// Column is one named column of parsed values. Values holds NaN where a cell
// was not numeric; a column with no parseable cells has Numeric == false.
type Column struct {
	Name    string
	Values  []float64
	Numeric bool
}

// Detection is the detector's verdict. Column fields carry the raw header
// names so provenance can cite them verbatim; units are canonical tokens with
// "unknown" where nothing could be established.
type Detection struct {
	WaveColumn        string
	FluxColumn        string
	UncertaintyColumn string
	Family            units.Family
	WaveUnit          units.Unit
	WaveUnitText      string
	FluxUnitText      string
	Method            string
	Headerless        bool
}

// Failure reports exhaustion of every detection tier.
type Failure struct {
	Columns []string
	Tried   []string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("no usable wavelength/flux axis (columns: %s; tried: %s)",
		strings.Join(f.Columns, ", "), strings.Join(f.Tried, ", "))
}

// Detect runs the tiered strategy over the given columns.
func Detect(columns []Column) (Detection, error) {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}

	// Uncertainty exclusion pass: error channels must never win a
	// wavelength or flux role, whatever order they appear in.
	uncertaintyIdx := make([]int, 0, 2)
	candidates := make([]int, 0, len(columns))
	for i, col := range columns {
		switch classify(col.Name) {
		case RoleUncertainty:
			uncertaintyIdx = append(uncertaintyIdx, i)
		case RoleMetadata:
			// harvested elsewhere; not an axis candidate
		default:
			candidates = append(candidates, i)
		}
	}
	uncertainty := pickUncertainty(columns, uncertaintyIdx)

	det := Detection{
		UncertaintyColumn: uncertainty,
		Family:            units.FamilyWavelength,
		WaveUnit:          units.Unknown,
		WaveUnitText:      "unknown",
		FluxUnitText:      "unknown",
	}

	waveIdx, waveMethod := findWave(columns, candidates)
	fluxIdx, fluxMethod := findFlux(columns, candidates, waveIdx)

	if waveIdx < 0 || fluxIdx < 0 {
		return Detection{}, &Failure{
			Columns: names,
			Tried:   []string{MethodAliases, MethodUnitHint, MethodNumericHeuristic},
		}
	}

	det.WaveColumn = columns[waveIdx].Name
	det.FluxColumn = columns[fluxIdx].Name
	det.Method = weakerMethod(waveMethod, fluxMethod)

	if det.Method != MethodNumericHeuristic {
		if unit, ok := waveUnitFor(columns[waveIdx].Name); ok {
			det.WaveUnit = unit
			det.WaveUnitText = string(unit)
			det.Family = unit.Family()
		}
		if text, ok := textutil.BracketedUnit(columns[fluxIdx].Name); ok {
			det.FluxUnitText = textutil.CanonicalUnit(text)
		}
	}
	// The numeric tier reports "unknown" units so placeholder column names
	// never leak into user-facing metadata.

	return det, nil
}

// IsMetadataColumn reports whether a header label names a harvestable
// metadata column (target, instrument, telescope and friends) rather than a
// data axis.
func IsMetadataColumn(name string) bool {
	return classify(name) == RoleMetadata
}

// classify assigns the static role of a header label, before any scoring.
func classify(name string) Role {
	tokens := textutil.Tokens(textutil.StripUnitAnnotation(name))
	hasUncertainty := false
	hasMetadata := false
	for _, token := range tokens {
		if _, ok := uncertaintyTokens[token]; ok {
			hasUncertainty = true
		}
		if _, ok := metadataTokens[token]; ok {
			hasMetadata = true
		}
	}
	switch {
	case hasUncertainty:
		return RoleUncertainty
	case hasMetadata:
		return RoleMetadata
	default:
		return RoleUnrecognized
	}
}

// pickUncertainty chooses the final uncertainty channel: flux-associated
// columns first, then anything not wavelength-associated, then the first.
func pickUncertainty(columns []Column, idx []int) string {
	if len(idx) == 0 {
		return ""
	}
	association := func(i int) int {
		for _, token := range textutil.Tokens(textutil.StripUnitAnnotation(columns[i].Name)) {
			if _, ok := fluxTokens[token]; ok {
				return 0
			}
		}
		for _, token := range textutil.Tokens(textutil.StripUnitAnnotation(columns[i].Name)) {
			if _, ok := waveTokens[token]; ok {
				return 2
			}
		}
		return 1
	}
	best := idx[0]
	for _, i := range idx[1:] {
		if association(i) < association(best) {
			best = i
		}
	}
	return columns[best].Name
}

// score computes the alias-match score of a column for one role vocabulary.
// Exact/priority matches on the joined slug outrank token overlap, and any
// uncertainty-like token drags the score down.
func score(name string, vocab map[string]int) int {
	stripped := textutil.StripUnitAnnotation(name)
	tokens := textutil.Tokens(stripped)
	joined := strings.Join(tokens, "")

	total := 0
	if weight, ok := vocab[joined]; ok {
		total += weight + 2 // exact vocabulary spelling once rejoined
	}
	for _, token := range tokens {
		if weight, ok := vocab[token]; ok {
			total += weight
		}
		if _, ok := uncertaintyTokens[token]; ok {
			total -= 4
		}
	}
	return total
}

// bestMatch returns the index with the highest positive score, or -1 when no
// column scores or the maximum is ambiguous (shared by two columns).
func bestMatch(columns []Column, candidates []int, vocab map[string]int, exclude int) int {
	best, bestScore, ties := -1, 0, 0
	for _, i := range candidates {
		if i == exclude {
			continue
		}
		s := score(columns[i].Name, vocab)
		if s <= 0 {
			continue
		}
		switch {
		case s > bestScore:
			best, bestScore, ties = i, s, 1
		case s == bestScore:
			ties++
		}
	}
	if ties > 1 {
		return -1
	}
	return best
}

func findWave(columns []Column, candidates []int) (int, string) {
	if idx := bestMatch(columns, candidates, waveTokens, -1); idx >= 0 {
		return idx, MethodAliases
	}
	if idx := unitHintWave(columns, candidates); idx >= 0 {
		return idx, MethodUnitHint
	}
	if idx := monotonicColumn(columns, candidates); idx >= 0 {
		return idx, MethodNumericHeuristic
	}
	return -1, ""
}

func findFlux(columns []Column, candidates []int, waveIdx int) (int, string) {
	if idx := bestMatch(columns, candidates, fluxTokens, waveIdx); idx >= 0 {
		return idx, MethodAliases
	}
	if idx := unitHintFlux(columns, candidates, waveIdx); idx >= 0 {
		return idx, MethodUnitHint
	}
	// Numeric fallback: the remaining numeric column is the flux channel.
	for _, i := range candidates {
		if i != waveIdx && columns[i].Numeric {
			return i, MethodNumericHeuristic
		}
	}
	return -1, ""
}

// unitHintWave assigns the wavelength role from a bracketed unit annotation
// belonging to any spectral axis family (wavelength, wavenumber, frequency,
// energy).
func unitHintWave(columns []Column, candidates []int) int {
	for _, i := range candidates {
		text, ok := textutil.BracketedUnit(columns[i].Name)
		if !ok {
			continue
		}
		if _, parsed := units.Parse(text); parsed {
			return i
		}
	}
	return -1
}

// unitHintFlux assigns the flux role from a bracketed annotation naming a
// known flux unit (erg, Jy, photons, arbitrary, ...).
func unitHintFlux(columns []Column, candidates []int, waveIdx int) int {
	for _, i := range candidates {
		if i == waveIdx {
			continue
		}
		text, ok := textutil.BracketedUnit(columns[i].Name)
		if !ok {
			continue
		}
		canonical := textutil.CanonicalUnit(text)
		for _, piece := range strings.FieldsFunc(canonical, func(r rune) bool {
			return r == '/' || r == ' ' || r == '*' || r == '.'
		}) {
			if _, ok := fluxUnitWords[piece]; ok {
				return i
			}
		}
	}
	return -1
}

// monotonicColumn finds a strictly monotonic (increasing or decreasing)
// finite ramp, the numeric-heuristic signature of a dispersion axis.
func monotonicColumn(columns []Column, candidates []int) int {
	for _, i := range candidates {
		if isMonotonic(columns[i].Values) {
			return i
		}
	}
	return -1
}

func isMonotonic(values []float64) bool {
	if len(values) < 2 {
		return false
	}
	increasing, decreasing := true, true
	for j := 1; j < len(values); j++ {
		a, b := values[j-1], values[j]
		if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			return false
		}
		if b <= a {
			increasing = false
		}
		if b >= a {
			decreasing = false
		}
	}
	return increasing || decreasing
}

// waveUnitFor infers the wavelength unit of a detected axis column: the
// bracketed annotation wins, then a unit word embedded in the label itself
// ("wavelength_nm").
func waveUnitFor(name string) (units.Unit, bool) {
	if text, ok := textutil.BracketedUnit(name); ok {
		if unit, parsed := units.Parse(text); parsed {
			return unit, true
		}
	}
	for _, token := range textutil.Tokens(textutil.StripUnitAnnotation(name)) {
		if unit, parsed := units.Parse(token); parsed {
			return unit, true
		}
	}
	return units.Unknown, false
}

// weakerMethod returns the lower-precedence of two tier names, so mixed
// detections report the weakest tier that was needed.
func weakerMethod(a, b string) string {
	rank := map[string]int{MethodAliases: 0, MethodUnitHint: 1, MethodNumericHeuristic: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
