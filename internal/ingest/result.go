package ingest

import (
	"regexp"
	"strings"

	"spectrasuite/internal/provenance"
	"spectrasuite/internal/spectrum"
	"spectrasuite/internal/units"
)

// Result is the pre-canonical outcome of one ingest path: arrays still in
// their detected unit, plus everything Canonicalize needs to finish the job.
type Result struct {
	Label         string
	Filename      string
	Wave          []float64
	Values        []float64
	Uncertainties []float64
	Family        units.Family
	WaveUnit      units.Unit
	WaveUnitText  string
	ValueUnit     string
	IsAir         bool
	Metadata      spectrum.TraceMetadata
	Hash          string
	Events        []provenance.Event
}

var (
	airHint    = regexp.MustCompile(`(?i)(^|[^a-z])air([^a-z]|$)`)
	vacuumHint = regexp.MustCompile(`(?i)(^|[^a-z])vac(uum)?([^a-z]|$)`)
)

// airMarked reports whether any of the given labels carries an "air" marker.
// An explicit vacuum marker wins over an air marker anywhere else.
func airMarked(labels ...string) bool {
	joined := strings.Join(labels, " ")
	if vacuumHint.MatchString(joined) {
		return false
	}
	return airHint.MatchString(joined)
}
