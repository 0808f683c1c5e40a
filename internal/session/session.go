// Package session owns the live trace collection: registration with
// duplicate fingerprint checks, visibility state, display preferences, and
// the ingest entry points that run a file through detection,
// canonicalization, and registration in one call.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"

	"spectrasuite/internal/ingest"
	"spectrasuite/internal/spectrum"
	"spectrasuite/internal/textutil"
	"spectrasuite/internal/units"
)

// DisplayMode names how the value axis is presented.
type DisplayMode string

const (
	DisplayFlux         DisplayMode = "flux"
	DisplayTransmission DisplayMode = "transmission"
	DisplayAbsorbance   DisplayMode = "absorbance"
	DisplayOpticalDepth DisplayMode = "optical_depth"
)

type fingerprint struct {
	hash       string
	identifier string
}

// Trace pairs a canonical spectrum with its session-scoped state.
type Trace struct {
	ID       string
	Spectrum *spectrum.CanonicalSpectrum
	Visible  bool
}

// Session is the explicit owner of all per-session state. Construct one with
// New; there are no package-level globals.
type Session struct {
	mu          sync.Mutex
	logger      *slog.Logger
	traces      map[string]*Trace
	order       []string
	ledger      map[fingerprint]string
	axisUnit    units.Unit
	displayMode DisplayMode
}

// New builds an empty session with nanometer axis display.
func New(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		logger:      logger,
		traces:      make(map[string]*Trace),
		ledger:      make(map[fingerprint]string),
		axisUnit:    units.Nanometer,
		displayMode: DisplayFlux,
	}
}

// RegisterOptions control duplicate handling during registration.
type RegisterOptions struct {
	// AllowDuplicate admits a spectrum whose fingerprint is already in the
	// ledger.
	AllowDuplicate bool
}

// Register adds a canonical spectrum to the session. A repeated
// (hash, identifier) fingerprint is rejected with ErrDuplicate unless the
// override is set. The returned id is unique within the session.
func (s *Session) Register(spec *spectrum.CanonicalSpectrum, opts RegisterOptions) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	hash, identifier := spec.Fingerprint()
	key := fingerprint{hash: hash, identifier: identifier}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.ledger[key]; ok && !opts.AllowDuplicate {
		return "", ingest.Wrap(ingest.ErrDuplicate, spec.Label, "register",
			fmt.Sprintf("already ingested as %q", existing), nil)
	}

	id := s.uniqueID(textutil.TraceID(spec.Label))
	s.traces[id] = &Trace{ID: id, Spectrum: spec, Visible: true}
	s.order = append(s.order, id)
	s.ledger[key] = id

	s.logger.Info("trace registered",
		slog.String("trace", id),
		slog.String("label", spec.Label),
		slog.Int("samples", len(spec.WavelengthVacNm)))
	return id, nil
}

// Restore reinstates a persisted trace under its original id, rebuilding the
// ledger entry. Used by the store when loading a session; Register is the
// path for new data.
func (s *Session) Restore(id string, spec *spectrum.CanonicalSpectrum, visible bool) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.traces[id]; taken {
		return fmt.Errorf("trace id %q already present", id)
	}
	hash, identifier := spec.Fingerprint()
	s.traces[id] = &Trace{ID: id, Spectrum: spec, Visible: visible}
	s.order = append(s.order, id)
	s.ledger[fingerprint{hash: hash, identifier: identifier}] = id
	return nil
}

// Remove drops a trace and releases its dedup fingerprint, so the same data
// can be ingested again afterwards.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trace, ok := s.traces[id]
	if !ok {
		return fmt.Errorf("no trace %q", id)
	}
	delete(s.traces, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	hash, identifier := trace.Spectrum.Fingerprint()
	delete(s.ledger, fingerprint{hash: hash, identifier: identifier})

	s.logger.Info("trace removed", slog.String("trace", id))
	return nil
}

// Trace returns the trace with the given id.
func (s *Session) Trace(id string) (*Trace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trace, ok := s.traces[id]
	return trace, ok
}

// Traces returns every trace in registration order.
func (s *Session) Traces() []*Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Trace, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.traces[id])
	}
	return out
}

// VisibleTraces returns the visible subset in registration order.
func (s *Session) VisibleTraces() []*Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Trace, 0, len(s.order))
	for _, id := range s.order {
		if trace := s.traces[id]; trace.Visible {
			out = append(out, trace)
		}
	}
	return out
}

// ToggleVisibility flips a trace's visibility and reports the new state.
func (s *Session) ToggleVisibility(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trace, ok := s.traces[id]
	if !ok {
		return false, fmt.Errorf("no trace %q", id)
	}
	trace.Visible = !trace.Visible
	return trace.Visible, nil
}

// SetAxisUnit selects the display unit for the wavelength axis. The stored
// canonical arrays stay in vacuum nanometers regardless.
func (s *Session) SetAxisUnit(unit units.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.axisUnit = unit
}

// AxisUnit returns the current display unit.
func (s *Session) AxisUnit() units.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.axisUnit
}

// SetDisplayMode selects the value-axis presentation.
func (s *Session) SetDisplayMode(mode DisplayMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayMode = mode
}

// DisplayMode returns the value-axis presentation.
func (s *Session) DisplayMode() DisplayMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayMode
}

// uniqueID suffixes a slug until it is free. Caller holds the lock.
func (s *Session) uniqueID(base string) string {
	if _, taken := s.traces[base]; !taken {
		return base
	}
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if _, taken := s.traces[id]; !taken {
			return id
		}
	}
}

// IngestOptions steer the combined ingest entry points.
type IngestOptions struct {
	// HDU selects a FITS extension; negative means auto-select.
	HDU int
	// AllowDuplicates admits repeated fingerprints.
	AllowDuplicates bool
}

// Outcome reports a completed ingestion.
type Outcome struct {
	TraceID  string
	Spectrum *spectrum.CanonicalSpectrum
}

// IngestBytes runs the full pipeline on in-memory file content, routing to
// the FITS or ASCII path by filename extension with a content sniff as
// backstop. Canonicalization always completes; when registration rejects a
// duplicate the canonical result is still returned alongside ErrDuplicate so
// the caller can inspect what was rejected.
func (s *Session) IngestBytes(raw []byte, filename string, opts IngestOptions) (Outcome, error) {
	var result *ingest.Result
	var err error
	if looksLikeFITS(raw, filename) {
		result, err = ingest.LoadFITS(raw, filename, ingest.FITSOptions{HDU: opts.HDU})
	} else {
		result, err = ingest.LoadASCII(raw, filename)
	}
	if err != nil {
		return Outcome{}, err
	}

	spec, err := ingest.Canonicalize(result)
	if err != nil {
		return Outcome{}, err
	}

	id, err := s.Register(spec, RegisterOptions{AllowDuplicate: opts.AllowDuplicates})
	if err != nil {
		return Outcome{Spectrum: spec}, err
	}
	return Outcome{TraceID: id, Spectrum: spec}, nil
}

func looksLikeFITS(raw []byte, filename string) bool {
	switch strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/"))) {
	case ".fits", ".fit", ".fts":
		return true
	}
	return len(raw) >= 6 && string(raw[:6]) == "SIMPLE"
}
