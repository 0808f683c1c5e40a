package session_test

import (
	"errors"
	"testing"

	"spectrasuite/internal/ingest"
	"spectrasuite/internal/session"
	"spectrasuite/internal/spectrum"
	"spectrasuite/internal/units"
)

func testSpectrum(label, hash string) *spectrum.CanonicalSpectrum {
	return &spectrum.CanonicalSpectrum{
		Label:           label,
		WavelengthVacNm: []float64{500, 600},
		Values:          []float64{1, 2},
		SourceHash:      hash,
	}
}

func TestRegisterRejectsRepeatedFingerprint(t *testing.T) {
	s := session.New(nil)
	if _, err := s.Register(testSpectrum("Vega", "h1"), session.RegisterOptions{}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := s.Register(testSpectrum("Vega", "h1"), session.RegisterOptions{})
	if !errors.Is(err, ingest.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	if _, err := s.Register(testSpectrum("Vega", "h1"), session.RegisterOptions{AllowDuplicate: true}); err != nil {
		t.Fatalf("override register: %v", err)
	}
	if got := len(s.Traces()); got != 2 {
		t.Fatalf("trace count = %d", got)
	}
}

func TestRegisterDistinguishesHashAndIdentifier(t *testing.T) {
	s := session.New(nil)
	// Same label, different content: both accepted.
	if _, err := s.Register(testSpectrum("Vega", "h1"), session.RegisterOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register(testSpectrum("Vega", "h2"), session.RegisterOptions{}); err != nil {
		t.Fatalf("different hash rejected: %v", err)
	}
	// Same content, different product id: both accepted.
	withProduct := testSpectrum("Vega", "h1")
	withProduct.Metadata.ProductID = "ivoa://vega/42"
	if _, err := s.Register(withProduct, session.RegisterOptions{}); err != nil {
		t.Fatalf("different identifier rejected: %v", err)
	}
}

func TestTraceIDsAreUniquePerLabel(t *testing.T) {
	s := session.New(nil)
	a, _ := s.Register(testSpectrum("Vega", "h1"), session.RegisterOptions{})
	b, _ := s.Register(testSpectrum("Vega", "h2"), session.RegisterOptions{})
	if a == b {
		t.Fatalf("ids collide: %q", a)
	}
	if a != "vega" || b != "vega-2" {
		t.Fatalf("ids = %q, %q", a, b)
	}
}

func TestRemoveReleasesFingerprint(t *testing.T) {
	s := session.New(nil)
	id, err := s.Register(testSpectrum("Sirius", "h9"), session.RegisterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Register(testSpectrum("Sirius", "h9"), session.RegisterOptions{}); err != nil {
		t.Fatalf("re-register after removal: %v", err)
	}
}

func TestVisibilityToggle(t *testing.T) {
	s := session.New(nil)
	id, _ := s.Register(testSpectrum("Vega", "h1"), session.RegisterOptions{})
	s.Register(testSpectrum("Altair", "h2"), session.RegisterOptions{})

	visible, err := s.ToggleVisibility(id)
	if err != nil || visible {
		t.Fatalf("toggle = %v, %v", visible, err)
	}
	traces := s.VisibleTraces()
	if len(traces) != 1 || traces[0].Spectrum.Label != "Altair" {
		t.Fatalf("visible traces = %d", len(traces))
	}
}

func TestIngestBytesDuplicateStillReturnsCanonicalResult(t *testing.T) {
	s := session.New(nil)
	raw := []byte("wavelength,flux\n500,1\n600,2\n")
	if _, err := s.IngestBytes(raw, "star.csv", session.IngestOptions{HDU: -1}); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	outcome, err := s.IngestBytes(raw, "star.csv", session.IngestOptions{HDU: -1})
	if !errors.Is(err, ingest.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	if outcome.Spectrum == nil {
		t.Fatal("canonicalization must complete even when registration rejects")
	}
	if got := len(s.Traces()); got != 1 {
		t.Fatalf("trace count = %d, duplicate must not be added", got)
	}
}

func TestIngestBytesRoutesByContent(t *testing.T) {
	s := session.New(nil)
	// A FITS payload under a generic name still takes the FITS path.
	raw := append([]byte("SIMPLE  ="), make([]byte, 8)...)
	_, err := s.IngestBytes(raw, "download.bin", session.IngestOptions{HDU: -1})
	if !errors.Is(err, ingest.ErrParse) {
		t.Fatalf("err = %v, want a FITS parse failure, not an ASCII one", err)
	}
}

func TestDisplayPreferences(t *testing.T) {
	s := session.New(nil)
	if s.AxisUnit() != units.Nanometer {
		t.Fatalf("default axis unit = %q", s.AxisUnit())
	}
	s.SetAxisUnit(units.Angstrom)
	s.SetDisplayMode(session.DisplayAbsorbance)
	if s.AxisUnit() != units.Angstrom || s.DisplayMode() != session.DisplayAbsorbance {
		t.Fatalf("preferences = %q/%q", s.AxisUnit(), s.DisplayMode())
	}
}
