// Package testsupport provides shared fixtures for package tests: temp-dir
// configs, seeded sessions, and canned spectral files.
package testsupport

import (
	"path/filepath"
	"testing"

	"spectrasuite/internal/config"
	"spectrasuite/internal/fitsio"
	"spectrasuite/internal/session"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "state")
	cfg.Paths.ExportDir = filepath.Join(base, "exports")
	cfg.Ingest.DefaultHDU = -1

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAxisUnit overrides the display axis unit on the test config.
func WithAxisUnit(unit string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Display.AxisUnit = unit
	}
}

// ASCIISpectrum is a two-column comma file with a recognizable header.
func ASCIISpectrum() []byte {
	return []byte("wavelength,flux\n500,1.0\n600,2.0\n700,1.5\n")
}

// FITSSpectrum is a one-table container with explicit nanometer wavelengths.
func FITSSpectrum(target string) []byte {
	return fitsio.NewBuilder().
		EmptyPrimary(fitsio.Str("OBJECT", target)).
		AppendTable("SPECTRUM", []fitsio.BuilderColumn{
			{Name: "wavelength", Unit: "nm", Values: []float64{500, 600, 700}},
			{Name: "flux", Values: []float64{1, 2, 3}},
		}).
		Bytes()
}

// SeededSession ingests the canned ASCII spectrum into a fresh session.
func SeededSession(t testing.TB) (*session.Session, string) {
	t.Helper()
	sess := session.New(nil)
	outcome, err := sess.IngestBytes(ASCIISpectrum(), "fixture.csv", session.IngestOptions{HDU: -1})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return sess, outcome.TraceID
}
