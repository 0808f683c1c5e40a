package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spectrasuite/internal/ingest"
	"spectrasuite/internal/session"
	"spectrasuite/internal/store"
	"spectrasuite/internal/units"
)

func openStore(t *testing.T, dir string) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(dir, "session.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSaveAndLoadSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st := openStore(t, dir)

	sess := session.New(nil)
	raw := []byte("wavelength_air (nm),flux,flux_error\n500,1,0.1\n600,2,0.2\n")
	outcome, err := sess.IngestBytes(raw, "air scan.csv", session.IngestOptions{HDU: -1})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	sess.SetAxisUnit(units.Angstrom)
	if _, err := sess.ToggleVisibility(outcome.TraceID); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := st.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	loaded, err := st.LoadSession(ctx, nil)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if loaded.AxisUnit() != units.Angstrom {
		t.Fatalf("axis unit = %q", loaded.AxisUnit())
	}
	traces := loaded.Traces()
	if len(traces) != 1 {
		t.Fatalf("trace count = %d", len(traces))
	}
	got := traces[0]
	if got.ID != outcome.TraceID || got.Visible {
		t.Fatalf("trace state = %q visible=%v", got.ID, got.Visible)
	}
	spec := got.Spectrum
	if len(spec.WavelengthVacNm) != 2 || len(spec.Uncertainties) != 2 {
		t.Fatalf("arrays = %d/%d samples", len(spec.WavelengthVacNm), len(spec.Uncertainties))
	}
	if spec.WavelengthVacNm[0] != outcome.Spectrum.WavelengthVacNm[0] {
		t.Fatalf("axis drifted: %v vs %v", spec.WavelengthVacNm[0], outcome.Spectrum.WavelengthVacNm[0])
	}
	if len(spec.Provenance) != len(outcome.Spectrum.Provenance) {
		t.Fatalf("provenance rows = %d, want %d", len(spec.Provenance), len(outcome.Spectrum.Provenance))
	}

	// The restored ledger still rejects the same ingestion.
	_, err = loaded.IngestBytes(raw, "air scan.csv", session.IngestOptions{HDU: -1})
	if !errors.Is(err, ingest.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate after restore", err)
	}
}

func TestLoadEmptyDatabaseYieldsEmptySession(t *testing.T) {
	st := openStore(t, t.TempDir())
	sess, err := st.LoadSession(context.Background(), nil)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if len(sess.Traces()) != 0 {
		t.Fatalf("trace count = %d", len(sess.Traces()))
	}
	if sess.AxisUnit() != units.Nanometer {
		t.Fatalf("default axis unit = %q", sess.AxisUnit())
	}
}

func TestOpenRejectsSecondProcess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if _, err := store.Open(path); err == nil {
		t.Fatal("second Open must fail while the lock is held")
	}
}

func TestSaveTwiceKeepsSingleSessionRow(t *testing.T) {
	st := openStore(t, t.TempDir())
	sess := session.New(nil)
	ctx := context.Background()
	if err := st.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	sess.SetDisplayMode(session.DisplayAbsorbance)
	if err := st.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	loaded, err := st.LoadSession(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DisplayMode() != session.DisplayAbsorbance {
		t.Fatalf("display mode = %q", loaded.DisplayMode())
	}
}
