package manifest_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"spectrasuite/internal/manifest"
	"spectrasuite/internal/provenance"
	"spectrasuite/internal/session"
	"spectrasuite/internal/units"
)

func seededSession(t *testing.T) *session.Session {
	t.Helper()
	sess := session.New(nil)
	files := []struct {
		name string
		raw  []byte
	}{
		{"vega.csv", []byte("wavelength,flux,flux_error\n500,1,0.1\n600,2,0.2\n")},
		{"altair.csv", []byte("wavelength,flux\n400,3\n700,4\n")},
	}
	for _, f := range files {
		if _, err := sess.IngestBytes(f.raw, f.name, session.IngestOptions{HDU: -1}); err != nil {
			t.Fatalf("ingest %s: %v", f.name, err)
		}
	}
	return sess
}

func TestBuildEncodeDecodeRoundTrip(t *testing.T) {
	sess := seededSession(t)
	sess.SetAxisUnit(units.Angstrom)

	m := manifest.Build(sess, "1.4.0")
	data, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := manifest.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.SchemaVersion != manifest.SchemaVersion || decoded.AxisUnit != "angstrom" {
		t.Fatalf("header = %+v", decoded)
	}
	if len(decoded.Traces) != 2 {
		t.Fatalf("trace count = %d", len(decoded.Traces))
	}
	// Typed payloads must survive the JSON trip.
	first := decoded.Traces[0].Provenance[0]
	if _, ok := first.Payload.(provenance.IngestASCII); !ok {
		t.Fatalf("payload decoded as %T", first.Payload)
	}
}

func TestDecodeRejectsNewerSchema(t *testing.T) {
	_, err := manifest.Decode([]byte(`{"schema_version": 99, "traces": []}`))
	if err == nil {
		t.Fatal("newer schema version must be rejected")
	}
}

func TestReplayRebuildsSessionWithoutReingestion(t *testing.T) {
	sess := seededSession(t)
	sess.SetDisplayMode(session.DisplayAbsorbance)
	m := manifest.Build(sess, "")

	replayed, err := manifest.Replay(m, nil)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if replayed.DisplayMode() != session.DisplayAbsorbance {
		t.Fatalf("display mode = %q", replayed.DisplayMode())
	}
	original := sess.Traces()
	restored := replayed.Traces()
	if len(restored) != len(original) {
		t.Fatalf("trace count = %d", len(restored))
	}
	for i := range original {
		a, b := original[i].Spectrum, restored[i].Spectrum
		if a.Label != b.Label || len(a.WavelengthVacNm) != len(b.WavelengthVacNm) {
			t.Fatalf("trace %d mismatch: %q vs %q", i, a.Label, b.Label)
		}
		if len(a.Provenance) != len(b.Provenance) {
			t.Fatalf("trace %d provenance = %d, want %d", i, len(b.Provenance), len(a.Provenance))
		}
	}
}

func TestWriteBundleContainsManifestAndCSVs(t *testing.T) {
	sess := seededSession(t)
	sess.SetAxisUnit(units.Angstrom)
	m := manifest.Build(sess, "1.4.0")

	var buf bytes.Buffer
	if err := manifest.WriteBundle(&buf, m); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip open: %v", err)
	}
	names := make(map[string]*zip.File)
	for _, f := range zr.File {
		names[f.Name] = f
	}
	if names["manifest.json"] == nil {
		t.Fatal("bundle missing manifest.json")
	}
	csv := names["traces/vega.csv"]
	if csv == nil {
		t.Fatalf("bundle entries: %v", keys(names))
	}
	rc, err := csv.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	var content bytes.Buffer
	if _, err := content.ReadFrom(rc); err != nil {
		t.Fatal(err)
	}
	text := content.String()
	if !strings.HasPrefix(text, "wavelength_angstrom,value,uncertainty\n") {
		t.Fatalf("csv header = %q", strings.SplitN(text, "\n", 2)[0])
	}
	if !strings.Contains(text, "5000,") {
		t.Fatalf("axis not converted to angstrom:\n%s", text)
	}
}

func keys(m map[string]*zip.File) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
