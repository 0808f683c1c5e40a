package ingest_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"spectrasuite/internal/ingest"
	"spectrasuite/internal/provenance"
	"spectrasuite/internal/units"
)

func TestLoadASCIIMicronHeaderScenario(t *testing.T) {
	raw := []byte("Wave Length (µm),FluxDensity\n1.0,5.0\n2.0,10.0\n")
	result, err := ingest.LoadASCII(raw, "lab_scan.csv")
	if err != nil {
		t.Fatalf("LoadASCII: %v", err)
	}
	if result.WaveUnit != units.Micron {
		t.Fatalf("wave unit = %q", result.WaveUnit)
	}
	if len(result.Wave) != 2 {
		t.Fatalf("rows retained = %d", len(result.Wave))
	}
	if result.IsAir {
		t.Fatal("no air marker present, must default to vacuum")
	}

	spec, err := ingest.Canonicalize(result)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if spec.WavelengthVacNm[0] != 1000 || spec.WavelengthVacNm[1] != 2000 {
		t.Fatalf("axis = %v, want microns rebased to nm", spec.WavelengthVacNm)
	}
	kinds := eventKinds(spec.Provenance)
	if len(kinds) != 2 || kinds[0] != provenance.KindIngestASCII || kinds[1] != provenance.KindUnitConvert {
		t.Fatalf("event kinds = %v", kinds)
	}
	ev, ok := spec.Provenance[0].Payload.(provenance.IngestASCII)
	if !ok {
		t.Fatalf("payload type = %T", spec.Provenance[0].Payload)
	}
	if ev.Method != "aliases" || ev.Headerless {
		t.Fatalf("method/headerless = %q/%v", ev.Method, ev.Headerless)
	}
	if ev.RowsTotal != 2 || ev.RowsRetained != 2 {
		t.Fatalf("row counts = %d/%d", ev.RowsRetained, ev.RowsTotal)
	}
}

func TestLoadASCIIHeaderlessWhitespaceTable(t *testing.T) {
	raw := []byte("# reduced on 2026-02-14\n100 1.0\n200 2.0\n300 1.5\n")
	result, err := ingest.LoadASCII(raw, "scan.dat")
	if err != nil {
		t.Fatalf("LoadASCII: %v", err)
	}
	ev := result.Events[0].Payload.(provenance.IngestASCII)
	if !ev.Headerless || ev.Method != "numeric_heuristic" {
		t.Fatalf("headerless/method = %v/%q", ev.Headerless, ev.Method)
	}
	if ev.WaveColumn != "column_1" || ev.FluxColumn != "column_2" {
		t.Fatalf("columns = %q/%q", ev.WaveColumn, ev.FluxColumn)
	}
	if ev.WaveUnit != "unknown" || ev.FluxUnit != "unknown" {
		t.Fatalf("units leak placeholders: %q/%q", ev.WaveUnit, ev.FluxUnit)
	}
}

func TestLoadASCIIDropsNonFinitePairs(t *testing.T) {
	raw := []byte("wavelength,flux\n500,1.0\n501,nan\n502,2.0\n")
	result, err := ingest.LoadASCII(raw, "gappy.csv")
	if err != nil {
		t.Fatalf("LoadASCII: %v", err)
	}
	ev := result.Events[0].Payload.(provenance.IngestASCII)
	if ev.RowsTotal != 3 || ev.RowsRetained != 2 {
		t.Fatalf("row counts = %d retained of %d", ev.RowsRetained, ev.RowsTotal)
	}
	if len(result.Wave) != 2 || result.Wave[1] != 502 {
		t.Fatalf("wave = %v", result.Wave)
	}
}

func TestLoadASCIIHarvestsMetadataColumns(t *testing.T) {
	raw := []byte("wavelength,flux,target,observer\n500,1.0,HD 189733,nan\n501,1.1,HD 189733,K. Horne\n")
	result, err := ingest.LoadASCII(raw, "export.csv")
	if err != nil {
		t.Fatalf("LoadASCII: %v", err)
	}
	if result.Metadata.Target != "HD 189733" {
		t.Fatalf("target = %q", result.Metadata.Target)
	}
	if result.Label != "HD 189733" {
		t.Fatalf("label = %q, want the harvested target", result.Label)
	}
	if got := result.Metadata.Extra["observer"]; got != "K. Horne" {
		t.Fatalf("observer = %v, null-like first cell must be skipped", got)
	}
}

func TestLoadASCIIAirMarkerOnAxisColumn(t *testing.T) {
	raw := []byte("wavelength_air (nm),flux\n500,1\n600,2\n")
	result, err := ingest.LoadASCII(raw, "air.csv")
	if err != nil {
		t.Fatalf("LoadASCII: %v", err)
	}
	if !result.IsAir {
		t.Fatal("air marker in column name not picked up")
	}

	spec, err := ingest.Canonicalize(result)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	for i, nm := range spec.WavelengthVacNm {
		if nm <= result.Wave[i] {
			t.Fatalf("vacuum wavelength %v not above air %v", nm, result.Wave[i])
		}
	}
	if !hasKind(spec.Provenance, provenance.KindAirToVacuum) {
		t.Fatal("missing air_to_vacuum event")
	}
}

func TestLoadASCIIUncertaintyChannelFollowsRowFilter(t *testing.T) {
	raw := []byte("wavelength,flux,flux_error\n500,1.0,0.1\n501,nan,0.2\n502,2.0,0.3\n")
	result, err := ingest.LoadASCII(raw, "err.csv")
	if err != nil {
		t.Fatalf("LoadASCII: %v", err)
	}
	if len(result.Uncertainties) != 2 {
		t.Fatalf("uncertainty rows = %d", len(result.Uncertainties))
	}
	if result.Uncertainties[1] != 0.3 {
		t.Fatalf("uncertainty misaligned after filtering: %v", result.Uncertainties)
	}
}

func TestLoadASCIIDetectionExhaustionIsDetectionFailure(t *testing.T) {
	raw := []byte("a,b\n1,4\n3,2\n2,9\n")
	_, err := ingest.LoadASCII(raw, "noise.csv")
	if !errors.Is(err, ingest.ErrDetection) {
		t.Fatalf("err = %v, want ErrDetection", err)
	}
}

func TestLoadASCIIZeroRetainedRowsIsDetectionFailure(t *testing.T) {
	raw := []byte("wavelength,flux\nnan,1.0\nnan,2.0\n")
	_, err := ingest.LoadASCII(raw, "allbad.csv")
	if !errors.Is(err, ingest.ErrDetection) {
		t.Fatalf("err = %v, want ErrDetection when filtering leaves no rows", err)
	}
	if errors.Is(err, ingest.ErrParse) {
		t.Fatalf("err = %v, row loss is not a parse failure", err)
	}
}

func TestLoadASCIIRejectsEmptyInput(t *testing.T) {
	_, err := ingest.LoadASCII([]byte("# nothing here\n"), "empty.txt")
	if !errors.Is(err, ingest.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if !strings.Contains(err.Error(), "empty.txt") {
		t.Fatalf("error lacks filename context: %v", err)
	}
}

func TestLoadASCIIHashStableAcrossCalls(t *testing.T) {
	raw := []byte("wavelength,flux\n500,1\n600,2\n")
	a, err := ingest.LoadASCII(raw, "one.csv")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ingest.LoadASCII(raw, "two.csv")
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash == "" || a.Hash != b.Hash {
		t.Fatalf("hash not content-derived: %q vs %q", a.Hash, b.Hash)
	}
}

func eventKinds(events []provenance.Event) []provenance.Kind {
	kinds := make([]provenance.Kind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func hasKind(events []provenance.Event, kind provenance.Kind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }
