package provenance_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"spectrasuite/internal/provenance"
)

func TestEventLogRoundTripPreservesOrderAndTypes(t *testing.T) {
	log := []provenance.Event{
		provenance.New(provenance.IngestASCII{
			Filename:     "spec.csv",
			WaveColumn:   "Wave Length (µm)",
			FluxColumn:   "FluxDensity",
			AxisFamily:   "wavelength",
			WaveUnit:     "micron",
			FluxUnit:     "unknown",
			Method:       "aliases",
			RowsTotal:    2,
			RowsRetained: 2,
			Hash:         "abc123",
		}),
		provenance.New(provenance.UnitConvert{From: "micron", To: "nm"}),
		provenance.NewNote(provenance.AirToVacuum{Method: "edlen1966"},
			"Converted from stated air wavelengths using Edlén (1966)"),
	}

	data, err := provenance.EncodeLog(log)
	if err != nil {
		t.Fatalf("EncodeLog: %v", err)
	}
	restored, err := provenance.DecodeLog(data)
	if err != nil {
		t.Fatalf("DecodeLog: %v", err)
	}
	if len(restored) != len(log) {
		t.Fatalf("restored %d events, want %d", len(restored), len(log))
	}

	ascii, ok := restored[0].Payload.(provenance.IngestASCII)
	if !ok {
		t.Fatalf("first payload has type %T", restored[0].Payload)
	}
	if ascii.Method != "aliases" || ascii.RowsRetained != 2 {
		t.Fatalf("ascii payload corrupted: %+v", ascii)
	}
	convert, ok := restored[1].Payload.(provenance.UnitConvert)
	if !ok || convert.From != "micron" || convert.To != "nm" {
		t.Fatalf("unit_convert payload corrupted: %+v", restored[1].Payload)
	}
	if restored[2].Kind != provenance.KindAirToVacuum || restored[2].Note == "" {
		t.Fatalf("air_to_vacuum event corrupted: %+v", restored[2])
	}
}

func TestUnknownKindsSurviveReplay(t *testing.T) {
	raw := `[{"step":"differential_v2","parameters":{"operation":"ratio","window":5},` +
		`"timestamp":"2025-01-02T03:04:05Z"}]`
	events, err := provenance.DecodeLog([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeLog: %v", err)
	}
	generic, ok := events[0].Payload.(provenance.Generic)
	if !ok {
		t.Fatalf("unknown kind decoded as %T", events[0].Payload)
	}
	if generic.Params["operation"] != "ratio" {
		t.Fatalf("generic params lost: %+v", generic.Params)
	}

	out, err := provenance.EncodeLog(events)
	if err != nil {
		t.Fatalf("EncodeLog: %v", err)
	}
	if !strings.Contains(string(out), `"differential_v2"`) || !strings.Contains(string(out), `"ratio"`) {
		t.Fatalf("unknown kind not re-encoded faithfully: %s", out)
	}
}

func TestWireShapeMatchesManifestContract(t *testing.T) {
	event := provenance.Event{
		Kind:    provenance.KindUnitConvert,
		Time:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Payload: provenance.UnitConvert{From: "angstrom", To: "nm"},
	}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var shape map[string]any
	if err := json.Unmarshal(data, &shape); err != nil {
		t.Fatalf("unmarshal shape: %v", err)
	}
	for _, key := range []string{"step", "parameters", "timestamp"} {
		if _, ok := shape[key]; !ok {
			t.Fatalf("wire event missing %q: %s", key, data)
		}
	}
	params := shape["parameters"].(map[string]any)
	if params["from"] != "angstrom" || params["to"] != "nm" {
		t.Fatalf("parameters not inlined: %s", data)
	}
}
