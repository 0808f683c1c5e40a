// Package manifest builds the export bundle: a manifest.json carrying every
// trace's arrays, metadata, and provenance, plus a per-trace CSV rendering
// in the session's display unit. Replay reconstructs a session from a
// manifest without touching the original files.
package manifest

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"spectrasuite/internal/session"
	"spectrasuite/internal/spectrum"
	"spectrasuite/internal/textutil"
	"spectrasuite/internal/units"
)

// SchemaVersion identifies the manifest layout. Replay accepts equal or
// older versions.
const SchemaVersion = 1

// Manifest is the portable snapshot of a session.
type Manifest struct {
	SchemaVersion int                      `json:"schema_version"`
	AppVersion    string                   `json:"app_version,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	AxisUnit      string                   `json:"axis_unit"`
	DisplayMode   string                   `json:"display_mode"`
	Traces        []spectrum.ManifestEntry `json:"traces"`
}

// Build snapshots the session, visible and hidden traces alike.
func Build(sess *session.Session, appVersion string) Manifest {
	traces := sess.Traces()
	entries := make([]spectrum.ManifestEntry, 0, len(traces))
	for _, trace := range traces {
		entries = append(entries, trace.Spectrum.ToManifestEntry())
	}
	return Manifest{
		SchemaVersion: SchemaVersion,
		AppVersion:    appVersion,
		CreatedAt:     time.Now().UTC(),
		AxisUnit:      string(sess.AxisUnit()),
		DisplayMode:   string(sess.DisplayMode()),
		Traces:        entries,
	}
}

// Encode renders the manifest as indented JSON.
func (m Manifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Decode parses manifest JSON, rejecting newer schema versions.
func Decode(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if m.SchemaVersion > SchemaVersion {
		return Manifest{}, fmt.Errorf("manifest schema version %d is newer than supported %d",
			m.SchemaVersion, SchemaVersion)
	}
	return m, nil
}

// Replay rebuilds a session from a manifest. Trace ids, the dedup ledger,
// and display preferences are all reconstructed; provenance logs carry over
// untouched.
func Replay(m Manifest, logger *slog.Logger) (*session.Session, error) {
	sess := session.New(logger)
	if m.AxisUnit != "" {
		sess.SetAxisUnit(units.Unit(m.AxisUnit))
	}
	if m.DisplayMode != "" {
		sess.SetDisplayMode(session.DisplayMode(m.DisplayMode))
	}
	for i, entry := range m.Traces {
		spec := spectrum.FromManifestEntry(entry)
		if _, err := sess.Register(spec, session.RegisterOptions{}); err != nil {
			return nil, fmt.Errorf("replay trace %d (%s): %w", i, entry.Label, err)
		}
	}
	return sess, nil
}

// WriteBundle streams a zip bundle with the manifest and one CSV per trace.
// CSV axes are converted from the canonical nanometers into the manifest's
// axis unit so the files match what the session displayed.
func WriteBundle(w io.Writer, m Manifest) error {
	axisUnit := units.Unit(m.AxisUnit)
	if axisUnit == "" {
		axisUnit = units.Nanometer
	}

	zw := zip.NewWriter(w)
	manifestJSON, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	entry, err := zw.Create("manifest.json")
	if err != nil {
		return fmt.Errorf("create manifest.json: %w", err)
	}
	if _, err := entry.Write(manifestJSON); err != nil {
		return fmt.Errorf("write manifest.json: %w", err)
	}

	seen := make(map[string]int)
	for _, trace := range m.Traces {
		name := csvName(trace.Label, seen)
		file, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if err := writeTraceCSV(file, trace, axisUnit); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish bundle: %w", err)
	}
	return nil
}

func csvName(label string, seen map[string]int) string {
	base := textutil.TraceID(label)
	seen[base]++
	if n := seen[base]; n > 1 {
		return fmt.Sprintf("traces/%s-%d.csv", base, n)
	}
	return fmt.Sprintf("traces/%s.csv", base)
}

func writeTraceCSV(w io.Writer, trace spectrum.ManifestEntry, axisUnit units.Unit) error {
	axis := trace.WavelengthVacNm
	if axisUnit != units.Nanometer {
		converted, err := units.FromNanometers(axis, axisUnit)
		if err != nil {
			return err
		}
		axis = converted
	}

	header := fmt.Sprintf("wavelength_%s,value", axisUnit)
	if trace.Uncertainties != nil {
		header += ",uncertainty"
	}
	if _, err := io.WriteString(w, header+"\n"); err != nil {
		return err
	}
	for i := range axis {
		row := strconv.FormatFloat(axis[i], 'g', -1, 64) + "," +
			strconv.FormatFloat(trace.Values[i], 'g', -1, 64)
		if trace.Uncertainties != nil && i < len(trace.Uncertainties) {
			row += "," + strconv.FormatFloat(trace.Uncertainties[i], 'g', -1, 64)
		}
		if _, err := io.WriteString(w, row+"\n"); err != nil {
			return err
		}
	}
	return nil
}
