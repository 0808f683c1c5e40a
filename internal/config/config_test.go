package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spectrasuite/internal/config"
	"spectrasuite/internal/units"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("reported a file that does not exist")
	}
	if cfg.Ingest.DefaultHDU != -1 || cfg.Ingest.AllowDuplicates {
		t.Fatalf("ingest defaults = %+v", cfg.Ingest)
	}
	if cfg.AxisUnit() != units.Nanometer {
		t.Fatalf("axis unit = %q", cfg.AxisUnit())
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("data dir not expanded: %q", cfg.Paths.DataDir)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/state"

[display]
axis_unit = "Angstrom"
mode = "ABSORBANCE"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists=%v", resolved, exists)
	}
	if cfg.AxisUnit() != units.Angstrom {
		t.Fatalf("axis unit = %q", cfg.AxisUnit())
	}
	if cfg.Display.Mode != "absorbance" || cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("normalized values = %+v / %+v", cfg.Display, cfg.Logging)
	}
	if cfg.SessionDBPath() != filepath.Join(dir, "state", "session.db") {
		t.Fatalf("session db = %q", cfg.SessionDBPath())
	}
}

func TestLoadRejectsUnknownAxisUnit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[display]\naxis_unit = \"parsec\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "axis_unit") {
		t.Fatalf("err = %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[ingest]") {
		t.Fatal("sample config lacks the ingest section")
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("second WriteSample must refuse to overwrite")
	}
}
