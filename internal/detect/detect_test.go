package detect_test

import (
	"errors"
	"testing"

	"spectrasuite/internal/detect"
	"spectrasuite/internal/units"
)

func numeric(values ...float64) []float64 { return values }

func col(name string, values ...float64) detect.Column {
	return detect.Column{Name: name, Values: values, Numeric: len(values) > 0}
}

func TestAliasDetectionWinsOverUnitHints(t *testing.T) {
	// A literal "wavelength" column must win by alias even when another
	// column dangles an unrelated unit annotation.
	det, err := detect.Detect([]detect.Column{
		col("wavelength", 1, 2, 3),
		col("signal (GHz)", 5, 6, 7),
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.WaveColumn != "wavelength" {
		t.Fatalf("wave column = %q", det.WaveColumn)
	}
	if det.Method != detect.MethodAliases {
		t.Fatalf("method = %q, want aliases", det.Method)
	}
}

func TestUncertaintyColumnsExcludedBeforeRoleMatching(t *testing.T) {
	// Error channels listed before the real columns must not steal the
	// wavelength or flux roles.
	det, err := detect.Detect([]detect.Column{
		col("Wavelength_Error", 0.1, 0.1, 0.1),
		col("Flux_Error", 0.2, 0.2, 0.2),
		col("Wavelength", 500, 501, 502),
		col("Flux", 1, 2, 3),
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.WaveColumn != "Wavelength" || det.FluxColumn != "Flux" {
		t.Fatalf("roles = %q / %q", det.WaveColumn, det.FluxColumn)
	}
	if det.UncertaintyColumn != "Flux_Error" {
		t.Fatalf("uncertainty channel = %q, want the flux-associated one", det.UncertaintyColumn)
	}
}

func TestCamelCaseAndSpacedHeadersMatchAliases(t *testing.T) {
	det, err := detect.Detect([]detect.Column{
		col("Wave Length (µm)", 1.0, 2.0),
		col("FluxDensity", 5.0, 10.0),
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.Method != detect.MethodAliases {
		t.Fatalf("method = %q", det.Method)
	}
	if det.WaveUnit != units.Micron {
		t.Fatalf("wave unit = %q, want micron", det.WaveUnit)
	}
	if det.Family != units.FamilyWavelength {
		t.Fatalf("family = %q", det.Family)
	}
}

func TestUnitHintFallbackClassifiesAxisFamily(t *testing.T) {
	det, err := detect.Detect([]detect.Column{
		col("axis (GHz)", 100, 101, 102),
		col("reading [Jy]", 5, 6, 7),
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.Method != detect.MethodUnitHint {
		t.Fatalf("method = %q, want unit_hint", det.Method)
	}
	if det.Family != units.FamilyFrequency {
		t.Fatalf("family = %q, want frequency", det.Family)
	}
	if det.WaveUnit != units.FrequencyGHz {
		t.Fatalf("wave unit = %q", det.WaveUnit)
	}
}

func TestEnergyUnitHint(t *testing.T) {
	det, err := detect.Detect([]detect.Column{
		col("axis (keV)", 1, 2, 3),
		col("reading (counts)", 9, 8, 7),
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.Family != units.FamilyEnergy || det.WaveUnit != units.EnergyKeV {
		t.Fatalf("family/unit = %q/%q", det.Family, det.WaveUnit)
	}
}

func TestNumericHeuristicReportsUnknownUnits(t *testing.T) {
	det, err := detect.Detect([]detect.Column{
		col("column_1", 1, 2, 3, 4),
		col("column_2", 9, 5, 7, 2),
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.Method != detect.MethodNumericHeuristic {
		t.Fatalf("method = %q", det.Method)
	}
	if det.WaveColumn != "column_1" || det.FluxColumn != "column_2" {
		t.Fatalf("roles = %q / %q", det.WaveColumn, det.FluxColumn)
	}
	if det.WaveUnitText != "unknown" || det.FluxUnitText != "unknown" {
		t.Fatalf("units leak internal labels: %q / %q", det.WaveUnitText, det.FluxUnitText)
	}
}

func TestDecreasingRampStillCountsAsAxis(t *testing.T) {
	det, err := detect.Detect([]detect.Column{
		col("a", 9, 5, 7, 2),
		col("b", 4, 3, 2, 1),
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.WaveColumn != "b" {
		t.Fatalf("wave column = %q, want the monotonic ramp", det.WaveColumn)
	}
}

func TestExhaustionRaisesFailureWithContext(t *testing.T) {
	_, err := detect.Detect([]detect.Column{
		col("a", 1, 3, 2),
		col("b", 4, 2, 9),
	})
	if err == nil {
		t.Fatal("expected detection failure")
	}
	var failure *detect.Failure
	if !errors.As(err, &failure) {
		t.Fatalf("error type = %T", err)
	}
	if len(failure.Columns) != 2 || len(failure.Tried) != 3 {
		t.Fatalf("failure context incomplete: %+v", failure)
	}
}

func TestWavelengthUnitInferredFromLabelSuffix(t *testing.T) {
	det, err := detect.Detect([]detect.Column{
		col("wavelength_nm", 400, 500, 600),
		col("flux", 1, 2, 3),
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.WaveUnit != units.Nanometer {
		t.Fatalf("wave unit = %q, want nm", det.WaveUnit)
	}
}
