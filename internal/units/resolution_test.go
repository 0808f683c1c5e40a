package units_test

import (
	"math"
	"testing"

	"spectrasuite/internal/units"
)

func narrowLine(n int, center int) ([]float64, []float64) {
	wave := make([]float64, n)
	flux := make([]float64, n)
	for i := range wave {
		wave[i] = 500.0 + 0.01*float64(i)
	}
	flux[center] = 10.0
	return wave, flux
}

func TestMatchResolutionBroadensNarrowLine(t *testing.T) {
	wave, flux := narrowLine(801, 400)
	match, err := units.MatchResolution(wave, flux, 100000.0, 5000.0)
	if err != nil {
		t.Fatalf("MatchResolution: %v", err)
	}
	if match.KernelSigmaPx <= 0 {
		t.Fatalf("expected positive kernel sigma, got %g", match.KernelSigmaPx)
	}
	if match.Flux[400] >= flux[400] {
		t.Fatal("peak should be lowered by the convolution")
	}

	fwhm := units.EstimateFWHM(wave, match.Flux)
	wantFWHM := 504.0 / 5000.0 // lambda_ref / R at the grid median
	if fwhm <= 0 || math.Abs(fwhm-wantFWHM)/wantFWHM > 0.35 {
		t.Fatalf("broadened FWHM %g not near %g", fwhm, wantFWHM)
	}

	// Total flux is conserved up to edge effects.
	var before, after float64
	for i := range flux {
		before += flux[i]
		after += match.Flux[i]
	}
	if math.Abs(before-after)/before > 1e-6 {
		t.Fatalf("convolution lost flux: %g -> %g", before, after)
	}
}

func TestMatchResolutionNoOpWhenTargetCoarserThanCurrent(t *testing.T) {
	wave, flux := narrowLine(101, 50)
	match, err := units.MatchResolution(wave, flux, 5000.0, 20000.0)
	if err != nil {
		t.Fatalf("MatchResolution: %v", err)
	}
	if match.KernelSigmaPx != 0 {
		t.Fatalf("expected passthrough, got sigma %g", match.KernelSigmaPx)
	}
	for i := range flux {
		if match.Flux[i] != flux[i] {
			t.Fatal("passthrough must copy flux unchanged")
		}
	}
}

func TestMatchResolutionDegenerateGrid(t *testing.T) {
	wave := []float64{500.0, 500.0, 500.0}
	flux := []float64{1.0, 2.0, 1.0}
	match, err := units.MatchResolution(wave, flux, 0.0, 1000.0)
	if err != nil {
		t.Fatalf("MatchResolution: %v", err)
	}
	if match.KernelSigmaPx != 0 {
		t.Fatal("degenerate spacing must not convolve")
	}
}

func TestMatchResolutionRejectsNonPositiveTarget(t *testing.T) {
	if _, err := units.MatchResolution([]float64{1}, []float64{1}, 0, 0); err == nil {
		t.Fatal("expected error for non-positive target resolution")
	}
}

func TestIntensityModeRoundTrips(t *testing.T) {
	transmission := []float64{1.0, 0.5, 0.01}
	back := units.AbsorbanceToTransmission(units.TransmissionToAbsorbance(transmission))
	for i, want := range transmission {
		if math.Abs(back[i]-want) > 1e-12 {
			t.Fatalf("absorbance round trip: got %g want %g", back[i], want)
		}
	}
	back = units.OpticalDepthToTransmission(units.TransmissionToOpticalDepth(transmission))
	for i, want := range transmission {
		if math.Abs(back[i]-want) > 1e-12 {
			t.Fatalf("optical depth round trip: got %g want %g", back[i], want)
		}
	}
	tau := units.AbsorbanceToOpticalDepth([]float64{1.0})
	if math.Abs(tau[0]-math.Ln10) > 1e-12 {
		t.Fatalf("A=1 should map to tau=ln(10), got %g", tau[0])
	}
}
