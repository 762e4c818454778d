package statistics

import (
	"math"
	"testing"
)

func TestBootstrapCI_EmptySamples(t *testing.T) {
	ci := BootstrapCI(nil, 0.95)
	if ci.Mean != 0.0 || ci.Lower != 0.0 || ci.Upper != 0.0 {
		t.Errorf("expected zero CI for empty input, got %+v", ci)
	}
	if ci.NumBootstraps != 0 {
		t.Errorf("expected 0 bootstraps for empty input, got %d", ci.NumBootstraps)
	}
}

func TestBootstrapCI_SingleValue(t *testing.T) {
	ci := BootstrapCI([]float64{75}, 0.95)
	if ci.Mean != 75 || ci.Lower != 75 || ci.Upper != 75 {
		t.Errorf("expected degenerate CI for single value, got %+v", ci)
	}
}

func TestBootstrapCI_IdenticalValues(t *testing.T) {
	ci := BootstrapCIWithSeed([]float64{50, 50, 50, 50}, 0.95, 42)
	if math.Abs(ci.Lower-50) > 1e-9 || math.Abs(ci.Upper-50) > 1e-9 {
		t.Errorf("expected CI [50, 50] for identical values, got [%f, %f]", ci.Lower, ci.Upper)
	}
}

func TestBootstrapCI_KnownDistribution(t *testing.T) {
	// Accuracy samples with known mean 55.
	samples := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	ci := BootstrapCIWithSeed(samples, 0.95, 42)

	if ci.Mean < 54 || ci.Mean > 56 {
		t.Errorf("expected mean ~55, got %f", ci.Mean)
	}
	if ci.Lower >= ci.Mean {
		t.Errorf("lower bound %f should be < mean %f", ci.Lower, ci.Mean)
	}
	if ci.Upper <= ci.Mean {
		t.Errorf("upper bound %f should be > mean %f", ci.Upper, ci.Mean)
	}
	if ci.Lower < 0 || ci.Upper > 100 {
		t.Errorf("CI should be within [0, 100] for these samples, got [%f, %f]", ci.Lower, ci.Upper)
	}
	if ci.NumBootstraps != DefaultBootstrapIterations {
		t.Errorf("expected %d bootstraps, got %d", DefaultBootstrapIterations, ci.NumBootstraps)
	}
	if ci.ConfidenceLevel != 0.95 {
		t.Errorf("expected confidence level 0.95, got %f", ci.ConfidenceLevel)
	}
}

func TestBootstrapCI_CIContainsMean(t *testing.T) {
	samples := []float64{30, 50, 70, 40, 60}
	ci := BootstrapCIWithSeed(samples, 0.95, 123)

	if ci.Lower > ci.Mean || ci.Upper < ci.Mean {
		t.Errorf("CI [%f, %f] should contain mean %f", ci.Lower, ci.Upper, ci.Mean)
	}
}

func TestBootstrapCI_NarrowerAtHigherN(t *testing.T) {
	small := []float64{30, 50, 70}
	large := []float64{30, 40, 50, 60, 70, 30, 40, 50, 60, 70,
		30, 40, 50, 60, 70, 30, 40, 50, 60, 70}

	ciSmall := BootstrapCIWithSeed(small, 0.95, 42)
	ciLarge := BootstrapCIWithSeed(large, 0.95, 42)

	widthSmall := ciSmall.Upper - ciSmall.Lower
	widthLarge := ciLarge.Upper - ciLarge.Lower

	if widthLarge >= widthSmall {
		t.Errorf("larger sample should yield narrower CI: small=%f, large=%f", widthSmall, widthLarge)
	}
}

func TestBootstrapCI_Deterministic(t *testing.T) {
	samples := []float64{20, 40, 60, 80}
	ci1 := BootstrapCIWithSeed(samples, 0.95, 99)
	ci2 := BootstrapCIWithSeed(samples, 0.95, 99)

	if ci1.Lower != ci2.Lower || ci1.Upper != ci2.Upper {
		t.Errorf("same seed should produce identical CIs: %+v vs %+v", ci1, ci2)
	}
}

func TestBootstrapCI_DifferentConfidenceLevels(t *testing.T) {
	samples := []float64{10, 30, 50, 70, 90, 20, 40, 60, 80, 100}
	ci90 := BootstrapCIWithSeed(samples, 0.90, 42)
	ci99 := BootstrapCIWithSeed(samples, 0.99, 42)

	width90 := ci90.Upper - ci90.Lower
	width99 := ci99.Upper - ci99.Lower

	if width99 <= width90 {
		t.Errorf("99%% CI should be wider than 90%%: 90%%=%f, 99%%=%f", width90, width99)
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %f, want 0", got)
	}
	if got := Mean([]float64{10, 20, 30}); math.Abs(got-20) > 1e-9 {
		t.Errorf("Mean = %f, want 20", got)
	}
}
