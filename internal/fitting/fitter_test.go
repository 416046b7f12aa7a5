package fitting

import (
	"math"
	"testing"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/domain/curve"
	"rarscale/domain/relation"
	"rarscale/internal/config"
	"rarscale/internal/rng"
)

func testFitConfig() config.FitConfig {
	return config.Default().Fit
}

// syntheticBin builds points that follow the relation exactly for a known
// a0, with the given relative observational noise level used only to set the
// reported uncertainty (the values themselves are noise-free).
func syntheticBin(label curve.BinLabel, a0 float64, n int, relErr float64) curve.RadialBin {
	points := make([]curve.RotationCurvePoint, n)
	for i := 0; i < n; i++ {
		// Log-spaced baryonic accelerations spanning the transition regime.
		frac := float64(i) / float64(n-1)
		gBar := math.Pow(10, -12+3*frac)
		gObs := relation.Evaluate(gBar, a0)
		points[i] = curve.RotationCurvePoint{
			Galaxy:  core.GalaxyID("SYN"),
			Radius:  1 + 14*frac,
			GBar:    gBar,
			GObs:    gObs,
			GObsErr: relErr * gObs,
		}
	}
	return curve.RadialBin{Label: label, Points: points}
}

func TestFit_RecoversKnownA0(t *testing.T) {
	fitter, err := New(testFitConfig())
	if err != nil {
		t.Fatal(err)
	}

	for _, a0 := range []float64{5e-11, 1.2e-10, 3e-10} {
		bin := syntheticBin(curve.BinInner, a0, 12, 0.05)
		res := fitter.Fit(bin, rng.New(1).BinStream("SYN", curve.BinInner))

		if !res.Converged {
			t.Fatalf("a0=%g: fit failed: %s", a0, res.Reason)
		}
		if rel := math.Abs(res.A0-a0) / a0; rel > 1e-6 {
			t.Errorf("a0=%g: recovered %g (relative error %g)", a0, res.A0, rel)
		}
	}
}

func TestFit_ResultWithinBounds(t *testing.T) {
	cfg := testFitConfig()
	fitter, _ := New(cfg)

	// True a0 above the upper bound: the accepted fit must still respect it.
	bin := syntheticBin(curve.BinOuter, 5e-8, 10, 0.05)
	res := fitter.Fit(bin, nil)
	if res.Converged {
		if res.A0 < cfg.A0Min || res.A0 > cfg.A0Max {
			t.Errorf("accepted a0 %g outside bounds [%g, %g]", res.A0, cfg.A0Min, cfg.A0Max)
		}
	}
}

func TestFit_TooFewPoints(t *testing.T) {
	fitter, _ := New(testFitConfig())
	bin := syntheticBin(curve.BinInner, 1.2e-10, 2, 0.05)

	res := fitter.Fit(bin, nil)
	if res.Converged {
		t.Fatal("fit of an undersized bin must be rejected")
	}
	if res.Reason == "" {
		t.Error("rejection must carry a reason")
	}
	if res.NPoints != 2 {
		t.Errorf("NPoints = %d, want 2", res.NPoints)
	}
	if !core.IsDataError(res.Err) {
		t.Errorf("undersized bin must classify as a data error, got %v", res.Err)
	}
	if core.IsFitError(res.Err) {
		t.Errorf("undersized bin must not classify as a fit error: %v", res.Err)
	}
}

func TestFit_NonFinitePointsDropped(t *testing.T) {
	fitter, _ := New(testFitConfig())
	bin := syntheticBin(curve.BinInner, 1.2e-10, 10, 0.05)
	bin.Points[3].GObs = math.NaN()
	bin.Points[7].GBar = math.Inf(1)

	res := fitter.Fit(bin, nil)
	if !res.Converged {
		t.Fatalf("fit should survive isolated bad points: %s", res.Reason)
	}
	if res.NPoints != 8 {
		t.Errorf("NPoints = %d, want 8 after dropping bad points", res.NPoints)
	}
}

func TestFit_AllPointsBadIsRejected(t *testing.T) {
	fitter, _ := New(testFitConfig())
	bin := syntheticBin(curve.BinInner, 1.2e-10, 5, 0.05)
	for i := range bin.Points {
		bin.Points[i].GObs = math.NaN()
	}
	res := fitter.Fit(bin, nil)
	if res.Converged {
		t.Fatal("fit over entirely non-finite bin must fail")
	}
	if !core.IsDataError(res.Err) {
		t.Errorf("non-finite bin must classify as a data error, got %v", res.Err)
	}
}

func TestFit_BootstrapNearZeroOnExactData(t *testing.T) {
	fitter, _ := New(testFitConfig())
	bin := syntheticBin(curve.BinInner, 1.2e-10, 12, 0.05)

	res := fitter.Fit(bin, rng.New(99).BinStream("SYN", curve.BinInner))
	if !res.Converged {
		t.Fatalf("fit failed: %s", res.Reason)
	}
	if res.Method != analysis.UncertaintyBootstrap {
		t.Fatalf("expected bootstrap uncertainty, got %q", res.Method)
	}
	// Noise-free data: every resample refits to the same a0.
	if res.A0Err/res.A0 > 1e-6 {
		t.Errorf("bootstrap spread on exact data should vanish, got σ/a0 = %g", res.A0Err/res.A0)
	}
}

func TestFit_AnalyticFallbackWhenBootstrapDisabled(t *testing.T) {
	cfg := testFitConfig()
	cfg.BootstrapSamples = 0
	fitter, _ := New(cfg)

	res := fitter.Fit(syntheticBin(curve.BinInner, 1.2e-10, 12, 0.05), rng.New(1).BinStream("SYN", curve.BinInner))
	if !res.Converged {
		t.Fatalf("fit failed: %s", res.Reason)
	}
	if res.Method != analysis.UncertaintyAnalytic {
		t.Errorf("expected analytic uncertainty with bootstrap disabled, got %q", res.Method)
	}
	if res.A0Err <= 0 {
		t.Errorf("analytic error should be positive, got %g", res.A0Err)
	}
}

func TestFit_AnalyticFallbackOnSmallBins(t *testing.T) {
	cfg := testFitConfig()
	cfg.MinPoints = 3
	cfg.BootstrapMinPoints = 6
	fitter, _ := New(cfg)

	res := fitter.Fit(syntheticBin(curve.BinInner, 1.2e-10, 4, 0.05), rng.New(1).BinStream("SYN", curve.BinInner))
	if !res.Converged {
		t.Fatalf("fit failed: %s", res.Reason)
	}
	if res.Method != analysis.UncertaintyAnalytic {
		t.Errorf("bins below the resample minimum must use the analytic error, got %q", res.Method)
	}
}

func TestFit_Deterministic(t *testing.T) {
	fitter, _ := New(testFitConfig())
	bin := syntheticBin(curve.BinOuter, 8e-11, 10, 0.10)

	a := fitter.Fit(bin, rng.New(42).BinStream("SYN", curve.BinOuter))
	b := fitter.Fit(bin, rng.New(42).BinStream("SYN", curve.BinOuter))

	if a.A0 != b.A0 || a.A0Err != b.A0Err || a.Chi2Reduced != b.Chi2Reduced {
		t.Errorf("identical inputs and seed must reproduce the fit exactly: %+v vs %+v", a, b)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := testFitConfig()
	cfg.A0Min, cfg.A0Max = 1e-8, 1e-12
	_, err := New(cfg)
	if err == nil {
		t.Fatal("expected error for inverted bounds")
	}
	if !core.IsConfigError(err) {
		t.Errorf("inverted bounds must classify as a config error, got %v", err)
	}
}
