package relation

import (
	"math"
	"testing"

	"rarscale/domain/core"
	"rarscale/domain/curve"
)

func TestEvaluate_HighAccelerationLimit(t *testing.T) {
	// g_bar >> a0: relation converges to the Newtonian identity
	gBar := 1e-7
	got := Evaluate(gBar, ReferenceA0)
	if math.Abs(got-gBar)/gBar > 1e-9 {
		t.Errorf("high-acceleration limit violated: Evaluate(%g) = %g", gBar, got)
	}
}

func TestEvaluate_LowAccelerationLimit(t *testing.T) {
	// Deep regime: g_obs → sqrt(g_bar * a0)
	gBar := 1e-14
	got := Evaluate(gBar, ReferenceA0)
	want := math.Sqrt(gBar * ReferenceA0)
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("deep-regime limit: got %g, want ≈ %g", got, want)
	}
	if !DeepRegime(gBar, ReferenceA0) {
		t.Error("expected point to be flagged as deep regime")
	}
}

func TestEvaluate_AlwaysAboveBaryonic(t *testing.T) {
	for _, gBar := range []float64{1e-13, 1e-12, 1e-11, 1e-10, 1e-9} {
		if got := Evaluate(gBar, ReferenceA0); got < gBar {
			t.Errorf("Evaluate(%g) = %g fell below g_bar", gBar, got)
		}
	}
}

func TestEvaluate_InvalidInputsStayFinite(t *testing.T) {
	cases := []struct{ gBar, a0 float64 }{
		{-1e-10, ReferenceA0},
		{0, ReferenceA0},
		{1e-10, 0},
		{1e-10, -1},
		{1e5, ReferenceA0}, // far beyond the sqrt cap
	}
	for _, c := range cases {
		got := Evaluate(c.gBar, c.a0)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("Evaluate(%g, %g) = %g is not finite", c.gBar, c.a0, got)
		}
	}
}

func TestResidual_ZeroAtExactModel(t *testing.T) {
	p := curve.RotationCurvePoint{
		Galaxy:  core.GalaxyID("NGC0000"),
		Radius:  5,
		GBar:    3e-11,
		GObs:    Evaluate(3e-11, ReferenceA0),
		GObsErr: 1e-12,
	}
	if r := Residual(p, ReferenceA0); math.Abs(r) > 1e-12 {
		t.Errorf("residual at exact model point = %g, want 0", r)
	}
}

func TestResidual_SignConvention(t *testing.T) {
	base := Evaluate(3e-11, ReferenceA0)
	over := curve.RotationCurvePoint{Radius: 5, GBar: 3e-11, GObs: base * 2, GObsErr: 1e-12}
	under := curve.RotationCurvePoint{Radius: 5, GBar: 3e-11, GObs: base / 2, GObsErr: 1e-12}

	if Residual(over, ReferenceA0) <= 0 {
		t.Error("observation above model should give a positive residual")
	}
	if Residual(under, ReferenceA0) >= 0 {
		t.Error("observation below model should give a negative residual")
	}
}

func TestLogSigma(t *testing.T) {
	p := curve.RotationCurvePoint{Radius: 5, GBar: 3e-11, GObs: 1e-10, GObsErr: 1e-11}
	want := 1e-11 / (1e-10 * math.Ln10)
	if got := LogSigma(p); math.Abs(got-want) > 1e-15 {
		t.Errorf("LogSigma = %g, want %g", got, want)
	}

	bad := curve.RotationCurvePoint{GObs: 0, GObsErr: 1e-11}
	if !math.IsNaN(LogSigma(bad)) {
		t.Error("LogSigma of invalid point should be NaN")
	}
}
