package config

import (
	"strings"
	"testing"

	"rarscale/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateRejectsBadBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"lower bound above upper", func(c *Config) { c.Fit.A0Min = 1e-8; c.Fit.A0Max = 1e-12 }},
		{"equal bounds", func(c *Config) { c.Fit.A0Min = 1e-10; c.Fit.A0Max = 1e-10 }},
		{"non-positive lower bound", func(c *Config) { c.Fit.A0Min = 0 }},
		{"zero min points", func(c *Config) { c.Fit.MinPoints = 0 }},
		{"zero iteration budget", func(c *Config) { c.Fit.MaxIterations = 0 }},
		{"negative bootstrap count", func(c *Config) { c.Fit.BootstrapSamples = -1 }},
		{"wrong bin count", func(c *Config) { c.Bins.Count = 3 }},
		{"outer min below inner max", func(c *Config) { c.Bins.InnerMaxRadiusKpc = 8; c.Bins.OuterMinRadiusKpc = 2 }},
		{"hypothesis without name", func(c *Config) { c.Hypotheses.Null.Name = "" }},
		{"duplicate hypothesis names", func(c *Config) { c.Hypotheses.Null.Name = c.Hypotheses.Alternative.Name }},
		{"negative hypothesis std", func(c *Config) { c.Hypotheses.Alternative.ExpectedRatioStd = -0.1 }},
		{"strong z below significant z", func(c *Config) { c.Hypotheses.Thresholds.StrongZ = 1.0 }},
		{"zero workers", func(c *Config) { c.Run.Workers = 0 }},
		{"zero min valid galaxies", func(c *Config) { c.Run.MinValidGalaxies = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if errors.GetCode(err) != errors.CodeConfigInvalid {
				t.Errorf("expected %s, got %s", errors.CodeConfigInvalid, errors.GetCode(err))
			}
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("A0_MIN", "5e-12")
	t.Setenv("RUN_SEED", "1234")
	t.Setenv("QUALITY_TIER", "strict")
	t.Setenv("INNER_MAX_RADIUS_KPC", "1.0")
	t.Setenv("OUTER_MIN_RADIUS_KPC", "10.0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fit.A0Min != 5e-12 {
		t.Errorf("A0Min = %g", cfg.Fit.A0Min)
	}
	if cfg.Run.Seed != 1234 {
		t.Errorf("Seed = %d", cfg.Run.Seed)
	}
	if cfg.Quality.Name != "STRICT" {
		t.Errorf("quality tier = %s", cfg.Quality.Name)
	}
	if cfg.Bins.InnerMaxRadiusKpc != 1.0 || cfg.Bins.OuterMinRadiusKpc != 10.0 {
		t.Errorf("bin thresholds = %g/%g", cfg.Bins.InnerMaxRadiusKpc, cfg.Bins.OuterMinRadiusKpc)
	}
}

func TestLoadRejectsUnknownTier(t *testing.T) {
	t.Setenv("QUALITY_TIER", "heroic")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown quality tier")
	}
}

func TestSnapshotCoversDecisionInputs(t *testing.T) {
	cfg := Default()
	snap := cfg.Snapshot()
	for _, want := range []string{"a0=[", "tier=RELAXED", "universal-a0", "running-a0"} {
		if !strings.Contains(snap, want) {
			t.Errorf("snapshot missing %q: %s", want, snap)
		}
	}

	cfg.Fit.BootstrapSamples = 7
	if cfg.Snapshot() == snap {
		t.Error("snapshot must change when a numerically relevant setting changes")
	}
}
