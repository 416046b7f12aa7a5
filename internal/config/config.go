package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"rarscale/domain/curve"
	"rarscale/domain/verdict"
	"rarscale/internal/errors"
)

// Config represents the complete application configuration. It is assembled
// once at startup, validated before any numerical work, and treated as
// immutable afterwards.
type Config struct {
	Fit        FitConfig
	Bins       BinConfig
	Quality    curve.QualityThresholds
	Hypotheses HypothesisConfig
	Run        RunConfig
	Database   DatabaseConfig
	Export     ExportConfig
	Server     ServerConfig
}

// FitConfig holds the bounded-fit and uncertainty-estimation settings.
type FitConfig struct {
	A0Min            float64 // lower bound on the scale parameter (m/s²)
	A0Max            float64 // upper bound on the scale parameter (m/s²)
	MinPoints        int     // a bin below this count is never fit
	MaxIterations    int     // refinement iteration budget
	GridSamples      int     // coarse log-space scan resolution
	BootstrapSamples int     // 0 disables bootstrap entirely
	// BootstrapMinPoints is the smallest bin the bootstrap is considered
	// meaningful for; smaller accepted bins fall back to the analytic error.
	BootstrapMinPoints int
}

// BinConfig holds the two-threshold radial split. The region between
// InnerMaxRadiusKpc and OuterMinRadiusKpc is deliberately left out of both
// bins.
type BinConfig struct {
	Count             int // fixed at 2 (inner/outer) in this design
	InnerMaxRadiusKpc float64
	OuterMinRadiusKpc float64
}

// HypothesisConfig names the two competing hypotheses and the significance
// thresholds used to decide between them.
type HypothesisConfig struct {
	Null        verdict.HypothesisProfile // expects the ratio at unity
	Alternative verdict.HypothesisProfile // expects a radius-dependent ratio
	Thresholds  verdict.Thresholds
}

// RunConfig holds execution-level settings.
type RunConfig struct {
	Seed             int64
	Workers          int
	MinValidGalaxies int // ensemble statistics need at least this many
	QualityTier      string
	// Morphology restricts the run to one galaxy class ("dwarf" or
	// "spiral"); empty analyzes everything.
	Morphology string
	DataDir    string // rotation-curve table directory; empty uses synthetic data
}

// DatabaseConfig holds result-store connection settings.
type DatabaseConfig struct {
	URL string
}

// ExportConfig holds report/export destinations.
type ExportConfig struct {
	WorkbookPath string
	ReportDir    string
}

// ServerConfig holds the read-only surface ports.
type ServerConfig struct {
	APIPort string
	UIPort  string
}

// Default returns the configuration the analysis ships with: literature
// bounds on a0, the relaxed quality tier and the two standard hypothesis
// profiles (universal a0 at ratio 1.00 ± 0.05, running a0 at 1.12 ± 0.06).
func Default() *Config {
	return &Config{
		Fit: FitConfig{
			A0Min:              1e-12,
			A0Max:              1e-8,
			MinPoints:          3,
			MaxIterations:      200,
			GridSamples:        64,
			BootstrapSamples:   100,
			BootstrapMinPoints: 5,
		},
		Bins: BinConfig{
			Count:             2,
			InnerMaxRadiusKpc: 2.0,
			OuterMinRadiusKpc: 8.0,
		},
		Quality: curve.RelaxedQuality(),
		Hypotheses: HypothesisConfig{
			Null:        verdict.HypothesisProfile{Name: "universal-a0", ExpectedRatioMean: 1.00, ExpectedRatioStd: 0.05},
			Alternative: verdict.HypothesisProfile{Name: "running-a0", ExpectedRatioMean: 1.12, ExpectedRatioStd: 0.06},
			Thresholds:  verdict.Thresholds{SignificantZ: 2.0, StrongZ: 3.0, RangeSigma: 2.0},
		},
		Run: RunConfig{
			Seed:             42,
			Workers:          runtime.NumCPU(),
			MinValidGalaxies: 2,
			QualityTier:      "relaxed",
		},
		Database: DatabaseConfig{URL: ""},
		Export: ExportConfig{
			WorkbookPath: "rarscale_results.xlsx",
			ReportDir:    "reports",
		},
		Server: ServerConfig{APIPort: "8080", UIPort: "8081"},
	}
}

// Load reads configuration from environment variables on top of the
// defaults and validates it.
func Load() (*Config, error) {
	cfg := Default()

	cfg.Fit.A0Min = getEnvFloatOrDefault("A0_MIN", cfg.Fit.A0Min)
	cfg.Fit.A0Max = getEnvFloatOrDefault("A0_MAX", cfg.Fit.A0Max)
	cfg.Fit.MinPoints = getEnvIntOrDefault("FIT_MIN_POINTS", cfg.Fit.MinPoints)
	cfg.Fit.MaxIterations = getEnvIntOrDefault("FIT_MAX_ITERATIONS", cfg.Fit.MaxIterations)
	cfg.Fit.GridSamples = getEnvIntOrDefault("FIT_GRID_SAMPLES", cfg.Fit.GridSamples)
	cfg.Fit.BootstrapSamples = getEnvIntOrDefault("BOOTSTRAP_SAMPLES", cfg.Fit.BootstrapSamples)
	cfg.Fit.BootstrapMinPoints = getEnvIntOrDefault("BOOTSTRAP_MIN_POINTS", cfg.Fit.BootstrapMinPoints)

	cfg.Bins.Count = getEnvIntOrDefault("RADIAL_BINS", cfg.Bins.Count)
	cfg.Bins.InnerMaxRadiusKpc = getEnvFloatOrDefault("INNER_MAX_RADIUS_KPC", cfg.Bins.InnerMaxRadiusKpc)
	cfg.Bins.OuterMinRadiusKpc = getEnvFloatOrDefault("OUTER_MIN_RADIUS_KPC", cfg.Bins.OuterMinRadiusKpc)

	cfg.Run.Seed = getEnvInt64OrDefault("RUN_SEED", cfg.Run.Seed)
	cfg.Run.Workers = getEnvIntOrDefault("WORKERS", cfg.Run.Workers)
	cfg.Run.MinValidGalaxies = getEnvIntOrDefault("MIN_VALID_GALAXIES", cfg.Run.MinValidGalaxies)
	cfg.Run.QualityTier = getEnvOrDefault("QUALITY_TIER", cfg.Run.QualityTier)
	cfg.Run.Morphology = getEnvOrDefault("MORPHOLOGY_FILTER", cfg.Run.Morphology)
	cfg.Run.DataDir = getEnvOrDefault("DATA_DIR", cfg.Run.DataDir)

	quality, err := curve.QualityPreset(cfg.Run.QualityTier)
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	cfg.Quality = quality

	cfg.Hypotheses.Null.ExpectedRatioMean = getEnvFloatOrDefault("NULL_RATIO_MEAN", cfg.Hypotheses.Null.ExpectedRatioMean)
	cfg.Hypotheses.Null.ExpectedRatioStd = getEnvFloatOrDefault("NULL_RATIO_STD", cfg.Hypotheses.Null.ExpectedRatioStd)
	cfg.Hypotheses.Alternative.ExpectedRatioMean = getEnvFloatOrDefault("ALT_RATIO_MEAN", cfg.Hypotheses.Alternative.ExpectedRatioMean)
	cfg.Hypotheses.Alternative.ExpectedRatioStd = getEnvFloatOrDefault("ALT_RATIO_STD", cfg.Hypotheses.Alternative.ExpectedRatioStd)
	cfg.Hypotheses.Thresholds.SignificantZ = getEnvFloatOrDefault("SIGNIFICANT_Z", cfg.Hypotheses.Thresholds.SignificantZ)
	cfg.Hypotheses.Thresholds.StrongZ = getEnvFloatOrDefault("STRONG_Z", cfg.Hypotheses.Thresholds.StrongZ)
	cfg.Hypotheses.Thresholds.RangeSigma = getEnvFloatOrDefault("RANGE_SIGMA", cfg.Hypotheses.Thresholds.RangeSigma)

	cfg.Database.URL = getEnvOrDefault("DATABASE_URL", cfg.Database.URL)
	cfg.Export.WorkbookPath = getEnvOrDefault("WORKBOOK_PATH", cfg.Export.WorkbookPath)
	cfg.Export.ReportDir = getEnvOrDefault("REPORT_DIR", cfg.Export.ReportDir)
	cfg.Server.APIPort = getEnvOrDefault("API_PORT", cfg.Server.APIPort)
	cfg.Server.UIPort = getEnvOrDefault("UI_PORT", cfg.Server.UIPort)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every configuration invariant. It must run (and pass)
// before any galaxy is processed; any failure here is fatal.
func (c *Config) Validate() error {
	if c.Fit.A0Min <= 0 || c.Fit.A0Max <= 0 || c.Fit.A0Min >= c.Fit.A0Max {
		return errors.ConfigInvalid(fmt.Sprintf("invalid a0 bounds [%g, %g]: lower must be positive and below upper", c.Fit.A0Min, c.Fit.A0Max))
	}
	if c.Fit.MinPoints < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("per-bin minimum point count must be positive, got %d", c.Fit.MinPoints))
	}
	if c.Fit.MaxIterations < 1 {
		return errors.ConfigInvalid("fit iteration budget must be positive")
	}
	if c.Fit.GridSamples < 2 {
		return errors.ConfigInvalid("grid scan needs at least 2 samples")
	}
	if c.Fit.BootstrapSamples < 0 {
		return errors.ConfigInvalid("bootstrap sample count cannot be negative")
	}
	if c.Fit.BootstrapMinPoints < 2 {
		return errors.ConfigInvalid("bootstrap minimum point count must be at least 2")
	}
	if c.Bins.Count != 2 {
		return errors.ConfigInvalid(fmt.Sprintf("radial bin count is fixed at 2 in this design, got %d", c.Bins.Count))
	}
	if c.Bins.InnerMaxRadiusKpc <= 0 {
		return errors.ConfigInvalid("inner-bin maximum radius must be positive")
	}
	if c.Bins.OuterMinRadiusKpc < c.Bins.InnerMaxRadiusKpc {
		return errors.ConfigInvalid(fmt.Sprintf("outer-bin minimum radius (%g) must not undercut the inner-bin maximum (%g)", c.Bins.OuterMinRadiusKpc, c.Bins.InnerMaxRadiusKpc))
	}
	if err := c.Quality.Validate(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if err := c.Hypotheses.Null.Validate(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if err := c.Hypotheses.Alternative.Validate(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if c.Hypotheses.Null.Name == c.Hypotheses.Alternative.Name {
		return errors.ConfigInvalid("hypothesis profiles must have distinct names")
	}
	if err := c.Hypotheses.Thresholds.Validate(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if c.Run.Workers < 1 {
		return errors.ConfigInvalid("worker count must be positive")
	}
	if c.Run.MinValidGalaxies < 1 {
		return errors.ConfigInvalid("minimum valid galaxy count must be positive")
	}
	switch c.Run.Morphology {
	case "", "dwarf", "spiral":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown morphology filter %q (want dwarf or spiral)", c.Run.Morphology))
	}
	return nil
}

// Snapshot renders the numerically relevant settings as a stable string for
// run fingerprinting.
func (c *Config) Snapshot() string {
	return fmt.Sprintf(
		"a0=[%g,%g];minpts=%d;iter=%d;grid=%d;boot=%d/%d;bins=%g/%g;tier=%s;null=%s(%g±%g);alt=%s(%g±%g);z=%g/%g/%g;minvalid=%d;morph=%s",
		c.Fit.A0Min, c.Fit.A0Max, c.Fit.MinPoints, c.Fit.MaxIterations, c.Fit.GridSamples,
		c.Fit.BootstrapSamples, c.Fit.BootstrapMinPoints,
		c.Bins.InnerMaxRadiusKpc, c.Bins.OuterMinRadiusKpc, c.Quality.Name,
		c.Hypotheses.Null.Name, c.Hypotheses.Null.ExpectedRatioMean, c.Hypotheses.Null.ExpectedRatioStd,
		c.Hypotheses.Alternative.Name, c.Hypotheses.Alternative.ExpectedRatioMean, c.Hypotheses.Alternative.ExpectedRatioStd,
		c.Hypotheses.Thresholds.SignificantZ, c.Hypotheses.Thresholds.StrongZ, c.Hypotheses.Thresholds.RangeSigma,
		c.Run.MinValidGalaxies, c.Run.Morphology,
	)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
