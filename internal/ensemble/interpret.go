package ensemble

import (
	"fmt"
	"log"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/domain/verdict"
	"rarscale/internal/config"
	"rarscale/internal/errors"
)

// Interpreter reduces the per-galaxy ratio statistics to one ensemble
// verdict between two pre-specified hypothesis profiles.
type Interpreter struct {
	null       verdict.HypothesisProfile
	alt        verdict.HypothesisProfile
	thresholds verdict.Thresholds
	minValid   int

	norm distuv.Normal
}

func NewInterpreter(cfg config.HypothesisConfig, minValid int) (*Interpreter, error) {
	if err := cfg.Null.Validate(); err != nil {
		return nil, errors.ConfigInvalidFor(core.ErrInvalidHypothesis, err.Error())
	}
	if err := cfg.Alternative.Validate(); err != nil {
		return nil, errors.ConfigInvalidFor(core.ErrInvalidHypothesis, err.Error())
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	if cfg.Null.ExpectsDeviation() {
		return nil, errors.ConfigInvalidFor(core.ErrInvalidHypothesis, fmt.Sprintf("null hypothesis %q must expect a ratio of unity", cfg.Null.Name))
	}
	if !cfg.Alternative.ExpectsDeviation() {
		return nil, errors.ConfigInvalidFor(core.ErrInvalidHypothesis, fmt.Sprintf("alternative hypothesis %q must expect a ratio away from unity", cfg.Alternative.Name))
	}
	if minValid < 1 {
		return nil, errors.ConfigInvalid("minimum valid-galaxy count must be at least 1")
	}
	return &Interpreter{
		null:       cfg.Null,
		alt:        cfg.Alternative,
		thresholds: cfg.Thresholds,
		minValid:   minValid,
		norm:       distuv.Normal{Mu: 0, Sigma: 1},
	}, nil
}

// Combine folds the galaxy results into the ensemble statistics and applies
// the verdict rule. Excluded galaxies count toward TotalCount only; an
// undersized valid sample is reported on the result, never as an error.
func (it *Interpreter) Combine(results []analysis.GalaxyRadialResult) analysis.EnsembleResult {
	out := analysis.EnsembleResult{TotalCount: len(results)}

	valid := analysis.ValidResults(results)
	out.ValidCount = len(valid)
	if out.ValidCount < it.minValid {
		out.InsufficientSample = true
		out.Verdict = verdict.LabelInsufficientSample
		out.Reason = fmt.Sprintf("%d valid galaxies, need at least %d", out.ValidCount, it.minValid)
		log.Printf("[ensemble] %s", out.Reason)
		return out
	}

	// Inverse-variance weighted mean of the per-galaxy ratios, and the
	// uncertainty-weighted Stouffer combination of their z-scores.
	var sumW, sumWR, sumZW float64
	ratios := make([]float64, 0, len(valid))
	for _, r := range valid {
		w := 1 / (r.RatioErr * r.RatioErr)
		sumW += w
		sumWR += w * r.Ratio
		sumZW += r.Z / r.RatioErr
		ratios = append(ratios, r.Ratio)
	}
	out.MeanRatio = sumWR / sumW
	out.CombinedZ = sumZW / math.Sqrt(sumW)

	if sd, err := stats.StandardDeviation(ratios); err == nil {
		out.RatioStd = sd
	}

	out.PValue = 2 * it.norm.Survival(math.Abs(out.CombinedZ))

	out.Verdict, out.Confidence, out.Reason = it.classify(out.MeanRatio, out.CombinedZ)
	log.Printf("[ensemble] n=%d mean_ratio=%.4f z=%.2f p=%.3g verdict=%s/%s",
		out.ValidCount, out.MeanRatio, out.CombinedZ, out.PValue, out.Verdict, out.Confidence)
	return out
}

// classify applies the two-hypothesis decision rule: a hypothesis is
// supported when the observed mean ratio falls inside its expected range and
// the combined z sits on its side of the significance threshold.
func (it *Interpreter) classify(meanRatio, combinedZ float64) (verdict.Label, verdict.Confidence, string) {
	k := it.thresholds.RangeSigma
	absZ := math.Abs(combinedZ)
	significant := absZ >= it.thresholds.SignificantZ

	switch {
	case significant && it.alt.Contains(meanRatio, k):
		conf := verdict.ConfidenceLow
		if absZ >= it.thresholds.StrongZ {
			conf = verdict.ConfidenceHigh
		}
		return verdict.Label(it.alt.Name), conf, ""
	case !significant && it.null.Contains(meanRatio, k):
		// A comfortably sub-threshold z strengthens the null reading.
		conf := verdict.ConfidenceLow
		if absZ <= it.thresholds.SignificantZ/2 {
			conf = verdict.ConfidenceHigh
		}
		return verdict.Label(it.null.Name), conf, ""
	case significant:
		return verdict.LabelInconclusive, verdict.ConfidenceNone,
			fmt.Sprintf("significant deviation (z=%.2f) but mean ratio %.3f outside the %s range", combinedZ, meanRatio, it.alt.Name)
	default:
		return verdict.LabelInconclusive, verdict.ConfidenceNone,
			fmt.Sprintf("no significant deviation (z=%.2f) and mean ratio %.3f outside the %s range", combinedZ, meanRatio, it.null.Name)
	}
}
