package radial

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/domain/curve"
	"rarscale/domain/relation"
	"rarscale/internal"
	"rarscale/internal/config"
	"rarscale/internal/fitting"
	"rarscale/ports"
)

// Analyzer fits the acceleration scale independently in a galaxy's inner and
// outer radial bins and reduces the pair to a single ratio statistic.
type Analyzer struct {
	fitter  *fitting.Fitter
	policy  SplitPolicy
	rng     ports.RNGPort
	workers int64
	logger  *internal.Logger
}

func NewAnalyzer(fitCfg config.FitConfig, binCfg config.BinConfig, workers int, rng ports.RNGPort) (*Analyzer, error) {
	fitter, err := fitting.New(fitCfg)
	if err != nil {
		return nil, err
	}
	policy, err := NewSplitPolicy(binCfg)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		fitter:  fitter,
		policy:  policy,
		rng:     rng,
		workers: int64(workers),
		logger:  internal.NewDefaultLogger(),
	}, nil
}

// AnalyzeGalaxy runs both bin fits for one galaxy. A galaxy whose bins cannot
// both be fit is returned excluded with the failing bin named, never dropped:
// downstream accounting needs the exclusion visible.
func (a *Analyzer) AnalyzeGalaxy(profile curve.GalaxyProfile) analysis.GalaxyRadialResult {
	result := analysis.GalaxyRadialResult{
		Galaxy:     profile.ID,
		Morphology: curve.ClassifyMorphology(profile.ID),
	}

	innerBin, outerBin := a.policy.Split(profile)
	result.Inner = a.fitter.Fit(innerBin, a.rng.BinStream(profile.ID, curve.BinInner))
	result.Outer = a.fitter.Fit(outerBin, a.rng.BinStream(profile.ID, curve.BinOuter))

	// Fit failures already name their bin.
	switch {
	case !result.Inner.Converged && !result.Outer.Converged:
		return exclude(result, fmt.Sprintf("both bins unusable: %s; %s", result.Inner.Reason, result.Outer.Reason))
	case !result.Inner.Converged:
		return exclude(result, result.Inner.Reason)
	case !result.Outer.Converged:
		return exclude(result, result.Outer.Reason)
	}

	if deepShare(outerBin, result.Outer.A0) == 1 {
		a.logger.Debug("galaxy %s outer bin lies wholly in the deep regime", profile.ID)
	}

	result.Ratio = result.Inner.A0 / result.Outer.A0

	// Relative uncertainties add in quadrature for a quotient.
	relIn := result.Inner.A0Err / result.Inner.A0
	relOut := result.Outer.A0Err / result.Outer.A0
	result.RatioErr = result.Ratio * math.Sqrt(relIn*relIn+relOut*relOut)

	if !isUsableError(result.RatioErr) {
		return exclude(result, "degenerate ratio uncertainty")
	}

	result.Z = (result.Ratio - 1) / result.RatioErr
	return result
}

// AnalyzeEnsemble analyzes every profile concurrently, bounded by the worker
// budget. The returned slice preserves the input order regardless of which
// goroutine finishes first, so a fixed seed reproduces the run byte for byte.
func (a *Analyzer) AnalyzeEnsemble(ctx context.Context, profiles []curve.GalaxyProfile) ([]analysis.GalaxyRadialResult, error) {
	results := make([]analysis.GalaxyRadialResult, len(profiles))
	sem := semaphore.NewWeighted(a.workers)

	var wg sync.WaitGroup
	for i, profile := range profiles {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(idx int, p curve.GalaxyProfile) {
			defer wg.Done()
			defer sem.Release(1)
			r := a.AnalyzeGalaxy(p)
			switch {
			// Sparse bins are routine; optimizer trouble is not.
			case r.Excluded && fitTrouble(r):
				a.logger.Warn("galaxy %s excluded: %s", r.Galaxy, r.Reason)
			case r.Excluded:
				a.logger.Debug("galaxy %s excluded: %s", r.Galaxy, r.Reason)
			default:
				a.logger.Debug("galaxy %s ratio=%.4f z=%.2f", r.Galaxy, r.Ratio, r.Z)
			}
			results[idx] = r
		}(i, profile)
	}
	wg.Wait()

	excluded := 0
	for _, r := range results {
		if r.Excluded {
			excluded++
		}
	}
	a.logger.Info("analyzed %d galaxies (%d excluded)", len(results), excluded)
	return results, nil
}

func exclude(r analysis.GalaxyRadialResult, reason string) analysis.GalaxyRadialResult {
	r.Excluded = true
	r.Reason = reason
	return r
}

// fitTrouble reports whether an exclusion stems from the optimizer rather
// than from sparse or unusable data.
func fitTrouble(r analysis.GalaxyRadialResult) bool {
	return core.IsFitError(r.Inner.Err) || core.IsFitError(r.Outer.Err)
}

// deepShare is the fraction of a bin's points in the low-acceleration regime,
// where the relation approaches √(g_bar·a0) and the fit probes only that
// limit.
func deepShare(bin curve.RadialBin, a0 float64) float64 {
	if bin.Count() == 0 {
		return 0
	}
	deep := 0
	for _, p := range bin.Points {
		if relation.DeepRegime(p.GBar, a0) {
			deep++
		}
	}
	return float64(deep) / float64(bin.Count())
}

func isUsableError(e float64) bool {
	return e > 0 && !math.IsInf(e, 1) && !math.IsNaN(e)
}
