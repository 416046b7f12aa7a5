package app

import (
	"context"
	"log"
	"sort"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/domain/curve"
	"rarscale/internal/config"
	"rarscale/internal/ensemble"
	"rarscale/internal/errors"
	"rarscale/internal/radial"
	"rarscale/internal/rng"
	"rarscale/ports"
)

// AnalysisService orchestrates one complete run: quality selection, the
// per-galaxy radial analysis, the ensemble verdict, persistence and exports.
type AnalysisService struct {
	cfg         *config.Config
	provider    ports.DataProviderPort
	analyzer    *radial.Analyzer
	interpreter *ensemble.Interpreter
	writer      ports.ResultWriterPort // optional
	sinks       []ports.ReportSinkPort
}

func NewAnalysisService(cfg *config.Config, provider ports.DataProviderPort, writer ports.ResultWriterPort, sinks ...ports.ReportSinkPort) (*AnalysisService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	analyzer, err := radial.NewAnalyzer(cfg.Fit, cfg.Bins, cfg.Run.Workers, rng.New(cfg.Run.Seed))
	if err != nil {
		return nil, err
	}
	interpreter, err := ensemble.NewInterpreter(cfg.Hypotheses, cfg.Run.MinValidGalaxies)
	if err != nil {
		return nil, err
	}
	return &AnalysisService{
		cfg:         cfg,
		provider:    provider,
		analyzer:    analyzer,
		interpreter: interpreter,
		writer:      writer,
		sinks:       sinks,
	}, nil
}

// Run executes the full pipeline and returns the persisted record. Sink
// failures are logged and do not fail the run; a persistence failure does.
func (s *AnalysisService) Run(ctx context.Context) (*analysis.RunRecord, error) {
	// 1. Select galaxies passing the quality tier.
	ids, err := s.provider.QualityGalaxies(ctx, s.cfg.Quality)
	if err != nil {
		return nil, errors.Wrap(err, "quality selection failed")
	}
	log.Printf("[analysis] %d galaxies pass %s quality", len(ids), s.cfg.Quality.Name)

	// 2. Load their profiles, keeping the selection order.
	profiles, err := s.loadProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 3. Optional morphology restriction.
	if m := s.cfg.Run.Morphology; m != "" {
		profiles = curve.FilterByMorphology(profiles, curve.Morphology(m))
		log.Printf("[analysis] %d galaxies after %s filter", len(profiles), m)
	}

	// 4. Per-galaxy radial analysis.
	results, err := s.analyzer.AnalyzeEnsemble(ctx, profiles)
	if err != nil {
		return nil, errors.Wrap(err, "radial analysis aborted")
	}

	// 5. Ensemble combination and verdict.
	ensembleResult := s.interpreter.Combine(results)

	record := &analysis.RunRecord{
		ID:          core.RunID(core.NewID()),
		CreatedAt:   core.Now(),
		Seed:        s.cfg.Run.Seed,
		QualityTier: s.cfg.Quality.Name,
		Fingerprint: core.RunFingerprint(s.cfg.Snapshot(), s.cfg.Run.Seed, galaxyIDs(profiles)),
		Galaxies:    results,
		Ensemble:    ensembleResult,
	}

	// 6. Persist, then export.
	if s.writer != nil {
		if err := s.writer.StoreRun(ctx, *record); err != nil {
			return nil, errors.Wrap(err, "failed to store run")
		}
	}
	for _, sink := range s.sinks {
		if err := sink.WriteReport(ctx, *record); err != nil {
			log.Printf("[analysis] export failed: %v", err)
		}
	}
	return record, nil
}

// SubEnsemble recombines an existing run's results for one morphology class,
// without refitting.
func (s *AnalysisService) SubEnsemble(record *analysis.RunRecord, m curve.Morphology) analysis.EnsembleResult {
	var subset []analysis.GalaxyRadialResult
	for _, g := range record.Galaxies {
		if g.Morphology == m {
			subset = append(subset, g)
		}
	}
	return s.interpreter.Combine(subset)
}

func (s *AnalysisService) loadProfiles(ctx context.Context, ids []core.GalaxyID) ([]curve.GalaxyProfile, error) {
	sorted := append([]core.GalaxyID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	profiles := make([]curve.GalaxyProfile, 0, len(sorted))
	for _, id := range sorted {
		profile, err := s.provider.Profile(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", id)
		}
		profile.Quality = curve.EvaluateQuality(profile, s.cfg.Quality)
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func galaxyIDs(profiles []curve.GalaxyProfile) []core.GalaxyID {
	ids := make([]core.GalaxyID, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}
