package testkit

import (
	"context"
	"sort"
	"sync"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/domain/curve"
	"rarscale/internal/errors"
	"rarscale/ports"
)

// InMemoryProvider serves a fixed set of profiles. It backs tests and the
// demo pipeline when no data directory is configured.
type InMemoryProvider struct {
	profiles map[core.GalaxyID]curve.GalaxyProfile
}

var _ ports.DataProviderPort = (*InMemoryProvider)(nil)

func NewInMemoryProvider(profiles []curve.GalaxyProfile) *InMemoryProvider {
	byID := make(map[core.GalaxyID]curve.GalaxyProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return &InMemoryProvider{profiles: byID}
}

func (p *InMemoryProvider) Profiles(_ context.Context) (map[core.GalaxyID]curve.GalaxyProfile, error) {
	out := make(map[core.GalaxyID]curve.GalaxyProfile, len(p.profiles))
	for id, profile := range p.profiles {
		out[id] = profile
	}
	return out, nil
}

func (p *InMemoryProvider) Profile(_ context.Context, id core.GalaxyID) (curve.GalaxyProfile, error) {
	profile, ok := p.profiles[id]
	if !ok {
		return curve.GalaxyProfile{}, errors.NotFoundFrom(core.NewNotFoundError("galaxy", string(id)))
	}
	return profile, nil
}

func (p *InMemoryProvider) QualityGalaxies(_ context.Context, thresholds curve.QualityThresholds) ([]core.GalaxyID, error) {
	var ids []core.GalaxyID
	for id, profile := range p.profiles {
		if curve.EvaluateQuality(profile, thresholds).Passed {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// InMemoryResultStore is a ResultRepositoryPort kept entirely in memory.
type InMemoryResultStore struct {
	mu    sync.RWMutex
	runs  map[core.RunID]analysis.RunRecord
	order []core.RunID // insertion order, newest last
}

var _ ports.ResultRepositoryPort = (*InMemoryResultStore)(nil)

func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{runs: make(map[core.RunID]analysis.RunRecord)}
}

func (s *InMemoryResultStore) StoreRun(_ context.Context, record analysis.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[record.ID]; exists {
		return errors.DatabaseError("run " + string(record.ID) + " already stored")
	}
	s.runs[record.ID] = record
	s.order = append(s.order, record.ID)
	return nil
}

func (s *InMemoryResultStore) ListRuns(_ context.Context, limit int) ([]analysis.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []analysis.RunRecord
	for i := len(s.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out, nil
}

func (s *InMemoryResultStore) GetRun(_ context.Context, id core.RunID) (*analysis.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.runs[id]
	if !ok {
		return nil, errors.NotFoundFrom(core.NewNotFoundError("run", string(id)))
	}
	return &record, nil
}

func (s *InMemoryResultStore) GetGalaxyResults(_ context.Context, id core.RunID) ([]analysis.GalaxyRadialResult, error) {
	record, err := s.GetRun(context.Background(), id)
	if err != nil {
		return nil, err
	}
	return record.Galaxies, nil
}
