package ports

import (
	"context"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
)

// ResultWriterPort provides append-only persistence for completed runs.
// This is the only way run results are written - replays always create new runs.
type ResultWriterPort interface {
	StoreRun(ctx context.Context, record analysis.RunRecord) error
}

// ResultReaderPort provides read-only access to stored runs for the API and
// dashboard surfaces.
type ResultReaderPort interface {
	ListRuns(ctx context.Context, limit int) ([]analysis.RunRecord, error)
	GetRun(ctx context.Context, id core.RunID) (*analysis.RunRecord, error)
	GetGalaxyResults(ctx context.Context, id core.RunID) ([]analysis.GalaxyRadialResult, error)
}

// ResultRepositoryPort combines read and write access.
type ResultRepositoryPort interface {
	ResultWriterPort
	ResultReaderPort
}
