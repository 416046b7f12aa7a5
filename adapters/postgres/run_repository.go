package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/domain/curve"
	"rarscale/internal/errors"
	"rarscale/ports"
)

// RunRepositoryImpl implements ResultRepositoryPort for PostgreSQL. Runs are
// append-only; the per-galaxy rows keep their analysis order via position.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.ResultRepositoryPort {
	return &RunRepositoryImpl{db: db}
}

// StoreRun persists one completed run and all of its galaxy rows atomically.
func (r *RunRepositoryImpl) StoreRun(ctx context.Context, record analysis.RunRecord) error {
	ensembleJSON, err := json.Marshal(record.Ensemble)
	if err != nil {
		return errors.Wrap(err, "failed to encode ensemble result")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, seed, quality_tier, fingerprint, ensemble)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID, record.CreatedAt.Time(), record.Seed, record.QualityTier,
		record.Fingerprint, ensembleJSON)
	if err != nil {
		return errors.Wrap(err, "failed to insert run")
	}

	for i, g := range record.Galaxies {
		innerJSON, err := json.Marshal(g.Inner)
		if err != nil {
			return errors.Wrap(err, "failed to encode inner fit")
		}
		outerJSON, err := json.Marshal(g.Outer)
		if err != nil {
			return errors.Wrap(err, "failed to encode outer fit")
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_galaxies (
				run_id, position, galaxy, morphology, inner_fit, outer_fit,
				ratio, ratio_err, z_score, excluded, reason
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			record.ID, i, g.Galaxy, g.Morphology, innerJSON, outerJSON,
			g.Ratio, g.RatioErr, g.Z, g.Excluded, g.Reason)
		if err != nil {
			return errors.Wrap(err, "failed to insert galaxy result")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit run")
	}
	return nil
}

// ListRuns returns the newest runs first. Galaxy rows are not loaded here;
// use GetGalaxyResults for the per-galaxy table.
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]analysis.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, seed, quality_tier, fingerprint, ensemble
		FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	var records []analysis.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetRun loads one run with its galaxy rows.
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*analysis.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, seed, quality_tier, fingerprint, ensemble
		FROM runs WHERE id = $1`, id)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundFrom(core.NewNotFoundError("run", string(id)))
	}
	if err != nil {
		return nil, err
	}

	record.Galaxies, err = r.GetGalaxyResults(ctx, id)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetGalaxyResults returns the per-galaxy rows of a run in analysis order.
func (r *RunRepositoryImpl) GetGalaxyResults(ctx context.Context, id core.RunID) ([]analysis.GalaxyRadialResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT galaxy, morphology, inner_fit, outer_fit, ratio, ratio_err, z_score, excluded, reason
		FROM run_galaxies WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load galaxy results")
	}
	defer rows.Close()

	var results []analysis.GalaxyRadialResult
	for rows.Next() {
		var g analysis.GalaxyRadialResult
		var galaxy, morphology string
		var innerJSON, outerJSON []byte
		if err := rows.Scan(&galaxy, &morphology, &innerJSON, &outerJSON,
			&g.Ratio, &g.RatioErr, &g.Z, &g.Excluded, &g.Reason); err != nil {
			return nil, errors.Wrap(err, "failed to scan galaxy result")
		}
		g.Galaxy = core.GalaxyID(galaxy)
		g.Morphology = curve.Morphology(morphology)
		if err := json.Unmarshal(innerJSON, &g.Inner); err != nil {
			return nil, errors.Wrap(err, "failed to decode inner fit")
		}
		if err := json.Unmarshal(outerJSON, &g.Outer); err != nil {
			return nil, errors.Wrap(err, "failed to decode outer fit")
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (analysis.RunRecord, error) {
	var record analysis.RunRecord
	var id, fingerprint string
	var createdAt time.Time
	var ensembleJSON []byte

	if err := row.Scan(&id, &createdAt, &record.Seed, &record.QualityTier, &fingerprint, &ensembleJSON); err != nil {
		if err == sql.ErrNoRows {
			return record, err
		}
		return record, errors.Wrap(err, "failed to scan run")
	}
	record.ID = core.RunID(id)
	record.CreatedAt = core.NewTimestamp(createdAt)
	record.Fingerprint = core.Hash(fingerprint)

	if err := json.Unmarshal(ensembleJSON, &record.Ensemble); err != nil {
		return record, errors.Wrap(err, "failed to decode ensemble result")
	}
	return record, nil
}
