package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"rarscale/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create runs table")
	}
	if err := r.createRunGalaxiesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create run_galaxies table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			seed BIGINT NOT NULL,
			quality_tier VARCHAR(20) NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			ensemble JSONB NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createRunGalaxiesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_galaxies (
			run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INT NOT NULL,
			galaxy VARCHAR(100) NOT NULL,
			morphology VARCHAR(20) NOT NULL,
			inner_fit JSONB NOT NULL,
			outer_fit JSONB NOT NULL,
			ratio DOUBLE PRECISION NOT NULL,
			ratio_err DOUBLE PRECISION NOT NULL,
			z_score DOUBLE PRECISION NOT NULL,
			excluded BOOLEAN NOT NULL DEFAULT false,
			reason TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_run_galaxies_galaxy ON run_galaxies(galaxy)
	`)
	return err
}
