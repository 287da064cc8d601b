package migration

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"gowelch/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// Execer is the subset of sqlx.DB the individual steps need.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	return r.apply(ctx, db)
}

func (r *MigrationRunner) apply(ctx context.Context, db Execer) error {
	if err := r.createAnalysesTable(ctx, db); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to create welch_analyses table"))
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to create indexes"))
	}

	return nil
}

func (r *MigrationRunner) createAnalysesTable(ctx context.Context, db Execer) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS welch_analyses (
			id UUID PRIMARY KEY,
			input_hash CHAR(64) NOT NULL,
			group1_label TEXT NOT NULL DEFAULT '',
			group2_label TEXT NOT NULL DEFAULT '',
			t_statistic DOUBLE PRECISION NOT NULL,
			p_value DOUBLE PRECISION NOT NULL,
			significant BOOLEAN NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db Execer) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_welch_analyses_created_at ON welch_analyses(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_welch_analyses_input_hash ON welch_analyses(input_hash)",
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
