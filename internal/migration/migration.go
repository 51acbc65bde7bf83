package migration

import (
	"context"
	"fmt"

	"datadesk/internal/errors"
	"datadesk/models"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	plans   []models.Plan
}

// NewRunner creates a migration runner that seeds the given plans
func NewRunner(plans []models.Plan) *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		plans:   plans,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Steps lists the schema statements in execution order. Every statement
// is idempotent so Run can execute on each start.
func Steps() []Step {
	return []Step{
		{Name: "plans table", SQL: `
			CREATE TABLE IF NOT EXISTS plans (
				id VARCHAR(50) PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				max_files INTEGER NOT NULL CHECK (max_files >= 0)
			)`},
		{Name: "users table", SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				email VARCHAR(255) NOT NULL DEFAULT '',
				username VARCHAR(100),
				plan_id VARCHAR(50) NOT NULL REFERENCES plans(id),
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)`},
		{Name: "files table", SQL: `
			CREATE TABLE IF NOT EXISTS files (
				id UUID PRIMARY KEY,
				owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				original_filename VARCHAR(255) NOT NULL,
				stored_name VARCHAR(255) NOT NULL UNIQUE,
				file_type VARCHAR(32) NOT NULL,
				size_bytes BIGINT NOT NULL,
				checksum CHAR(64) NOT NULL,
				summary TEXT,
				metadata JSONB,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)`},
		{Name: "file_results table", SQL: `
			CREATE TABLE IF NOT EXISTS file_results (
				id UUID PRIMARY KEY,
				file_id UUID NOT NULL REFERENCES files(id) ON DELETE CASCADE,
				owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				kind VARCHAR(32) NOT NULL,
				prompt TEXT,
				content TEXT NOT NULL,
				content_html TEXT,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)`},
		{Name: "files owner index", SQL: `CREATE INDEX IF NOT EXISTS idx_files_owner_created ON files(owner_id, created_at DESC)`},
		{Name: "results owner index", SQL: `CREATE INDEX IF NOT EXISTS idx_file_results_owner_created ON file_results(owner_id, created_at DESC)`},
		{Name: "results file index", SQL: `CREATE INDEX IF NOT EXISTS idx_file_results_file ON file_results(file_id)`},
	}
}

// Step is one named schema statement
type Step struct {
	Name string
	SQL  string
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range Steps() {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to create %s", step.Name))
		}
	}
	if err := r.seedPlans(ctx, db); err != nil {
		return errors.Wrap(err, "failed to seed plans")
	}
	return nil
}

// seedPlans upserts the configured plans so limit changes apply on restart
func (r *MigrationRunner) seedPlans(ctx context.Context, db *sqlx.DB) error {
	for _, p := range r.plans {
		_, err := db.NamedExecContext(ctx, `
			INSERT INTO plans (id, name, max_files)
			VALUES (:id, :name, :max_files)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, max_files = EXCLUDED.max_files
		`, p)
		if err != nil {
			return fmt.Errorf("plan %s: %w", p.ID, err)
		}
	}
	return nil
}
