package migration

import (
	"context"
	"fmt"

	"vbtlab/internal/errors"

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
	if err := r.createManifestsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create dataset_manifests table")
	}

	if err := r.createParticipantsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create participants table")
	}

	if err := r.createMeasurementsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create vbt_measurements table")
	}

	if err := r.createQualityReportsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create quality_reports table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createManifestsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dataset_manifests (
			dataset_id VARCHAR(64) PRIMARY KEY,
			run_id VARCHAR(64) NOT NULL,
			seed BIGINT NOT NULL,
			participant_count INTEGER NOT NULL,
			measurement_count INTEGER NOT NULL,
			study_start_date DATE NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createParticipantsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS participants (
			dataset_id VARCHAR(64) NOT NULL REFERENCES dataset_manifests(dataset_id) ON DELETE CASCADE,
			row_seq INTEGER NOT NULL,
			participant_id VARCHAR(16) NOT NULL,
			age DOUBLE PRECISION NOT NULL,
			body_mass DOUBLE PRECISION NOT NULL,
			height DOUBLE PRECISION NOT NULL,
			training_experience DOUBLE PRECISION NOT NULL,
			squat_1rm DOUBLE PRECISION NOT NULL,
			bench_1rm DOUBLE PRECISION NOT NULL,
			deadlift_1rm DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (dataset_id, row_seq),
			UNIQUE (dataset_id, participant_id)
		)
	`)
	return err
}

func (r *MigrationRunner) createMeasurementsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS vbt_measurements (
			dataset_id VARCHAR(64) NOT NULL REFERENCES dataset_manifests(dataset_id) ON DELETE CASCADE,
			row_seq INTEGER NOT NULL,
			participant_id VARCHAR(16) NOT NULL,
			session_date DATE NOT NULL,
			exercise VARCHAR(20) NOT NULL,
			load_kg DOUBLE PRECISION NOT NULL,
			load_percent_1rm DOUBLE PRECISION NOT NULL,
			rep_number INTEGER NOT NULL,
			mean_concentric_velocity DOUBLE PRECISION NOT NULL,
			peak_velocity DOUBLE PRECISION NOT NULL,
			duration_concentric DOUBLE PRECISION NOT NULL,
			range_of_motion DOUBLE PRECISION NOT NULL,
			peak_force DOUBLE PRECISION NOT NULL,
			mean_power DOUBLE PRECISION NOT NULL,
			rate_of_force_development DOUBLE PRECISION NOT NULL,
			technique_rating DOUBLE PRECISION NOT NULL,
			data_quality DOUBLE PRECISION NOT NULL,
			measurement_device VARCHAR(100) NOT NULL,
			sampling_rate INTEGER NOT NULL,
			calibration_status VARCHAR(20) NOT NULL,
			PRIMARY KEY (dataset_id, row_seq),
			FOREIGN KEY (dataset_id, participant_id)
				REFERENCES participants(dataset_id, participant_id) ON DELETE CASCADE
		)
	`)
	return err
}

func (r *MigrationRunner) createQualityReportsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS quality_reports (
			dataset_id VARCHAR(64) PRIMARY KEY REFERENCES dataset_manifests(dataset_id) ON DELETE CASCADE,
			report JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_manifests_created_at ON dataset_manifests(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_manifests_run_id ON dataset_manifests(run_id)",

		"CREATE INDEX IF NOT EXISTS idx_measurements_participant ON vbt_measurements(dataset_id, participant_id)",
		"CREATE INDEX IF NOT EXISTS idx_measurements_exercise ON vbt_measurements(dataset_id, exercise)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			fmt.Printf("Warning: failed to create index: %v\n", err)
		}
	}

	return nil
}
