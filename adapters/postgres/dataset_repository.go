package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"vbtlab/domain/core"
	"vbtlab/domain/study"
	"vbtlab/ports"
)

// Postgres caps a statement at 65535 bind parameters; chunk sizes keep the
// widest insert (20 columns) well under that.
const (
	participantChunkSize = 1000
	measurementChunkSize = 500
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// participantRow binds a participant to its dataset and table position.
type participantRow struct {
	DatasetID core.DatasetID `db:"dataset_id"`
	RowSeq    int            `db:"row_seq"`
	study.Participant
}

// measurementRow binds a measurement to its dataset and table position.
type measurementRow struct {
	DatasetID core.DatasetID `db:"dataset_id"`
	RowSeq    int            `db:"row_seq"`
	study.Measurement
}

// SaveDataset stores the manifest, both tables and the quality report in one
// transaction so a stored dataset is always complete.
func (r *datasetRepository) SaveDataset(ctx context.Context, ds *study.Dataset, report *study.QualityReport) error {
	if ds == nil {
		return core.NewInvalidParameterError("dataset", "cannot be nil")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO dataset_manifests (
		dataset_id, run_id, seed, participant_count, measurement_count,
		study_start_date, fingerprint, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ds.Manifest.DatasetID, ds.Manifest.RunID, ds.Manifest.Seed,
		ds.Manifest.ParticipantCount, ds.Manifest.MeasurementCount,
		ds.Manifest.StudyStartDate, ds.Manifest.Fingerprint, ds.Manifest.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert manifest: %w", err)
	}

	pRows := make([]participantRow, 0, len(ds.Participants))
	for i, p := range ds.Participants {
		pRows = append(pRows, participantRow{DatasetID: ds.Manifest.DatasetID, RowSeq: i, Participant: p})
	}
	for start := 0; start < len(pRows); start += participantChunkSize {
		end := min(start+participantChunkSize, len(pRows))
		_, err := tx.NamedExecContext(ctx, `INSERT INTO participants (
			dataset_id, row_seq, participant_id, age, body_mass, height,
			training_experience, squat_1rm, bench_1rm, deadlift_1rm
		) VALUES (
			:dataset_id, :row_seq, :participant_id, :age, :body_mass, :height,
			:training_experience, :squat_1rm, :bench_1rm, :deadlift_1rm
		)`, pRows[start:end])
		if err != nil {
			return fmt.Errorf("failed to insert participants: %w", err)
		}
	}

	mRows := make([]measurementRow, 0, len(ds.Measurements))
	for i, m := range ds.Measurements {
		mRows = append(mRows, measurementRow{DatasetID: ds.Manifest.DatasetID, RowSeq: i, Measurement: m})
	}
	for start := 0; start < len(mRows); start += measurementChunkSize {
		end := min(start+measurementChunkSize, len(mRows))
		_, err := tx.NamedExecContext(ctx, `INSERT INTO vbt_measurements (
			dataset_id, row_seq, participant_id, session_date, exercise,
			load_kg, load_percent_1rm, rep_number, mean_concentric_velocity,
			peak_velocity, duration_concentric, range_of_motion, peak_force,
			mean_power, rate_of_force_development, technique_rating,
			data_quality, measurement_device, sampling_rate, calibration_status
		) VALUES (
			:dataset_id, :row_seq, :participant_id, :session_date, :exercise,
			:load_kg, :load_percent_1rm, :rep_number, :mean_concentric_velocity,
			:peak_velocity, :duration_concentric, :range_of_motion, :peak_force,
			:mean_power, :rate_of_force_development, :technique_rating,
			:data_quality, :measurement_device, :sampling_rate, :calibration_status
		)`, mRows[start:end])
		if err != nil {
			return fmt.Errorf("failed to insert measurements: %w", err)
		}
	}

	if report != nil {
		reportJSON, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal quality report: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quality_reports (dataset_id, report) VALUES ($1, $2)`,
			ds.Manifest.DatasetID, reportJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert quality report: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	return nil
}

// GetManifest retrieves a manifest by dataset ID
func (r *datasetRepository) GetManifest(ctx context.Context, id core.DatasetID) (*study.Manifest, error) {
	query := `SELECT dataset_id, run_id, seed, participant_count, measurement_count,
		study_start_date, fingerprint, created_at
	FROM dataset_manifests WHERE dataset_id = $1`

	m, err := scanManifest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("dataset", string(id))
		}
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}
	return m, nil
}

// GetQualityReport retrieves the stored quality report for a dataset
func (r *datasetRepository) GetQualityReport(ctx context.Context, id core.DatasetID) (*study.QualityReport, error) {
	var reportJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT report FROM quality_reports WHERE dataset_id = $1`, id,
	).Scan(&reportJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("quality report", string(id))
		}
		return nil, fmt.Errorf("failed to get quality report: %w", err)
	}

	var report study.QualityReport
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quality report: %w", err)
	}
	return &report, nil
}

// ListParticipants retrieves the participants table in generation order
func (r *datasetRepository) ListParticipants(ctx context.Context, id core.DatasetID) ([]study.Participant, error) {
	var participants []study.Participant
	err := r.db.SelectContext(ctx, &participants, `SELECT
		participant_id, age, body_mass, height, training_experience,
		squat_1rm, bench_1rm, deadlift_1rm
	FROM participants WHERE dataset_id = $1 ORDER BY row_seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	if len(participants) == 0 {
		if _, err := r.GetManifest(ctx, id); err != nil {
			return nil, err
		}
	}
	return participants, nil
}

// ListMeasurements retrieves the measurements table in generation order
func (r *datasetRepository) ListMeasurements(ctx context.Context, id core.DatasetID) ([]study.Measurement, error) {
	var measurements []study.Measurement
	err := r.db.SelectContext(ctx, &measurements, `SELECT
		participant_id, session_date, exercise, load_kg, load_percent_1rm,
		rep_number, mean_concentric_velocity, peak_velocity, duration_concentric,
		range_of_motion, peak_force, mean_power, rate_of_force_development,
		technique_rating, data_quality, measurement_device, sampling_rate,
		calibration_status
	FROM vbt_measurements WHERE dataset_id = $1 ORDER BY row_seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	if len(measurements) == 0 {
		if _, err := r.GetManifest(ctx, id); err != nil {
			return nil, err
		}
	}
	return measurements, nil
}

// ListManifests retrieves stored manifests with pagination, newest first
func (r *datasetRepository) ListManifests(ctx context.Context, limit, offset int) ([]study.Manifest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		dataset_id, run_id, seed, participant_count, measurement_count,
		study_start_date, fingerprint, created_at
	FROM dataset_manifests ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query manifests: %w", err)
	}
	defer rows.Close()

	var manifests []study.Manifest
	for rows.Next() {
		m, err := scanManifest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manifest: %w", err)
		}
		manifests = append(manifests, *m)
	}
	return manifests, rows.Err()
}

// DeleteDataset removes a dataset; child rows cascade
func (r *datasetRepository) DeleteDataset(ctx context.Context, id core.DatasetID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM dataset_manifests WHERE dataset_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return core.NewNotFoundError("dataset", string(id))
	}
	return nil
}

// rowScanner covers both sql.Row and sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanManifest(row rowScanner) (*study.Manifest, error) {
	var m study.Manifest
	var createdAt time.Time
	err := row.Scan(
		&m.DatasetID, &m.RunID, &m.Seed, &m.ParticipantCount, &m.MeasurementCount,
		&m.StudyStartDate, &m.Fingerprint, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = core.NewTimestamp(createdAt)
	return &m, nil
}
