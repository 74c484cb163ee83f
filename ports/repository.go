package ports

import (
	"context"

	"vbtlab/domain/core"
	"vbtlab/domain/study"
)

// DatasetRepository defines the interface for dataset storage operations
type DatasetRepository interface {
	// SaveDataset stores a generation result atomically: manifest, quality
	// report, participants and measurements.
	SaveDataset(ctx context.Context, ds *study.Dataset, report *study.QualityReport) error

	// GetManifest loads the manifest for a stored dataset.
	GetManifest(ctx context.Context, id core.DatasetID) (*study.Manifest, error)

	// GetQualityReport loads the stored quality report for a dataset.
	GetQualityReport(ctx context.Context, id core.DatasetID) (*study.QualityReport, error)

	// ListParticipants loads the participants table in generation order.
	ListParticipants(ctx context.Context, id core.DatasetID) ([]study.Participant, error)

	// ListMeasurements loads the measurements table in generation order.
	ListMeasurements(ctx context.Context, id core.DatasetID) ([]study.Measurement, error)

	// ListManifests lists stored manifests, newest first.
	ListManifests(ctx context.Context, limit, offset int) ([]study.Manifest, error)

	// DeleteDataset removes a stored dataset and its rows.
	DeleteDataset(ctx context.Context, id core.DatasetID) error
}
