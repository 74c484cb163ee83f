package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"vbtlab/domain/core"
	"vbtlab/domain/protocol"
	"vbtlab/domain/study"
	"vbtlab/ports"
)

const (
	metadataJSON   = "dataset_metadata.json"
	mlProtocolJSON = "ml_training_protocol.json"

	datasetName = "Academic VBT Dataset"
)

// MetadataWriter emits the dataset metadata document and the ML training
// protocol document that travel alongside the tables.
type MetadataWriter struct {
	dir string
}

var _ ports.DatasetWriter = (*MetadataWriter)(nil)

func NewMetadataWriter(dir string) *MetadataWriter {
	return &MetadataWriter{dir: dir}
}

type metadataDocument struct {
	DatasetInfo        datasetInfo                  `json:"dataset_info"`
	CollectionProtocol protocol.CollectionProtocol  `json:"data_collection_protocol"`
	StatisticalPower   protocol.StatisticalPower    `json:"statistical_power"`
	DataQuality        protocol.DataQualityStandard `json:"data_quality"`
	Provenance         provenance                   `json:"provenance"`
	QualityReport      *study.QualityReport         `json:"quality_report,omitempty"`
}

type datasetInfo struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Created      core.Timestamp `json:"created"`
	Participants int            `json:"participants"`
	Measurements int            `json:"measurements"`
	Exercises    []string       `json:"exercises"`
	LoadRange    string         `json:"load_range"`
}

type provenance struct {
	RunID       core.RunID       `json:"run_id"`
	DatasetID   core.DatasetID   `json:"dataset_id"`
	Seed        int64            `json:"seed"`
	Fingerprint core.Fingerprint `json:"fingerprint"`
}

func (w *MetadataWriter) Write(ctx context.Context, ds *study.Dataset, report *study.QualityReport) ([]string, error) {
	if ds == nil {
		return nil, fmt.Errorf("metadata export requires a dataset")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	names := make([]string, 0, len(study.Exercises()))
	for _, ex := range study.Exercises() {
		names = append(names, ex.Name())
	}
	loads := protocol.CalibratedLoadPercentages()
	doc := metadataDocument{
		DatasetInfo: datasetInfo{
			Name:         datasetName,
			Version:      protocol.Version,
			Created:      ds.Manifest.CreatedAt,
			Participants: ds.Manifest.ParticipantCount,
			Measurements: ds.Manifest.MeasurementCount,
			Exercises:    names,
			LoadRange:    fmt.Sprintf("%s-%s%% 1RM", fToStr(loads[0], 0), fToStr(loads[len(loads)-1], 0)),
		},
		CollectionProtocol: protocol.DefaultCollectionProtocol(),
		StatisticalPower:   protocol.DefaultStatisticalPower(),
		DataQuality:        protocol.DefaultDataQualityStandard(),
		Provenance: provenance{
			RunID:       ds.Manifest.RunID,
			DatasetID:   ds.Manifest.DatasetID,
			Seed:        ds.Manifest.Seed,
			Fingerprint: ds.Manifest.Fingerprint,
		},
		QualityReport: report,
	}

	mPath := filepath.Join(w.dir, metadataJSON)
	if err := writeJSONFile(mPath, doc); err != nil {
		return nil, fmt.Errorf("failed to write dataset metadata: %w", err)
	}
	log.Printf("[Export] Wrote %s", mPath)

	tPath := filepath.Join(w.dir, mlProtocolJSON)
	if err := writeJSONFile(tPath, protocol.DefaultMLTrainingProtocol()); err != nil {
		return nil, fmt.Errorf("failed to write ml training protocol: %w", err)
	}
	log.Printf("[Export] Wrote %s", tPath)

	return []string{mPath, tPath}, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
