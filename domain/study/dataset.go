package study

import (
	"time"

	"vbtlab/domain/core"
)

// Dataset is an assembled generation result: the two linked tables plus the
// manifest that makes the run reproducible and verifiable.
type Dataset struct {
	ID           core.DatasetID `json:"dataset_id"`
	Participants []Participant  `json:"participants"`
	Measurements []Measurement  `json:"measurements"`
	Manifest     Manifest       `json:"manifest"`
}

// Manifest is the truth source for a generation run. Identical seed and
// request parameters must reproduce an identical fingerprint.
type Manifest struct {
	RunID            core.RunID       `json:"run_id"`
	DatasetID        core.DatasetID   `json:"dataset_id"`
	Seed             int64            `json:"seed"`
	ParticipantCount int              `json:"participant_count"`
	MeasurementCount int              `json:"measurement_count"`
	StudyStartDate   time.Time        `json:"study_start_date"`
	Fingerprint      core.Fingerprint `json:"fingerprint"`
	CreatedAt        core.Timestamp   `json:"created_at"`
}

// NewManifest creates a manifest for an assembled dataset
func NewManifest(
	runID core.RunID,
	datasetID core.DatasetID,
	seed int64,
	participantCount int,
	measurementCount int,
	studyStartDate time.Time,
	fingerprint core.Fingerprint,
) Manifest {
	return Manifest{
		RunID:            runID,
		DatasetID:        datasetID,
		Seed:             seed,
		ParticipantCount: participantCount,
		MeasurementCount: measurementCount,
		StudyStartDate:   studyStartDate,
		Fingerprint:      fingerprint,
		CreatedAt:        core.Now(),
	}
}

// Validate checks if the manifest is complete
func (m Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewInvalidParameterError("manifest", "run_id cannot be empty")
	}
	if core.ID(m.DatasetID).IsEmpty() {
		return core.NewInvalidParameterError("manifest", "dataset_id cannot be empty")
	}
	if m.ParticipantCount <= 0 {
		return core.NewInvalidParameterError("manifest", "participant_count must be positive")
	}
	if m.MeasurementCount <= 0 {
		return core.NewInvalidParameterError("manifest", "measurement_count must be positive")
	}
	if core.Hash(m.Fingerprint).IsEmpty() {
		return core.NewInvalidParameterError("manifest", "fingerprint cannot be empty")
	}
	return nil
}
