package study

import (
	"database/sql/driver"
	"fmt"
	"time"

	"vbtlab/domain/core"
)

// Fixed acquisition metadata stamped on every measurement.
const (
	DeviceLinearTransducer = "Linear Position Transducer"
	DeviceSamplingRateHz   = 1000
	CalibrationPassed      = "passed"
)

// Physical bounds shared by the synthesizer and assembly-time validation.
const (
	// VelocityFloor is the hard lower bound on mean concentric velocity.
	// The synthesizer clamps to it; a value below it after generation is
	// a degeneracy, not a clamping case.
	VelocityFloor = 0.1

	TechniqueMin = 1.0
	TechniqueMax = 10.0

	DataQualityMin = 0.95
	DataQualityMax = 1.0
)

// Measurement is one repetition-level record from a simulated VBT session.
// Field names and units are the exported column contract: velocity in m/s,
// duration in s, range of motion in m, force in N, power in W, RFD in N/s.
type Measurement struct {
	ParticipantID          core.ParticipantID `json:"participant_id" db:"participant_id"`
	SessionDate            time.Time          `json:"session_date" db:"session_date"`
	Exercise               Exercise           `json:"exercise" db:"exercise"`
	LoadKg                 float64            `json:"load_kg" db:"load_kg"`
	LoadPercent1RM         float64            `json:"load_percent_1rm" db:"load_percent_1rm"`
	RepNumber              int                `json:"rep_number" db:"rep_number"`
	MeanConcentricVelocity float64            `json:"mean_concentric_velocity" db:"mean_concentric_velocity"`
	PeakVelocity           float64            `json:"peak_velocity" db:"peak_velocity"`
	DurationConcentric     float64            `json:"duration_concentric" db:"duration_concentric"`
	RangeOfMotion          float64            `json:"range_of_motion" db:"range_of_motion"`
	PeakForce              float64            `json:"peak_force" db:"peak_force"`
	MeanPower              float64            `json:"mean_power" db:"mean_power"`
	RateOfForceDevelopment float64            `json:"rate_of_force_development" db:"rate_of_force_development"`
	TechniqueRating        float64            `json:"technique_rating" db:"technique_rating"`
	DataQuality            float64            `json:"data_quality" db:"data_quality"`
	MeasurementDevice      string             `json:"measurement_device" db:"measurement_device"`
	SamplingRate           int                `json:"sampling_rate" db:"sampling_rate"`
	CalibrationStatus      string             `json:"calibration_status" db:"calibration_status"`
}

// Validate checks the measurement against the model's physical bounds.
// Violations are degeneracies: a draw escaped calibration despite the
// intended clamps, so the run must abort with the entity and field named.
func (m Measurement) Validate() error {
	entity := fmt.Sprintf("measurement %s/%s/load %g%%/rep %d",
		m.ParticipantID, m.Exercise.Name(), m.LoadPercent1RM, m.RepNumber)

	if m.LoadKg <= 0 {
		return core.NewDegeneracyError(entity, "load_kg", m.LoadKg)
	}
	if m.MeanConcentricVelocity < VelocityFloor {
		return core.NewDegeneracyError(entity, "mean_concentric_velocity", m.MeanConcentricVelocity)
	}
	if m.PeakVelocity <= 0 {
		return core.NewDegeneracyError(entity, "peak_velocity", m.PeakVelocity)
	}
	if m.DurationConcentric <= 0 {
		return core.NewDegeneracyError(entity, "duration_concentric", m.DurationConcentric)
	}
	if m.RangeOfMotion <= 0 {
		return core.NewDegeneracyError(entity, "range_of_motion", m.RangeOfMotion)
	}
	if m.PeakForce <= 0 {
		return core.NewDegeneracyError(entity, "peak_force", m.PeakForce)
	}
	if m.TechniqueRating < TechniqueMin || m.TechniqueRating > TechniqueMax {
		return core.NewDegeneracyError(entity, "technique_rating", m.TechniqueRating)
	}
	if m.DataQuality < DataQualityMin || m.DataQuality > DataQualityMax {
		return core.NewDegeneracyError(entity, "data_quality", m.DataQuality)
	}
	return nil
}

// Value implements driver.Valuer so the exercise column stores its name.
func (e Exercise) Value() (driver.Value, error) {
	if e.IsZero() {
		return nil, fmt.Errorf("cannot store zero exercise")
	}
	return e.name, nil
}

// Scan implements sql.Scanner, resolving a stored name to its variant.
func (e *Exercise) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return e.UnmarshalText([]byte(v))
	case []byte:
		return e.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into Exercise", src)
}
