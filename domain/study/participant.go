package study

import (
	"fmt"

	"vbtlab/domain/core"
)

// Participant is one synthetic study subject: demographics, anthropometrics
// and the estimated one-rep-max for each calibrated lift. Records are
// immutable once generated; field names match the exported column contract.
type Participant struct {
	ID                 core.ParticipantID `json:"participant_id" db:"participant_id"`
	Age                float64            `json:"age" db:"age"`
	BodyMass           float64            `json:"body_mass" db:"body_mass"`
	Height             float64            `json:"height" db:"height"`
	TrainingExperience float64            `json:"training_experience" db:"training_experience"`
	Squat1RM           float64            `json:"squat_1rm" db:"squat_1rm"`
	Bench1RM           float64            `json:"bench_1rm" db:"bench_1rm"`
	Deadlift1RM        float64            `json:"deadlift_1rm" db:"deadlift_1rm"`
}

// OneRepMax returns the participant's estimated 1RM for the given lift.
func (p Participant) OneRepMax(exercise Exercise) (float64, error) {
	switch exercise {
	case Squat:
		return p.Squat1RM, nil
	case Bench:
		return p.Bench1RM, nil
	case Deadlift:
		return p.Deadlift1RM, nil
	}
	return 0, core.NewInvalidParameterError("exercise", fmt.Sprintf("unknown variant %q", exercise.Name()))
}

// Validate checks the participant against the model's physical bounds.
// A violation means a distribution draw escaped its calibration and the
// whole run must abort.
func (p Participant) Validate() error {
	entity := fmt.Sprintf("participant %s", p.ID)
	if p.Age <= 0 {
		return core.NewDegeneracyError(entity, "age", p.Age)
	}
	if p.BodyMass <= 0 {
		return core.NewDegeneracyError(entity, "body_mass", p.BodyMass)
	}
	if p.Height <= 0 {
		return core.NewDegeneracyError(entity, "height", p.Height)
	}
	if p.TrainingExperience <= 0 {
		return core.NewDegeneracyError(entity, "training_experience", p.TrainingExperience)
	}
	if p.Squat1RM <= 0 {
		return core.NewDegeneracyError(entity, "squat_1rm", p.Squat1RM)
	}
	if p.Bench1RM <= 0 {
		return core.NewDegeneracyError(entity, "bench_1rm", p.Bench1RM)
	}
	if p.Deadlift1RM <= 0 {
		return core.NewDegeneracyError(entity, "deadlift_1rm", p.Deadlift1RM)
	}
	return nil
}
