package dataset

import (
	"bytes"
	"fmt"
	"strconv"

	"vbtlab/domain/core"
	"vbtlab/domain/study"
)

// Assembler links the participants and measurements tables into a dataset,
// enforcing referential integrity and computing the canonical fingerprint
// the determinism contract is checked against.
type Assembler struct{}

// NewAssembler creates an assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble verifies that every measurement references a participant that
// appears exactly once in the participants table, then returns the dataset
// with its fingerprint. Violations are fatal: they indicate a generator bug,
// not bad input.
func (a *Assembler) Assemble(participants []study.Participant, measurements []study.Measurement) (*study.Dataset, core.Fingerprint, error) {
	if len(participants) == 0 {
		return nil, "", core.NewInvalidParameterError("participants", "cannot be empty")
	}

	seen := make(map[core.ParticipantID]int, len(participants))
	for _, p := range participants {
		seen[p.ID]++
		if seen[p.ID] > 1 {
			return nil, "", fmt.Errorf("%w: participant %s appears %d times in the participants table",
				core.ErrReferentialIntegrity, p.ID, seen[p.ID])
		}
	}
	for _, m := range measurements {
		if seen[m.ParticipantID] == 0 {
			return nil, "", core.NewIntegrityError(m.ParticipantID.String())
		}
	}

	fingerprint := core.NewFingerprint(canonicalBytes(participants, measurements))

	ds := &study.Dataset{
		ID:           core.DatasetID(core.NewID()),
		Participants: participants,
		Measurements: measurements,
	}
	return ds, fingerprint, nil
}

// canonicalBytes serializes both tables at full float precision in row
// order. Two runs produce the same fingerprint exactly when every generated
// value matches bit-for-bit.
func canonicalBytes(participants []study.Participant, measurements []study.Measurement) []byte {
	var buf bytes.Buffer

	for _, p := range participants {
		buf.WriteString(p.ID.String())
		writeField(&buf, p.Age)
		writeField(&buf, p.BodyMass)
		writeField(&buf, p.Height)
		writeField(&buf, p.TrainingExperience)
		writeField(&buf, p.Squat1RM)
		writeField(&buf, p.Bench1RM)
		writeField(&buf, p.Deadlift1RM)
		buf.WriteByte('\n')
	}

	for _, m := range measurements {
		buf.WriteString(m.ParticipantID.String())
		buf.WriteByte('|')
		buf.WriteString(m.SessionDate.Format("2006-01-02"))
		buf.WriteByte('|')
		buf.WriteString(m.Exercise.Name())
		writeField(&buf, m.LoadKg)
		writeField(&buf, m.LoadPercent1RM)
		buf.WriteByte('|')
		buf.WriteString(strconv.Itoa(m.RepNumber))
		writeField(&buf, m.MeanConcentricVelocity)
		writeField(&buf, m.PeakVelocity)
		writeField(&buf, m.DurationConcentric)
		writeField(&buf, m.RangeOfMotion)
		writeField(&buf, m.PeakForce)
		writeField(&buf, m.MeanPower)
		writeField(&buf, m.RateOfForceDevelopment)
		writeField(&buf, m.TechniqueRating)
		writeField(&buf, m.DataQuality)
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func writeField(buf *bytes.Buffer, v float64) {
	buf.WriteByte('|')
	buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}
