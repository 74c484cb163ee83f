package synth

import (
	"math"
	"math/rand/v2"

	"vbtlab/domain/study"

	"gonum.org/v1/gonum/stat/distuv"
)

// gravity is the acceleration used by the static force model (m/s^2).
const gravity = 9.81

// sessionWindowDays is the span over which session dates scatter after the
// study start.
const sessionWindowDays = 30

// MeasurementSynthesizer produces repetition-level records from the
// velocity-load model: exercise regression, per-block individual variation,
// within-set fatigue, and instrument-grade noise on the derived quantities.
type MeasurementSynthesizer struct {
	cfg Config
}

// NewMeasurementSynthesizer creates a synthesizer for one run's config.
func NewMeasurementSynthesizer(cfg Config) *MeasurementSynthesizer {
	return &MeasurementSynthesizer{cfg: cfg}
}

// SynthesizeFor generates the participant's full measurement block,
// continuing on the sub-stream that produced the participant. Traversal is
// fixed: exercise (squat, bench, deadlift), then load percentage ascending,
// then repetition. One individual factor is drawn per (exercise, load)
// block; per rep the draws are, in order: peak multiplier, duration, range
// of motion, technique noise, session offset, data quality.
func (s *MeasurementSynthesizer) SynthesizeFor(p study.Participant, src *rand.Rand) ([]study.Measurement, error) {
	measurements := make([]study.Measurement, 0, s.cfg.MeasurementsPerParticipant())

	for _, exercise := range study.Exercises() {
		oneRM, err := p.OneRepMax(exercise)
		if err != nil {
			return nil, err
		}

		for _, loadPct := range s.cfg.LoadPercentages {
			loadKg := oneRM * loadPct / 100
			baseVelocity := exercise.BaseVelocity(loadPct)

			// Inter-individual variability, not rep-to-rep noise: drawn once
			// per block and reused across its reps.
			individualFactor := drawNormal(src, 1.0, 0.12)

			for rep := 1; rep <= s.cfg.RepsPerLoad; rep++ {
				m, err := s.synthesizeRep(p, exercise, loadKg, loadPct, rep, baseVelocity, individualFactor, src)
				if err != nil {
					return nil, err
				}
				measurements = append(measurements, m)
			}
		}
	}
	return measurements, nil
}

func (s *MeasurementSynthesizer) synthesizeRep(
	p study.Participant,
	exercise study.Exercise,
	loadKg, loadPct float64,
	rep int,
	baseVelocity, individualFactor float64,
	src *rand.Rand,
) (study.Measurement, error) {
	// 3% velocity loss per rep within the set
	fatigueFactor := 1.0 - float64(rep-1)*0.03

	// Hard floor, not a rejection: barely-moving grinds are real data
	meanVelocity := math.Max(study.VelocityFloor, baseVelocity*individualFactor*fatigueFactor)

	peakVelocity := meanVelocity * drawNormal(src, 1.25, 0.05)
	duration := drawNormal(src, 1.2, 0.2)  // seconds
	rom := drawNormal(src, 0.65, 0.08)     // meters

	// Static force model; power and RFD derive from it
	force := loadKg * gravity
	power := force * meanVelocity
	rfd := force / (duration * 0.3)

	// Expert rating drifts down ~0.02 per %1RM above the lightest load
	technique := drawNormal(src, 8.5-(loadPct-50)*0.02, 0.8)
	technique = math.Min(study.TechniqueMax, math.Max(study.TechniqueMin, technique))

	sessionDate := s.cfg.StudyStartDate.AddDate(0, 0, src.IntN(sessionWindowDays))
	quality := distuv.Uniform{Min: study.DataQualityMin, Max: study.DataQualityMax, Src: src}.Rand()

	m := study.Measurement{
		ParticipantID:          p.ID,
		SessionDate:            sessionDate,
		Exercise:               exercise,
		LoadKg:                 loadKg,
		LoadPercent1RM:         loadPct,
		RepNumber:              rep,
		MeanConcentricVelocity: meanVelocity,
		PeakVelocity:           peakVelocity,
		DurationConcentric:     duration,
		RangeOfMotion:          rom,
		PeakForce:              force,
		MeanPower:              power,
		RateOfForceDevelopment: rfd,
		TechniqueRating:        technique,
		DataQuality:            quality,
		MeasurementDevice:      study.DeviceLinearTransducer,
		SamplingRate:           study.DeviceSamplingRateHz,
		CalibrationStatus:      study.CalibrationPassed,
	}

	if err := m.Validate(); err != nil {
		return study.Measurement{}, err
	}
	return m, nil
}
