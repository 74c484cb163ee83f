package synth

import (
	"math/rand/v2"

	"vbtlab/domain/core"
	"vbtlab/domain/study"
	"vbtlab/ports"

	"gonum.org/v1/gonum/stat/distuv"
)

// ParticipantGenerator draws the participants table from population-calibrated
// distributions. Every draw for a participant comes from that participant's
// own sub-stream, in a fixed order, so the table is identical no matter how
// participants are scheduled.
type ParticipantGenerator struct {
	cfg Config
}

// NewParticipantGenerator creates a generator for one run's config.
func NewParticipantGenerator(cfg Config) *ParticipantGenerator {
	return &ParticipantGenerator{cfg: cfg}
}

// GenerateAll draws the full cohort in index order.
func (g *ParticipantGenerator) GenerateAll(streams ports.RNG) ([]study.Participant, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}

	participants := make([]study.Participant, 0, g.cfg.ParticipantCount)
	for i := 1; i <= g.cfg.ParticipantCount; i++ {
		p, err := g.GenerateOne(i, streams.ParticipantStream(i))
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// GenerateOne draws the participant at a 1-based index from the given
// sub-stream. Draw order is fixed: age, body mass, height, training
// experience, then the squat, bench and deadlift 1RM noise terms. The stream
// is left positioned for the participant's measurement draws.
func (g *ParticipantGenerator) GenerateOne(index int, src *rand.Rand) (study.Participant, error) {
	age := drawNormal(src, 25, 4)
	bodyMass := drawNormal(src, 75, 12)       // kg
	height := drawNormal(src, 175, 8)         // cm
	experience := drawShiftedExp(src, 2, 0.5) // years, strictly positive

	p := study.Participant{
		ID:                 core.NewParticipantID(index),
		Age:                age,
		BodyMass:           bodyMass,
		Height:             height,
		TrainingExperience: experience,
	}
	for _, e := range study.Exercises() {
		oneRM := e.ExpectedOneRepMax(bodyMass, experience) + drawNormal(src, 0, e.OneRepMaxNoiseSD())
		switch e {
		case study.Squat:
			p.Squat1RM = oneRM
		case study.Bench:
			p.Bench1RM = oneRM
		case study.Deadlift:
			p.Deadlift1RM = oneRM
		}
	}

	if err := p.Validate(); err != nil {
		return study.Participant{}, err
	}
	return p, nil
}

func drawNormal(src *rand.Rand, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: src}.Rand()
}

// drawShiftedExp draws Exponential(mean) + shift, guaranteeing positivity.
func drawShiftedExp(src *rand.Rand, mean, shift float64) float64 {
	return distuv.Exponential{Rate: 1 / mean, Src: src}.Rand() + shift
}
