package synth

import (
	"fmt"
	"time"

	"vbtlab/domain/core"
	"vbtlab/domain/protocol"
	"vbtlab/domain/study"
)

// Config holds the parameters of one generation run.
type Config struct {
	ParticipantCount int
	Seed             int64
	StudyStartDate   time.Time
	LoadPercentages  []float64
	RepsPerLoad      int
}

// DefaultConfig returns the calibrated research defaults: the protocol's
// load progression over a 100-participant cohort, anchored to a fixed study
// start so runs stay reproducible.
func DefaultConfig() Config {
	return Config{
		ParticipantCount: 100,
		Seed:             42,
		StudyStartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		LoadPercentages:  protocol.CalibratedLoadPercentages(),
		RepsPerLoad:      protocol.RepetitionsPerLoad,
	}
}

// Validate rejects malformed requests before any draw happens.
func (c Config) Validate() error {
	if c.ParticipantCount <= 0 {
		return core.NewInvalidParameterError("participant_count", "must be positive")
	}
	if c.StudyStartDate.IsZero() {
		return core.NewInvalidParameterError("study_start_date", "cannot be zero")
	}
	if len(c.LoadPercentages) == 0 {
		return core.NewInvalidParameterError("load_percentages", "cannot be empty")
	}
	prev := 0.0
	for _, pct := range c.LoadPercentages {
		if !protocol.IsCalibratedLoad(pct) {
			return core.NewInvalidParameterError("load_percentages",
				fmt.Sprintf("%g%% outside the calibrated set", pct))
		}
		if pct <= prev {
			return core.NewInvalidParameterError("load_percentages", "must be strictly increasing")
		}
		prev = pct
	}
	if c.RepsPerLoad <= 0 {
		return core.NewInvalidParameterError("reps_per_load", "must be positive")
	}
	return nil
}

// MeasurementsPerParticipant returns the block size the config implies.
func (c Config) MeasurementsPerParticipant() int {
	return len(study.Exercises()) * len(c.LoadPercentages) * c.RepsPerLoad
}
