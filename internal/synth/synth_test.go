package synth

import (
	"math"
	"testing"
	"time"

	"vbtlab/adapters/rng"
	"vbtlab/domain/core"
	"vbtlab/domain/study"
)

func generateDataset(t *testing.T, cfg Config) ([]study.Participant, []study.Measurement) {
	t.Helper()

	streams := rng.New(cfg.Seed)
	participants := NewParticipantGenerator(cfg)
	synthesizer := NewMeasurementSynthesizer(cfg)

	allParticipants := make([]study.Participant, 0, cfg.ParticipantCount)
	allMeasurements := make([]study.Measurement, 0, cfg.ParticipantCount*cfg.MeasurementsPerParticipant())

	for i := 1; i <= cfg.ParticipantCount; i++ {
		src := streams.ParticipantStream(i)
		p, err := participants.GenerateOne(i, src)
		if err != nil {
			t.Fatalf("Participant %d: unexpected error: %v", i, err)
		}
		ms, err := synthesizer.SynthesizeFor(p, src)
		if err != nil {
			t.Fatalf("Participant %d measurements: unexpected error: %v", i, err)
		}
		allParticipants = append(allParticipants, p)
		allMeasurements = append(allMeasurements, ms...)
	}
	return allParticipants, allMeasurements
}

// TestConfigValidation tests request-level rejection before any draw
func TestConfigValidation(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero participants", func(c *Config) { c.ParticipantCount = 0 }},
		{"negative participants", func(c *Config) { c.ParticipantCount = -5 }},
		{"zero study start", func(c *Config) { c.StudyStartDate = time.Time{} }},
		{"empty loads", func(c *Config) { c.LoadPercentages = nil }},
		{"uncalibrated load", func(c *Config) { c.LoadPercentages = []float64{50, 60, 85} }},
		{"unordered loads", func(c *Config) { c.LoadPercentages = []float64{70, 50, 85} }},
		{"duplicate loads", func(c *Config) { c.LoadPercentages = []float64{50, 50, 85} }},
		{"zero reps", func(c *Config) { c.RepsPerLoad = 0 }},
	}

	for _, test := range tests {
		cfg := DefaultConfig()
		test.mutate(&cfg)
		if err := cfg.Validate(); !core.IsInvalidParameterError(err) {
			t.Errorf("%s: expected invalid parameter error, got %v", test.name, err)
		}
	}
}

// TestSingleParticipantBlockStructure tests the canonical example: one
// participant yields exactly 45 rows whose squat loads are exact fractions
// of the squat 1RM
func TestSingleParticipantBlockStructure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 1
	cfg.Seed = 42

	participants, measurements := generateDataset(t, cfg)

	if len(participants) != 1 {
		t.Fatalf("Expected 1 participant, got %d", len(participants))
	}
	if len(measurements) != 45 {
		t.Fatalf("Expected 45 measurements (3 exercises x 5 loads x 3 reps), got %d", len(measurements))
	}

	p := participants[0]
	if p.ID != core.ParticipantID("P001") {
		t.Errorf("Expected first participant to be P001, got %s", p.ID)
	}

	// Squat rows come first: 5 loads x 3 reps
	fractions := []float64{0.50, 0.70, 0.85, 0.90, 0.95}
	for li, fraction := range fractions {
		for rep := 0; rep < 3; rep++ {
			m := measurements[li*3+rep]
			if m.Exercise != study.Squat {
				t.Fatalf("Expected squat at row %d, got %s", li*3+rep, m.Exercise.Name())
			}
			want := p.Squat1RM * fraction
			if math.Abs(m.LoadKg-want) > 1e-9 {
				t.Errorf("Squat load at %g%%: expected %.9f kg, got %.9f kg",
					fraction*100, want, m.LoadKg)
			}
			if m.RepNumber != rep+1 {
				t.Errorf("Expected rep %d, got %d", rep+1, m.RepNumber)
			}
		}
	}
}

// TestGenerationDeterminism tests byte-for-byte reproducibility from a seed
func TestGenerationDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 8
	cfg.Seed = 1234

	p1, m1 := generateDataset(t, cfg)
	p2, m2 := generateDataset(t, cfg)

	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("Participant %d differs between runs: %+v vs %+v", i, p1[i], p2[i])
		}
	}
	for i := range m1 {
		if m1[i] != m2[i] {
			t.Fatalf("Measurement %d differs between runs", i)
		}
	}
}

// TestSeedSensitivity tests that different seeds move the data
func TestSeedSensitivity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 3

	cfg.Seed = 1
	a, _ := generateDataset(t, cfg)
	cfg.Seed = 2
	b, _ := generateDataset(t, cfg)

	if a[0].BodyMass == b[0].BodyMass && a[0].Age == b[0].Age {
		t.Error("Expected different seeds to produce different participants")
	}
}

// TestMeasurementInvariants tests the floor, the rating band and the quality
// band over a full seeded run
func TestMeasurementInvariants(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 20
	cfg.Seed = 42

	_, measurements := generateDataset(t, cfg)

	if len(measurements) != 20*45 {
		t.Fatalf("Expected %d measurements, got %d", 20*45, len(measurements))
	}

	for _, m := range measurements {
		if m.MeanConcentricVelocity < study.VelocityFloor {
			t.Errorf("Velocity %.4f below floor for %s", m.MeanConcentricVelocity, m.ParticipantID)
		}
		if m.TechniqueRating < 1 || m.TechniqueRating > 10 {
			t.Errorf("Technique %.2f outside [1,10]", m.TechniqueRating)
		}
		if m.DataQuality < 0.95 || m.DataQuality > 1.0 {
			t.Errorf("Data quality %.4f outside [0.95,1.0]", m.DataQuality)
		}
		if m.MeasurementDevice != study.DeviceLinearTransducer {
			t.Errorf("Unexpected device %q", m.MeasurementDevice)
		}
		if m.SamplingRate != study.DeviceSamplingRateHz {
			t.Errorf("Unexpected sampling rate %d", m.SamplingRate)
		}
		if m.CalibrationStatus != study.CalibrationPassed {
			t.Errorf("Unexpected calibration status %q", m.CalibrationStatus)
		}
	}
}

// TestFatigueMonotonicity tests that velocity never increases across reps
// within a (participant, exercise, load) block
func TestFatigueMonotonicity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 25
	cfg.Seed = 7

	_, measurements := generateDataset(t, cfg)

	for i := 0; i < len(measurements); i += cfg.RepsPerLoad {
		block := measurements[i : i+cfg.RepsPerLoad]
		for r := 1; r < len(block); r++ {
			if block[r].MeanConcentricVelocity > block[r-1].MeanConcentricVelocity {
				t.Errorf("Velocity increased within block %s/%s/%.0f%%: rep %d %.4f > rep %d %.4f",
					block[r].ParticipantID, block[r].Exercise.Name(), block[r].LoadPercent1RM,
					block[r].RepNumber, block[r].MeanConcentricVelocity,
					block[r-1].RepNumber, block[r-1].MeanConcentricVelocity)
			}
		}
	}
}

// TestFatigueRatioWithinBlock tests that unclamped reps in a block share one
// individual factor: the velocity ratio between consecutive reps is exactly
// the fatigue step
func TestFatigueRatioWithinBlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 5
	cfg.Seed = 42

	_, measurements := generateDataset(t, cfg)

	checked := 0
	for i := 0; i < len(measurements); i += cfg.RepsPerLoad {
		block := measurements[i : i+cfg.RepsPerLoad]
		if block[0].MeanConcentricVelocity < 0.2 {
			// Flooring may apply inside this block; ratios no longer hold
			continue
		}
		v1 := block[0].MeanConcentricVelocity
		for r := 1; r < len(block); r++ {
			wantRatio := 1.0 - float64(r)*0.03
			gotRatio := block[r].MeanConcentricVelocity / v1
			if math.Abs(gotRatio-wantRatio) > 1e-9 {
				t.Errorf("Block %s/%s/%.0f%%: rep %d ratio %.12f, expected %.12f",
					block[r].ParticipantID, block[r].Exercise.Name(), block[r].LoadPercent1RM,
					r+1, gotRatio, wantRatio)
			}
			checked++
		}
	}
	if checked == 0 {
		t.Fatal("No unclamped blocks found to check")
	}
}

// TestDemographicCalibration tests sample moments against the population
// parameters over a large seeded cohort
func TestDemographicCalibration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 400
	cfg.Seed = 42

	participants, _ := generateDataset(t, cfg)

	var sumAge, sumMass, sumHeight, sumExp float64
	for _, p := range participants {
		sumAge += p.Age
		sumMass += p.BodyMass
		sumHeight += p.Height
		sumExp += p.TrainingExperience

		if p.TrainingExperience <= 0 {
			t.Errorf("Participant %s has non-positive training experience %.4f", p.ID, p.TrainingExperience)
		}
	}
	n := float64(len(participants))

	// Sample means should sit within a few standard errors of calibration
	checks := []struct {
		name      string
		got       float64
		want      float64
		tolerance float64
	}{
		{"age", sumAge / n, 25, 1.0},
		{"body_mass", sumMass / n, 75, 3.0},
		{"height", sumHeight / n, 175, 2.0},
		{"training_experience", sumExp / n, 2.5, 0.5},
	}
	for _, check := range checks {
		if math.Abs(check.got-check.want) > check.tolerance {
			t.Errorf("Mean %s = %.3f, expected %.1f +/- %.1f", check.name, check.got, check.want, check.tolerance)
		}
	}
}

// TestOneRepMaxFollowsModel tests that each 1RM stays near its deterministic
// component across the cohort
func TestOneRepMaxFollowsModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 200
	cfg.Seed = 99

	participants, _ := generateDataset(t, cfg)

	for _, p := range participants {
		checks := []struct {
			exercise study.Exercise
			got      float64
			noiseSD  float64
		}{
			{study.Squat, p.Squat1RM, 10},
			{study.Bench, p.Bench1RM, 8},
			{study.Deadlift, p.Deadlift1RM, 12},
		}
		for _, check := range checks {
			expected := check.exercise.ExpectedOneRepMax(p.BodyMass, p.TrainingExperience)
			// 6 sigma band; a systematic bug lands far outside it
			if math.Abs(check.got-expected) > 6*check.noiseSD {
				t.Errorf("%s %s 1RM %.2f too far from model value %.2f",
					p.ID, check.exercise.Name(), check.got, expected)
			}
		}
	}
}

// TestSessionDatesInsideWindow tests the session-date scatter stays within
// the configured study window
func TestSessionDatesInsideWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 10
	cfg.Seed = 3

	_, measurements := generateDataset(t, cfg)

	windowEnd := cfg.StudyStartDate.AddDate(0, 0, sessionWindowDays)
	for _, m := range measurements {
		if m.SessionDate.Before(cfg.StudyStartDate) {
			t.Errorf("Session date %s before study start", m.SessionDate.Format("2006-01-02"))
		}
		if !m.SessionDate.Before(windowEnd) {
			t.Errorf("Session date %s at or beyond window end", m.SessionDate.Format("2006-01-02"))
		}
	}
}

// TestDerivedQuantities tests the physics relations between force, power and
// velocity on generated rows
func TestDerivedQuantities(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 4
	cfg.Seed = 11

	_, measurements := generateDataset(t, cfg)

	for _, m := range measurements {
		wantForce := m.LoadKg * 9.81
		if math.Abs(m.PeakForce-wantForce) > 1e-9 {
			t.Errorf("Force %.6f, expected %.6f", m.PeakForce, wantForce)
		}
		wantPower := m.PeakForce * m.MeanConcentricVelocity
		if math.Abs(m.MeanPower-wantPower) > 1e-9 {
			t.Errorf("Power %.6f, expected %.6f", m.MeanPower, wantPower)
		}
		wantRFD := m.PeakForce / (m.DurationConcentric * 0.3)
		if math.Abs(m.RateOfForceDevelopment-wantRFD) > 1e-6 {
			t.Errorf("RFD %.6f, expected %.6f", m.RateOfForceDevelopment, wantRFD)
		}
	}
}

// TestPartialLoadSubset tests generation over a strict subset of the
// calibrated progression
func TestPartialLoadSubset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantCount = 2
	cfg.LoadPercentages = []float64{70, 90}

	_, measurements := generateDataset(t, cfg)

	want := 2 * 3 * 2 * 3 // participants x exercises x loads x reps
	if len(measurements) != want {
		t.Fatalf("Expected %d measurements, got %d", want, len(measurements))
	}
	for _, m := range measurements {
		if m.LoadPercent1RM != 70 && m.LoadPercent1RM != 90 {
			t.Errorf("Unexpected load %.0f%%", m.LoadPercent1RM)
		}
	}
}
