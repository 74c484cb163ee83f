package study

import (
	"math"
	"testing"
	"time"

	"vbtlab/domain/core"
)

// TestExercisesOrder tests that the canonical generation order is stable
func TestExercisesOrder(t *testing.T) {
	exercises := Exercises()
	if len(exercises) != 3 {
		t.Fatalf("Expected 3 exercises, got %d", len(exercises))
	}

	expected := []string{"squat", "bench", "deadlift"}
	for i, e := range exercises {
		if e.Name() != expected[i] {
			t.Errorf("Expected exercise %d to be %s, got %s", i, expected[i], e.Name())
		}
	}
}

// TestBaseVelocity tests the velocity-load regressions at known points
func TestBaseVelocity(t *testing.T) {
	tests := []struct {
		exercise Exercise
		loadPct  float64
		expected float64
	}{
		{Squat, 50, 1.79 - 0.0138*50},
		{Squat, 95, 1.79 - 0.0138*95},
		{Bench, 70, 1.73 - 0.0157*70},
		{Deadlift, 85, 1.65 - 0.0143*85},
	}

	for _, test := range tests {
		got := test.exercise.BaseVelocity(test.loadPct)
		if math.Abs(got-test.expected) > 1e-12 {
			t.Errorf("%s at %.0f%%: expected %.6f, got %.6f",
				test.exercise.Name(), test.loadPct, test.expected, got)
		}
	}
}

// TestBaseVelocityDecreasesWithLoad tests that heavier loads move slower
func TestBaseVelocityDecreasesWithLoad(t *testing.T) {
	for _, e := range Exercises() {
		prev := e.BaseVelocity(50)
		for _, pct := range []float64{70, 85, 90, 95} {
			v := e.BaseVelocity(pct)
			if v >= prev {
				t.Errorf("%s: velocity at %.0f%% (%.4f) should be below previous (%.4f)",
					e.Name(), pct, v, prev)
			}
			prev = v
		}
	}
}

// TestExpectedOneRepMax tests the deterministic part of the 1RM model
func TestExpectedOneRepMax(t *testing.T) {
	// 75 kg body mass, 2 years of experience
	tests := []struct {
		exercise Exercise
		expected float64
	}{
		{Squat, 75 * (1.20 + 0.05*2)},
		{Bench, 75 * (1.00 + 0.03*2)},
		{Deadlift, 75 * (1.40 + 0.06*2)},
	}

	for _, test := range tests {
		got := test.exercise.ExpectedOneRepMax(75, 2)
		if math.Abs(got-test.expected) > 1e-12 {
			t.Errorf("%s: expected %.4f, got %.4f", test.exercise.Name(), test.expected, got)
		}
	}
}

// TestParseExercise tests identifier round-trips and rejection
func TestParseExercise(t *testing.T) {
	for _, e := range Exercises() {
		parsed, err := ParseExercise(e.Name())
		if err != nil {
			t.Errorf("Unexpected error parsing %q: %v", e.Name(), err)
		}
		if parsed != e {
			t.Errorf("Expected %q to parse to its variant", e.Name())
		}
	}

	if _, err := ParseExercise("leg_press"); !core.IsInvalidParameterError(err) {
		t.Errorf("Expected invalid parameter error for unknown exercise, got %v", err)
	}
}

// TestParticipantOneRepMax tests 1RM selection per lift
func TestParticipantOneRepMax(t *testing.T) {
	p := Participant{
		ID:          core.NewParticipantID(1),
		Squat1RM:    140,
		Bench1RM:    100,
		Deadlift1RM: 170,
	}

	tests := []struct {
		exercise Exercise
		expected float64
	}{
		{Squat, 140},
		{Bench, 100},
		{Deadlift, 170},
	}

	for _, test := range tests {
		got, err := p.OneRepMax(test.exercise)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != test.expected {
			t.Errorf("%s: expected %.0f, got %.0f", test.exercise.Name(), test.expected, got)
		}
	}

	if _, err := p.OneRepMax(Exercise{}); !core.IsInvalidParameterError(err) {
		t.Errorf("Expected invalid parameter error for zero exercise, got %v", err)
	}
}

// TestParticipantValidate tests degeneracy detection on participant fields
func TestParticipantValidate(t *testing.T) {
	valid := Participant{
		ID:                 core.NewParticipantID(1),
		Age:                25,
		BodyMass:           75,
		Height:             175,
		TrainingExperience: 2.5,
		Squat1RM:           140,
		Bench1RM:           100,
		Deadlift1RM:        170,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid participant to pass, got %v", err)
	}

	broken := valid
	broken.Bench1RM = -3
	err := broken.Validate()
	if !core.IsDegeneracyError(err) {
		t.Fatalf("Expected degeneracy error, got %v", err)
	}
}

// TestMeasurementValidate tests degeneracy detection on measurement fields
func TestMeasurementValidate(t *testing.T) {
	valid := Measurement{
		ParticipantID:          core.NewParticipantID(1),
		SessionDate:            time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Exercise:               Squat,
		LoadKg:                 70,
		LoadPercent1RM:         50,
		RepNumber:              1,
		MeanConcentricVelocity: 1.05,
		PeakVelocity:           1.31,
		DurationConcentric:     1.2,
		RangeOfMotion:          0.65,
		PeakForce:              70 * 9.81,
		MeanPower:              70 * 9.81 * 1.05,
		RateOfForceDevelopment: 70 * 9.81 / (1.2 * 0.3),
		TechniqueRating:        8.5,
		DataQuality:            0.97,
		MeasurementDevice:      DeviceLinearTransducer,
		SamplingRate:           DeviceSamplingRateHz,
		CalibrationStatus:      CalibrationPassed,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid measurement to pass, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Measurement)
	}{
		{"velocity below floor", func(m *Measurement) { m.MeanConcentricVelocity = 0.05 }},
		{"non-positive duration", func(m *Measurement) { m.DurationConcentric = 0 }},
		{"negative range of motion", func(m *Measurement) { m.RangeOfMotion = -0.1 }},
		{"technique above scale", func(m *Measurement) { m.TechniqueRating = 10.4 }},
		{"quality below band", func(m *Measurement) { m.DataQuality = 0.90 }},
		{"non-positive load", func(m *Measurement) { m.LoadKg = 0 }},
	}

	for _, test := range tests {
		m := valid
		test.mutate(&m)
		if err := m.Validate(); !core.IsDegeneracyError(err) {
			t.Errorf("%s: expected degeneracy error, got %v", test.name, err)
		}
	}
}

// TestManifestValidate tests manifest completeness checks
func TestManifestValidate(t *testing.T) {
	manifest := NewManifest(
		core.RunID(core.NewID()),
		core.DatasetID(core.NewID()),
		42,
		10,
		450,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		core.NewFingerprint([]byte("rows")),
	)
	if err := manifest.Validate(); err != nil {
		t.Fatalf("Expected complete manifest to pass, got %v", err)
	}

	broken := manifest
	broken.ParticipantCount = 0
	if err := broken.Validate(); !core.IsInvalidParameterError(err) {
		t.Errorf("Expected invalid parameter error, got %v", err)
	}

	broken = manifest
	broken.Fingerprint = ""
	if err := broken.Validate(); !core.IsInvalidParameterError(err) {
		t.Errorf("Expected invalid parameter error for empty fingerprint, got %v", err)
	}
}
