package dataset

import (
	"errors"
	"testing"
	"time"

	"vbtlab/adapters/rng"
	"vbtlab/domain/core"
	"vbtlab/domain/study"
	"vbtlab/internal/synth"
)

func buildTables(t *testing.T, count int, seed int64) ([]study.Participant, []study.Measurement) {
	t.Helper()

	cfg := synth.DefaultConfig()
	cfg.ParticipantCount = count
	cfg.Seed = seed

	streams := rng.New(cfg.Seed)
	generator := synth.NewParticipantGenerator(cfg)
	synthesizer := synth.NewMeasurementSynthesizer(cfg)

	var participants []study.Participant
	var measurements []study.Measurement
	for i := 1; i <= cfg.ParticipantCount; i++ {
		src := streams.ParticipantStream(i)
		p, err := generator.GenerateOne(i, src)
		if err != nil {
			t.Fatalf("Participant %d: unexpected error: %v", i, err)
		}
		ms, err := synthesizer.SynthesizeFor(p, src)
		if err != nil {
			t.Fatalf("Measurements for %s: unexpected error: %v", p.ID, err)
		}
		participants = append(participants, p)
		measurements = append(measurements, ms...)
	}
	return participants, measurements
}

// TestAssembleLinksTables tests assembly of a well-formed generation result
func TestAssembleLinksTables(t *testing.T) {
	participants, measurements := buildTables(t, 4, 42)

	ds, fingerprint, err := NewAssembler().Assemble(participants, measurements)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ds.ID == "" {
		t.Error("Expected assembled dataset to carry an ID")
	}
	if len(ds.Participants) != 4 {
		t.Errorf("Expected 4 participants, got %d", len(ds.Participants))
	}
	if len(ds.Measurements) != 4*45 {
		t.Errorf("Expected %d measurements, got %d", 4*45, len(ds.Measurements))
	}
	if core.Hash(fingerprint).IsEmpty() {
		t.Error("Expected a non-empty fingerprint")
	}
}

// TestAssembleRejectsOrphanMeasurement tests the referential integrity gate
func TestAssembleRejectsOrphanMeasurement(t *testing.T) {
	participants, measurements := buildTables(t, 2, 42)
	measurements[10].ParticipantID = core.ParticipantID("P999")

	_, _, err := NewAssembler().Assemble(participants, measurements)
	if !errors.Is(err, core.ErrReferentialIntegrity) {
		t.Fatalf("Expected referential integrity error, got %v", err)
	}
}

// TestAssembleRejectsDuplicateParticipant tests the exactly-once constraint
func TestAssembleRejectsDuplicateParticipant(t *testing.T) {
	participants, measurements := buildTables(t, 3, 42)
	participants[2].ID = participants[0].ID

	_, _, err := NewAssembler().Assemble(participants, measurements)
	if !errors.Is(err, core.ErrReferentialIntegrity) {
		t.Fatalf("Expected referential integrity error, got %v", err)
	}
}

// TestAssembleRejectsEmptyTables tests empty-input rejection
func TestAssembleRejectsEmptyTables(t *testing.T) {
	_, _, err := NewAssembler().Assemble(nil, nil)
	if !core.IsInvalidParameterError(err) {
		t.Fatalf("Expected invalid parameter error, got %v", err)
	}
}

// TestFingerprintStability tests that identical tables fingerprint
// identically and any value change moves the fingerprint
func TestFingerprintStability(t *testing.T) {
	participants, measurements := buildTables(t, 3, 7)

	_, first, err := NewAssembler().Assemble(participants, measurements)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, second, err := NewAssembler().Assemble(participants, measurements)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !first.Equals(second) {
		t.Error("Expected identical tables to produce identical fingerprints")
	}

	mutated := make([]study.Measurement, len(measurements))
	copy(mutated, measurements)
	mutated[0].MeanConcentricVelocity += 1e-12

	_, third, err := NewAssembler().Assemble(participants, mutated)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first.Equals(third) {
		t.Error("Expected a value change to move the fingerprint")
	}

	shifted := make([]study.Measurement, len(measurements))
	copy(shifted, measurements)
	shifted[0].SessionDate = shifted[0].SessionDate.AddDate(0, 0, 1)

	_, fourth, err := NewAssembler().Assemble(participants, shifted)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first.Equals(fourth) {
		t.Error("Expected a session date change to move the fingerprint")
	}
}

// TestQualityReportCorrelations tests the self-consistency check on a
// research-sized cohort: relative load explains velocity strongly and
// negatively for every lift
func TestQualityReportCorrelations(t *testing.T) {
	participants, measurements := buildTables(t, 60, 42)
	ds, _, err := NewAssembler().Assemble(participants, measurements)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	report, err := NewQualityAnalyzer().BuildReport(ds)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if report.ParticipantRows != 60 {
		t.Errorf("Expected 60 participant rows, got %d", report.ParticipantRows)
	}
	if report.MeasurementRows != 60*45 {
		t.Errorf("Expected %d measurement rows, got %d", 60*45, report.MeasurementRows)
	}

	for _, exercise := range study.Exercises() {
		r, ok := report.Correlation(exercise.Name())
		if !ok {
			t.Fatalf("Missing correlation for %s", exercise.Name())
		}
		if r >= -0.5 {
			t.Errorf("%s: expected correlation < -0.5, got %.4f", exercise.Name(), r)
		}
	}
}

// TestQualityReportColumnSummaries tests the per-column distribution figures
func TestQualityReportColumnSummaries(t *testing.T) {
	participants, measurements := buildTables(t, 50, 3)
	ds, _, err := NewAssembler().Assemble(participants, measurements)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	report, err := NewQualityAnalyzer().BuildReport(ds)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wantColumns := []string{
		"age", "body_mass", "height", "training_experience",
		"squat_1rm", "bench_1rm", "deadlift_1rm",
		"load_kg", "mean_concentric_velocity", "peak_velocity",
		"duration_concentric", "range_of_motion", "peak_force",
		"mean_power", "rate_of_force_development", "technique_rating",
		"data_quality",
	}
	for _, column := range wantColumns {
		if _, ok := report.ColumnSummaries[column]; !ok {
			t.Errorf("Missing summary for column %s", column)
		}
	}

	velocity := report.ColumnSummaries["mean_concentric_velocity"]
	if velocity.Min < study.VelocityFloor {
		t.Errorf("Velocity minimum %.4f below floor", velocity.Min)
	}
	if velocity.Max <= velocity.Min {
		t.Error("Expected velocity spread across loads")
	}
	if velocity.Q25 > velocity.Median || velocity.Median > velocity.Q75 {
		t.Error("Quartiles out of order for velocity")
	}

	technique := report.ColumnSummaries["technique_rating"]
	if technique.Min < 1 || technique.Max > 10 {
		t.Errorf("Technique summary outside [1,10]: min %.2f max %.2f", technique.Min, technique.Max)
	}

	quality := report.ColumnSummaries["data_quality"]
	if quality.Min < 0.95 || quality.Max > 1.0 {
		t.Errorf("Data quality summary outside band: min %.4f max %.4f", quality.Min, quality.Max)
	}

	for name, summary := range report.ColumnSummaries {
		if summary.NormalityP < 0 || summary.NormalityP > 1 {
			t.Errorf("%s: normality p-value %.4f outside [0,1]", name, summary.NormalityP)
		}
		if summary.StdDev < 0 {
			t.Errorf("%s: negative standard deviation", name)
		}
	}
}

// TestQualityReportRejectsEmptyDataset tests the empty-input gate
func TestQualityReportRejectsEmptyDataset(t *testing.T) {
	if _, err := NewQualityAnalyzer().BuildReport(nil); !core.IsInvalidParameterError(err) {
		t.Fatalf("Expected invalid parameter error for nil dataset, got %v", err)
	}
	if _, err := NewQualityAnalyzer().BuildReport(&study.Dataset{}); !core.IsInvalidParameterError(err) {
		t.Fatalf("Expected invalid parameter error for empty dataset, got %v", err)
	}
}

// TestCanonicalBytesDateOnly tests that intra-day time components do not
// affect the fingerprint, only the calendar day does
func TestCanonicalBytesDateOnly(t *testing.T) {
	participants, measurements := buildTables(t, 1, 5)

	_, base, err := NewAssembler().Assemble(participants, measurements)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	adjusted := make([]study.Measurement, len(measurements))
	copy(adjusted, measurements)
	adjusted[0].SessionDate = adjusted[0].SessionDate.Add(6 * time.Hour)

	_, sameDay, err := NewAssembler().Assemble(participants, adjusted)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !base.Equals(sameDay) {
		t.Error("Expected same-day time shift to leave the fingerprint unchanged")
	}
}
