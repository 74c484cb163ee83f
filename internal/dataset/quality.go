package dataset

import (
	"math"

	"vbtlab/domain/core"
	"vbtlab/domain/study"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// QualityAnalyzer computes the assembly-time self-consistency report: row
// counts, the per-exercise velocity-load correlation, and distribution
// summaries for the key columns.
type QualityAnalyzer struct{}

// NewQualityAnalyzer creates a quality analyzer.
func NewQualityAnalyzer() *QualityAnalyzer {
	return &QualityAnalyzer{}
}

// BuildReport analyzes an assembled dataset. The velocity-load correlations
// are the primary check on the generative model; a weakly negative value
// means the regression, the noise scales or the traversal are wrong.
func (qa *QualityAnalyzer) BuildReport(ds *study.Dataset) (*study.QualityReport, error) {
	if ds == nil || len(ds.Participants) == 0 {
		return nil, core.NewInvalidParameterError("dataset", "cannot be empty")
	}

	report := &study.QualityReport{
		ParticipantRows:          len(ds.Participants),
		MeasurementRows:          len(ds.Measurements),
		VelocityLoadCorrelations: make(map[string]float64, len(study.Exercises())),
		ColumnSummaries:          make(map[string]study.ColumnSummary),
	}

	for _, exercise := range study.Exercises() {
		var loads, velocities []float64
		for _, m := range ds.Measurements {
			if m.Exercise == exercise {
				loads = append(loads, m.LoadPercent1RM)
				velocities = append(velocities, m.MeanConcentricVelocity)
			}
		}
		if len(loads) >= 2 {
			report.VelocityLoadCorrelations[exercise.Name()] = stat.Correlation(loads, velocities, nil)
		}
	}

	participantColumns := map[string]func(study.Participant) float64{
		"age":                 func(p study.Participant) float64 { return p.Age },
		"body_mass":           func(p study.Participant) float64 { return p.BodyMass },
		"height":              func(p study.Participant) float64 { return p.Height },
		"training_experience": func(p study.Participant) float64 { return p.TrainingExperience },
		"squat_1rm":           func(p study.Participant) float64 { return p.Squat1RM },
		"bench_1rm":           func(p study.Participant) float64 { return p.Bench1RM },
		"deadlift_1rm":        func(p study.Participant) float64 { return p.Deadlift1RM },
	}
	for name, extract := range participantColumns {
		values := make([]float64, len(ds.Participants))
		for i, p := range ds.Participants {
			values[i] = extract(p)
		}
		summary, err := summarizeColumn(values)
		if err != nil {
			return nil, err
		}
		report.ColumnSummaries[name] = summary
	}

	measurementColumns := map[string]func(study.Measurement) float64{
		"load_kg":                   func(m study.Measurement) float64 { return m.LoadKg },
		"mean_concentric_velocity":  func(m study.Measurement) float64 { return m.MeanConcentricVelocity },
		"peak_velocity":             func(m study.Measurement) float64 { return m.PeakVelocity },
		"duration_concentric":       func(m study.Measurement) float64 { return m.DurationConcentric },
		"range_of_motion":           func(m study.Measurement) float64 { return m.RangeOfMotion },
		"peak_force":                func(m study.Measurement) float64 { return m.PeakForce },
		"mean_power":                func(m study.Measurement) float64 { return m.MeanPower },
		"rate_of_force_development": func(m study.Measurement) float64 { return m.RateOfForceDevelopment },
		"technique_rating":          func(m study.Measurement) float64 { return m.TechniqueRating },
		"data_quality":              func(m study.Measurement) float64 { return m.DataQuality },
	}
	for name, extract := range measurementColumns {
		values := make([]float64, len(ds.Measurements))
		for i, m := range ds.Measurements {
			values[i] = extract(m)
		}
		summary, err := summarizeColumn(values)
		if err != nil {
			return nil, err
		}
		report.ColumnSummaries[name] = summary
	}

	return report, nil
}

// summarizeColumn computes location, spread, quartiles and shape for one
// numeric column.
func summarizeColumn(data []float64) (study.ColumnSummary, error) {
	summary := study.ColumnSummary{}

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, err
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return summary, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return summary, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return summary, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return summary, err
	}
	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return summary, err
	}
	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return summary, err
	}

	skewness := momentSkewness(data, mean, stdDev)
	kurtosis := momentKurtosis(data, mean, stdDev)
	isNormal, pValue := jarqueBera(len(data), skewness, kurtosis)

	summary.Mean = mean
	summary.StdDev = stdDev
	summary.Min = min
	summary.Max = max
	summary.Median = median
	summary.Q25 = q25
	summary.Q75 = q75
	summary.Skewness = skewness
	summary.Kurtosis = kurtosis
	summary.IsNormal = isNormal
	summary.NormalityP = pValue
	return summary, nil
}

// momentSkewness computes the third standardized moment.
func momentSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range data {
		z := (x - mean) / stdDev
		sum += z * z * z
	}
	return sum / float64(len(data))
}

// momentKurtosis computes the fourth standardized moment (total kurtosis; a
// normal distribution scores 3).
func momentKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range data {
		z := (x - mean) / stdDev
		sum += z * z * z * z
	}
	return sum / float64(len(data))
}

// jarqueBera tests normality from the sample's skewness and total kurtosis.
// The statistic is asymptotically chi-squared with 2 degrees of freedom.
func jarqueBera(n int, skewness, kurtosis float64) (isNormal bool, pValue float64) {
	if n < 8 {
		return false, 1.0
	}
	excess := kurtosis - 3
	jb := float64(n) / 6 * (skewness*skewness + excess*excess/4)

	chi2 := distuv.ChiSquared{K: 2}
	pValue = 1 - chi2.CDF(jb)
	if math.IsNaN(pValue) {
		pValue = 0
	}
	return pValue > 0.05, pValue
}
