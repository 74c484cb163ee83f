package study

// ColumnSummary describes one numeric column's distribution: location,
// spread, quartiles and shape, plus a skewness/kurtosis normality check.
type ColumnSummary struct {
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Median     float64 `json:"median"`
	Q25        float64 `json:"q25"`
	Q75        float64 `json:"q75"`
	Skewness   float64 `json:"skewness"`
	Kurtosis   float64 `json:"kurtosis"`
	IsNormal   bool    `json:"is_normal"`
	NormalityP float64 `json:"normality_p"`
}

// QualityReport is the self-consistency summary computed at assembly time.
// The per-exercise correlation between relative load and mean concentric
// velocity is the primary check on the generative model: it is expected to
// be strongly negative.
type QualityReport struct {
	ParticipantRows          int                      `json:"participant_rows"`
	MeasurementRows          int                      `json:"measurement_rows"`
	VelocityLoadCorrelations map[string]float64       `json:"velocity_load_correlations"`
	ColumnSummaries          map[string]ColumnSummary `json:"column_summaries"`
}

// Correlation returns the velocity-load correlation for an exercise name.
func (q QualityReport) Correlation(exercise string) (float64, bool) {
	r, ok := q.VelocityLoadCorrelations[exercise]
	return r, ok
}
