package export

import (
	"math"
	"strconv"

	"vbtlab/domain/study"
)

// Column names are the interoperability contract of the exported tables:
// downstream analysis code selects by these names, in this order.

func participantHeaders() []string {
	return []string{
		"participant_id",
		"age",
		"body_mass",
		"height",
		"training_experience",
		"squat_1rm",
		"bench_1rm",
		"deadlift_1rm",
	}
}

func participantRow(p study.Participant) []string {
	return []string{
		p.ID.String(),
		fToStr(p.Age, 1),
		fToStr(p.BodyMass, 1),
		fToStr(p.Height, 1),
		fToStr(p.TrainingExperience, 2),
		fToStr(p.Squat1RM, 1),
		fToStr(p.Bench1RM, 1),
		fToStr(p.Deadlift1RM, 1),
	}
}

func measurementHeaders() []string {
	return []string{
		"participant_id",
		"session_date",
		"exercise",
		"load_kg",
		"load_percent_1rm",
		"rep_number",
		"mean_concentric_velocity",
		"peak_velocity",
		"duration_concentric",
		"range_of_motion",
		"peak_force",
		"mean_power",
		"rate_of_force_development",
		"technique_rating",
		"data_quality",
		"measurement_device",
		"sampling_rate",
		"calibration_status",
	}
}

func measurementRow(m study.Measurement) []string {
	return []string{
		m.ParticipantID.String(),
		m.SessionDate.Format("2006-01-02"),
		m.Exercise.Name(),
		fToStr(m.LoadKg, 2),
		fToStr(m.LoadPercent1RM, 0),
		strconv.Itoa(m.RepNumber),
		fToStr(m.MeanConcentricVelocity, 3), // transducer resolution is 0.001 m/s
		fToStr(m.PeakVelocity, 3),
		fToStr(m.DurationConcentric, 3),
		fToStr(m.RangeOfMotion, 3),
		fToStr(m.PeakForce, 1),
		fToStr(m.MeanPower, 1),
		fToStr(m.RateOfForceDevelopment, 1),
		fToStr(m.TechniqueRating, 1),
		fToStr(m.DataQuality, 4),
		m.MeasurementDevice,
		strconv.Itoa(m.SamplingRate),
		m.CalibrationStatus,
	}
}

func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
