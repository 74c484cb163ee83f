package study

import (
	"fmt"

	"vbtlab/domain/core"
)

// Exercise is one of the three calibrated barbell lifts. The set is closed:
// every variant carries its own literature-derived velocity-load regression
// and one-rep-max coefficients, so callers never branch on the name.
type Exercise struct {
	name string

	// Velocity-load profile: baseVelocity = intercept - slope*loadPct
	velocityIntercept float64
	velocitySlope     float64

	// One-rep-max model: bodyMass*(base + perYear*experience) + N(0, noiseSD)
	oneRMBase    float64
	oneRMPerYear float64
	oneRMNoiseSD float64
}

// The calibrated lifts. Coefficients come from load-velocity profiling
// literature for free-weight squat, bench press and deadlift.
var (
	Squat = Exercise{
		name:              "squat",
		velocityIntercept: 1.79,
		velocitySlope:     0.0138,
		oneRMBase:         1.20,
		oneRMPerYear:      0.05,
		oneRMNoiseSD:      10,
	}
	Bench = Exercise{
		name:              "bench",
		velocityIntercept: 1.73,
		velocitySlope:     0.0157,
		oneRMBase:         1.00,
		oneRMPerYear:      0.03,
		oneRMNoiseSD:      8,
	}
	Deadlift = Exercise{
		name:              "deadlift",
		velocityIntercept: 1.65,
		velocitySlope:     0.0143,
		oneRMBase:         1.40,
		oneRMPerYear:      0.06,
		oneRMNoiseSD:      12,
	}
)

// Exercises returns the lifts in their canonical generation order.
func Exercises() []Exercise {
	return []Exercise{Squat, Bench, Deadlift}
}

// Name returns the stable lowercase identifier used in exported rows.
func (e Exercise) Name() string {
	return e.name
}

// String implements fmt.Stringer.
func (e Exercise) String() string {
	return e.name
}

// BaseVelocity evaluates the exercise's velocity-load regression at the given
// load percentage. The result is the population-mean concentric velocity
// before individual and fatigue scaling.
func (e Exercise) BaseVelocity(loadPct float64) float64 {
	return e.velocityIntercept - e.velocitySlope*loadPct
}

// ExpectedOneRepMax evaluates the deterministic part of the 1RM model for a
// body mass (kg) and training experience (years).
func (e Exercise) ExpectedOneRepMax(bodyMass, experience float64) float64 {
	return bodyMass * (e.oneRMBase + e.oneRMPerYear*experience)
}

// OneRepMaxNoiseSD returns the standard deviation of the Gaussian noise term
// added on top of the deterministic 1RM estimate.
func (e Exercise) OneRepMaxNoiseSD() float64 {
	return e.oneRMNoiseSD
}

// IsZero reports whether e is the zero Exercise (not one of the variants).
func (e Exercise) IsZero() bool {
	return e.name == ""
}

// ParseExercise resolves a stable identifier back to its variant.
func ParseExercise(name string) (Exercise, error) {
	for _, e := range Exercises() {
		if e.name == name {
			return e, nil
		}
	}
	return Exercise{}, core.NewInvalidParameterError("exercise", fmt.Sprintf("unknown name %q", name))
}

// MarshalText encodes the exercise as its stable identifier.
func (e Exercise) MarshalText() ([]byte, error) {
	if e.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero exercise")
	}
	return []byte(e.name), nil
}

// UnmarshalText decodes a stable identifier into its variant.
func (e *Exercise) UnmarshalText(text []byte) error {
	parsed, err := ParseExercise(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
