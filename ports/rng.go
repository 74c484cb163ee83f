package ports

import (
	"math/rand/v2"
)

// RNG provides the explicitly owned random streams for one generation run.
// Implementations must be deterministic: the same master seed always yields
// the same stream contents, independent of scheduling.
type RNG interface {
	// Seed returns the master seed this run's streams derive from.
	Seed() int64

	// Stream returns a named top-level stream for run-scoped draws such as
	// split shuffling. The same name within a run always yields an
	// identically seeded stream.
	Stream(name string) *rand.Rand

	// ParticipantStream returns the sub-stream for a 1-based participant
	// index, derived from the master seed and the index alone. Draw order
	// within a participant is therefore preserved under any scheduling of
	// participants, which is what makes concurrent generation reproduce the
	// sequential output.
	ParticipantStream(index int) *rand.Rand
}
