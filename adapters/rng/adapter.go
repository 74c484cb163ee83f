package rng

import (
	"math/rand/v2"

	"vbtlab/ports"
)

// namedStreamBase keeps named streams disjoint from participant sub-streams
// in the PCG sequence space: participant indices occupy the low 32 bits,
// hashed stream names the range above them.
const namedStreamBase = uint64(1) << 32

// Adapter implements ports.RNG with PCG streams derived from one master
// seed. Derivation is pure arithmetic, so any stream can be recreated from
// (seed, name) or (seed, index) without touching the others; that property
// is what allows participants to be generated concurrently.
type Adapter struct {
	seed int64
}

// New creates the stream source for one run's master seed.
func New(seed int64) *Adapter {
	return &Adapter{seed: seed}
}

// Seed returns the master seed.
func (a *Adapter) Seed() int64 {
	return a.seed
}

// Stream returns the named top-level stream.
func (a *Adapter) Stream(name string) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(a.seed), namedStreamBase|uint64(hashName(name))))
}

// ParticipantStream returns the sub-stream for a 1-based participant index.
func (a *Adapter) ParticipantStream(index int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(a.seed), uint64(index)))
}

// hashName creates a simple hash for deterministic stream seeding
func hashName(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

var _ ports.RNG = (*Adapter)(nil)
