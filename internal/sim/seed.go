package sim

import (
	"fmt"
	"strconv"
)

// The LCG parameters are part of the fairness contract: client, server, and
// validator must reproduce identical streams byte-for-byte, so the generator
// is spelled out here rather than delegated to math/rand.
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// GenerateSeed derives the stable, non-cryptographic per-run seed string from
// the player and their next run count.
func GenerateSeed(userID string, runCount int) string {
	return hashString(fmt.Sprintf("%s-%d", userID, runCount))
}

func hashString(s string) string {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

func stateFromSeed(seed string) uint32 {
	var h uint32
	for _, r := range seed {
		h = h*31 + uint32(r)
	}
	return h
}

// Stream is a reproducible pseudo-random stream keyed by a string seed.
// Independent probabilistic decisions must not share one stream: derive a
// labeled sub-stream with Fork so unrelated draws cannot contaminate each
// other.
type Stream struct {
	seed  string
	state uint32
}

// NewStream returns a fresh stream for seed. Two streams built from the same
// seed produce identical draw sequences.
func NewStream(seed string) *Stream {
	return &Stream{seed: seed, state: stateFromSeed(seed)}
}

// Fork derives an independent stream for one labeled concern. The fork is
// keyed by the parent's seed, not its current state, so fork order never
// changes results.
func (s *Stream) Fork(label string) *Stream {
	return NewStream(s.seed + "_" + label)
}

// Next advances the stream and returns a float in [0, 1).
func (s *Stream) Next() float64 {
	s.state = s.state*lcgMultiplier + lcgIncrement
	return float64(s.state) / float64(1<<32)
}

// RandomFloat draws one float in [min, max) from a fresh stream for seed.
// Pure: the same seed always yields the same value.
func RandomFloat(seed string, min, max float64) float64 {
	return min + NewStream(seed).Next()*(max-min)
}

// RandomInt draws one integer in [min, max] from a fresh stream for seed.
func RandomInt(seed string, min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + int(NewStream(seed).Next()*float64(max-min+1))
}

// RandomBool draws one boolean that is true with the given probability.
func RandomBool(seed string, probability float64) bool {
	return NewStream(seed).Next() < probability
}
