// Package rng provides the seeded pseudorandom source each obfuscation
// pass instance draws from. The passes must be nondeterministic run to
// run (reproducibility across runs is an explicit non-goal) but each
// pass instance owns its own generator rather than sharing a package-level
// one, so running BCF and SUB concurrently over different functions never
// races on shared PRNG state.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source is a per-pass-instance 32-bit random source.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded from the operating system's CSPRNG. It is
// not meant to be cryptographically secure itself — only its seed is —
// spec.md's Non-goals explicitly exclude resistance to a determined
// cryptographic attacker.
func New() *Source {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand.Read on a sane OS never fails; if it does, the
		// process environment is broken in a way no fallback seed can
		// paper over usefully for an obfuscation tool.
		panic("rng: crypto/rand unavailable: " + err.Error())
	}
	s1 := binary.LittleEndian.Uint64(seed[:])
	return &Source{r: rand.New(rand.NewPCG(s1, s1^0x9e3779b97f4a7c15))}
}

// NewSeeded returns a Source seeded deterministically, for tests that
// need a repeatable sequence.
func NewSeeded(seed uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Percent reports true with probability p/100 (p clamped to [0, 100]),
// matching spec.md §6's probability-flag semantics (e.g. BCF's 70,
// SUB's 50).
func (s *Source) Percent(p int) bool {
	if p <= 0 {
		return false
	}
	if p >= 100 {
		return true
	}
	return s.r.IntN(100) < p
}

// Uint32 returns a random 32-bit value, used for BCF's fallback seed
// global, CFF's case keys, and SUB's random constants.
func (s *Source) Uint32() uint32 {
	return s.r.Uint32()
}

// IntN returns a random int in [0, n).
func (s *Source) IntN(n int) int {
	return s.r.IntN(n)
}

// Shuffle randomizes the order of a length-n sequence in place via swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}
