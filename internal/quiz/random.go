package quiz

import "math/rand/v2"

// Rand is the randomness the selection and distractor code needs.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the runtime-seeded global source and is safe for
// concurrent use. Seeded *rand.Rand values are not.
var DefaultRand Rand = globalRand{}

// NewSeeded returns a deterministic source for the given seed.
func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// shuffle is a Fisher-Yates pass: for i from the last index down to 1, swap
// element i with a uniformly chosen index in [0, i].
func shuffle[T any](r Rand, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
