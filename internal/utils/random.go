package utils

import "math/rand"

// RandomSource yields integers in [0, n). Implementations must be safe for
// concurrent use.
type RandomSource interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.Intn(n) }

// DefaultRandom is backed by the runtime's concurrency-safe generator.
var DefaultRandom RandomSource = globalRandom{}

// RandomBetween returns an integer in [min, max].
func RandomBetween(r RandomSource, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.IntN(max-min+1)
}
