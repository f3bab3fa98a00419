package impostor

import "math/rand/v2"

// Source is the randomness the engine draws from. *rand.Rand from math/rand/v2 satisfies it,
// so tests can pass a seeded generator or a scripted sequence.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n) //nolint: gosec // game randomness, not security sensitive
}

// DefaultSource draws from the runtime's global generator and is safe for concurrent use.
var DefaultSource Source = globalSource{}

// NewSeededSource returns a deterministic source, used by tests and reproducible local games.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint: gosec // it's ok
}
