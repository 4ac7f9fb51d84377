// Package namegen produces the adjective+animal display handles assigned to
// new sessions, e.g. "CalmOtter" or "SwiftBadger".
package namegen

import (
	"math/rand"
	"time"
)

// Generated handles keep their combined length inside this band so they read
// well in presence lines and always satisfy the handle naming rules.
const (
	minCombined = 8
	maxCombined = 12
)

// Generator walks the adjective and animal lists in a shuffled cycle, so
// candidates repeat only after the full combination space is exhausted. It
// is not safe for concurrent use; the acceptor owns one instance.
type Generator struct {
	adjIdx      int
	adjOffset   int
	animIdx     int
	animOffIdx  int
	animOffsets []int
}

// New returns a Generator with a time-seeded starting position.
func New() *Generator {
	return NewSeeded(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSeeded returns a Generator whose walk order is fixed by rng. Two
// generators built from equal seeds produce identical sequences.
func NewSeeded(rng *rand.Rand) *Generator {
	return &Generator{
		adjOffset:   rng.Intn(len(adjectives)),
		animOffsets: rng.Perm(len(animals)),
	}
}

// Next returns the next candidate handle.
func (g *Generator) Next() string {
	for {
		adj := adjectives[(g.adjIdx+g.adjOffset)%len(adjectives)]
		anim := animals[(g.animIdx+g.animOffsets[g.animOffIdx])%len(animals)]

		g.adjIdx = (g.adjIdx + 1) % len(adjectives)
		g.animIdx = (g.animIdx + 1) % len(animals)
		if g.adjIdx == 0 {
			// One full adjective cycle done: re-pair against a different
			// animal rotation so combinations do not repeat.
			g.animIdx = 0
			g.animOffIdx = (g.animOffIdx + 1) % len(g.animOffsets)
		}

		if l := len(adj) + len(anim); l >= minCombined && l <= maxCombined {
			return adj + anim
		}
	}
}
