package automata

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidProbability is returned when a seed probability falls outside
// [0, 1]. Rejected synchronously; an invalid probability never reaches
// device code.
var ErrInvalidProbability = errors.New("automata: seed probability must be in [0, 1]")

// RandomSeed seeds each cell independently alive with probability P.
//
// The probability is explicit in both the CPU and GPU paths; there is no
// default. A nil Rand falls back to the shared math/rand/v2 source.
type RandomSeed struct {
	P    float64
	Rand *rand.Rand
}

// Validate checks that P is a probability.
func (s RandomSeed) Validate() error {
	if s.P < 0 || s.P > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidProbability, s.P)
	}
	return nil
}

// Seed fills g with an independent Bernoulli(P) draw per cell.
func (s RandomSeed) Seed(g *Grid) {
	f := rand.Float64
	if s.Rand != nil {
		f = s.Rand.Float64
	}
	for i := range g.cells {
		if f() < s.P {
			g.cells[i] = 1
		} else {
			g.cells[i] = 0
		}
	}
}
