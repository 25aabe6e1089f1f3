package automata

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestRandomSeed_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       float64
		wantErr bool
	}{
		{name: "zero", p: 0},
		{name: "one", p: 1},
		{name: "half", p: 0.5},
		{name: "negative", p: -0.01, wantErr: true},
		{name: "above one", p: 1.01, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RandomSeed{P: tt.p}.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidProbability) {
				t.Errorf("Validate() = %v, want ErrInvalidProbability", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestRandomSeed_Extremes(t *testing.T) {
	g, err := NewGrid(32)
	if err != nil {
		t.Fatal(err)
	}

	RandomSeed{P: 0}.Seed(g)
	if got := g.Population(); got != 0 {
		t.Errorf("p=0 population = %d, want 0", got)
	}

	RandomSeed{P: 1}.Seed(g)
	if got := g.Population(); got != 32*32 {
		t.Errorf("p=1 population = %d, want %d", got, 32*32)
	}

	// Re-seeding must overwrite every cell, not just set live ones.
	RandomSeed{P: 0}.Seed(g)
	if got := g.Population(); got != 0 {
		t.Errorf("re-seed with p=0 population = %d, want 0", got)
	}
}

func TestRandomSeed_ProbabilityIsHonored(t *testing.T) {
	// The fill rate over a large grid should land near p. 128*128 cells at
	// p=0.25 has standard deviation ~0.0034, so 0.03 is a generous bound.
	g, err := NewGrid(128)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewPCG(42, 1))
	RandomSeed{P: 0.25, Rand: rng}.Seed(g)

	rate := float64(g.Population()) / float64(128*128)
	if math.Abs(rate-0.25) > 0.03 {
		t.Errorf("fill rate = %g, want within 0.03 of 0.25", rate)
	}
}

func TestRandomSeed_Deterministic(t *testing.T) {
	a, _ := NewGrid(16)
	b, _ := NewGrid(16)
	RandomSeed{P: 0.5, Rand: rand.New(rand.NewPCG(1, 2))}.Seed(a)
	RandomSeed{P: 0.5, Rand: rand.New(rand.NewPCG(1, 2))}.Seed(b)
	if !a.Equal(b) {
		t.Error("same PRNG seed produced different grids")
	}
}
