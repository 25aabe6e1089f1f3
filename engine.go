package automata

import (
	"errors"
	"fmt"

	"github.com/AndyCarnevale/automata/internal/parallel"
)

// ErrEngineClosed is returned when operating on a closed engine.
var ErrEngineClosed = errors.New("automata: engine is closed")

// Engine advances a Game of Life simulation one generation at a time.
//
// Engines are single-caller: Advance and Reset must not be invoked
// concurrently. Advance is synchronous; when it returns, the new generation
// has been fully produced and copied into the returned Snapshot.
type Engine interface {
	// Advance performs exactly one generation step and returns the new
	// generation's snapshot. On error the engine state (generation counter,
	// buffer parity) is unchanged and the caller may retry or abort.
	Advance() (*Snapshot, error)

	// Reset re-seeds generation zero with alive-probability p, leaving the
	// engine as if freshly constructed with that distribution.
	Reset(p float64) error

	// Generation returns the number of Advance calls since the last Reset
	// (or construction).
	Generation() uint64

	// Size returns the grid dimension N.
	Size() int

	// Close releases the engine's resources. Safe to call more than once.
	Close() error
}

// CPUEngine is the reference Engine. It evolves the grid on the host with
// ConwayRule, alternating between two grids keyed by generation parity the
// same way the GPU engine alternates its device buffers: even generations
// read grids[0] and write grids[1], odd the reverse.
type CPUEngine struct {
	n          int
	rule       ConwayRule
	seed       RandomSeed
	grids      [2]*Grid
	generation uint64
	pool       *parallel.Pool
	closed     bool
}

var _ Engine = (*CPUEngine)(nil)

// NewCPUEngine creates a CPU engine with an N×N grid seeded at
// alive-probability p.
func NewCPUEngine(n int, p float64) (*CPUEngine, error) {
	seed := RandomSeed{P: p}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	a, err := NewGrid(n)
	if err != nil {
		return nil, err
	}
	b, _ := NewGrid(n)

	pool := parallel.New(0)
	e := &CPUEngine{
		n:     n,
		rule:  ConwayRule{Pool: pool},
		seed:  seed,
		grids: [2]*Grid{a, b},
		pool:  pool,
	}
	e.seed.Seed(e.grids[0])
	Logger().Debug("automata: cpu engine initialized", "n", n, "p", p)
	return e, nil
}

// Advance computes the next generation into the buffer selected by parity
// and returns it as a Snapshot. The snapshot's backing grid is one of the
// engine's two internal grids; it is overwritten two ticks later.
func (e *CPUEngine) Advance() (*Snapshot, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}
	read := e.grids[e.generation%2]
	write := e.grids[(e.generation+1)%2]
	if err := e.rule.Apply(write, read); err != nil {
		return nil, fmt.Errorf("automata: cpu update: %w", err)
	}
	e.generation++
	return &Snapshot{grid: write, generation: e.generation}, nil
}

// Reset re-seeds grids[0], clears grids[1], and returns the counter to 0,
// so parity 0 again reads grids[0] on the next Advance.
func (e *CPUEngine) Reset(p float64) error {
	if e.closed {
		return ErrEngineClosed
	}
	seed := RandomSeed{P: p, Rand: e.seed.Rand}
	if err := seed.Validate(); err != nil {
		return err
	}
	e.seed = seed
	e.seed.Seed(e.grids[0])
	e.grids[1].Clear()
	e.generation = 0
	return nil
}

// Load replaces generation zero with an explicit grid and returns the
// counter to 0. Useful for placing known patterns.
func (e *CPUEngine) Load(g *Grid) error {
	if e.closed {
		return ErrEngineClosed
	}
	if err := e.grids[0].CopyFrom(g); err != nil {
		return err
	}
	e.grids[1].Clear()
	e.generation = 0
	return nil
}

// Generation returns the tick counter since the last reset.
func (e *CPUEngine) Generation() uint64 { return e.generation }

// Size returns the grid dimension N.
func (e *CPUEngine) Size() int { return e.n }

// Close stops the worker pool.
func (e *CPUEngine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.pool.Close()
	return nil
}
