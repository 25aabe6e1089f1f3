package automata

import (
	"errors"
	"fmt"
)

// Grid errors.
var (
	// ErrInvalidDimension is returned when a grid dimension is not positive.
	ErrInvalidDimension = errors.New("automata: grid dimension must be >= 1")

	// ErrGridSizeMismatch is returned when two grids of different sizes are
	// combined in one operation.
	ErrGridSizeMismatch = errors.New("automata: grid sizes do not match")

	// ErrSameGrid is returned when an update is asked to write into its own
	// source grid. The update contract requires two distinct buffers.
	ErrSameGrid = errors.New("automata: source and destination are the same grid")
)

// Grid is a dense row-major N×N cell store with toroidal topology.
//
// Cells are held as one uint32 word per cell (0 dead, 1 alive), matching the
// storage-buffer encoding used by the GPU path so a grid can be uploaded and
// read back without conversion. Coordinates wrap at both edges: the neighbor
// of a boundary cell is found by modular arithmetic, never treated as dead.
type Grid struct {
	n     int
	cells []uint32
}

// NewGrid creates an all-dead N×N grid. N must be >= 1.
func NewGrid(n int) (*Grid, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimension, n)
	}
	return &Grid{n: n, cells: make([]uint32, n*n)}, nil
}

// Size returns the grid dimension N.
func (g *Grid) Size() int { return g.n }

// Index returns the linear offset of cell (x, y): x + y*N.
// Coordinates must already be in [0, N).
func (g *Grid) Index(x, y int) int { return x + y*g.n }

// At reports whether cell (x, y) is alive. Coordinates wrap toroidally, so
// any integer pair is legal, including negatives.
func (g *Grid) At(x, y int) bool {
	return g.cells[g.Index(wrap(x, g.n), wrap(y, g.n))] != 0
}

// Set assigns cell (x, y). Coordinates wrap toroidally.
func (g *Grid) Set(x, y int, alive bool) {
	var v uint32
	if alive {
		v = 1
	}
	g.cells[g.Index(wrap(x, g.n), wrap(y, g.n))] = v
}

// Cells returns the grid's backing storage in row-major order.
// Mutating the slice mutates the grid.
func (g *Grid) Cells() []uint32 { return g.cells }

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{n: g.n, cells: make([]uint32, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// CopyFrom overwrites this grid's cells with src's. Sizes must match.
func (g *Grid) CopyFrom(src *Grid) error {
	if g.n != src.n {
		return fmt.Errorf("%w: %d vs %d", ErrGridSizeMismatch, g.n, src.n)
	}
	copy(g.cells, src.cells)
	return nil
}

// Clear kills every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}

// Equal reports whether two grids have identical size and cell values.
func (g *Grid) Equal(o *Grid) bool {
	if g.n != o.n {
		return false
	}
	for i, v := range g.cells {
		if (v != 0) != (o.cells[i] != 0) {
			return false
		}
	}
	return true
}

// Population returns the number of live cells.
func (g *Grid) Population() int {
	count := 0
	for _, v := range g.cells {
		if v != 0 {
			count++
		}
	}
	return count
}

// wrap maps a into [0, n) under toroidal topology.
// Works for negative a, unlike Go's % operator alone.
func wrap(a, n int) int {
	return ((a % n) + n) % n
}
