package automata

import (
	"github.com/AndyCarnevale/automata/internal/parallel"
)

// Rule maps one generation to the next.
//
// Apply must compute every cell of dst from src alone: no read may observe a
// value written during the same pass. This is why the engines keep two
// buffers and never update in place.
type Rule interface {
	Apply(dst, src *Grid) error
}

// SeedRule produces a generation-zero grid.
type SeedRule interface {
	Seed(g *Grid)
}

// ConwayRule is the CPU reference implementation of Conway's Game of Life
// under toroidal adjacency. It is the equivalence baseline for the GPU
// kernel: both must produce bit-identical output for the same input grid.
//
// If Pool is non-nil, rows are updated in parallel bands. The result is
// identical either way because every band reads only the frozen source grid.
type ConwayRule struct {
	Pool *parallel.Pool
}

// Apply writes the next generation of src into dst.
func (r ConwayRule) Apply(dst, src *Grid) error {
	if dst == src {
		return ErrSameGrid
	}
	if dst.n != src.n {
		return ErrGridSizeMismatch
	}
	if r.Pool != nil {
		r.Pool.Run(src.n, func(y0, y1 int) {
			conwayRows(dst, src, y0, y1)
		})
		return nil
	}
	conwayRows(dst, src, 0, src.n)
	return nil
}

// conwayRows updates rows [y0, y1) of dst from src.
func conwayRows(dst, src *Grid, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < src.n; x++ {
			dst.cells[x+y*src.n] = cellNext(src, x, y)
		}
	}
}

// cellNext computes one cell's next value from the source generation.
// Birth on exactly 3 live neighbors; survival on 2 or 3.
func cellNext(src *Grid, x, y int) uint32 {
	n := src.n
	live := uint32(0)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := wrap(x+dx, n)
			ny := wrap(y+dy, n)
			live += src.cells[nx+ny*n]
		}
	}
	if live == 3 {
		return 1
	}
	if live == 2 && src.cells[x+y*n] != 0 {
		return 1
	}
	return 0
}
