package automata

// Snapshot is a host-owned, read-only view of one generation's grid,
// produced by Engine.Advance for rendering.
//
// The engine lends the Snapshot to the caller; the caller must not mutate it
// and must not retain it across ticks. The backing memory is reused by the
// next Advance (and by Reset), at which point any held Snapshot stops
// describing a stable generation.
type Snapshot struct {
	grid       *Grid
	generation uint64
}

// Size returns the grid dimension N.
func (s *Snapshot) Size() int { return s.grid.n }

// Generation returns the generation index this snapshot describes.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Alive reports whether cell (x, y) is alive. Coordinates wrap toroidally.
func (s *Snapshot) Alive(x, y int) bool { return s.grid.At(x, y) }

// Grid returns the snapshot's backing grid. Read-only by contract.
func (s *Snapshot) Grid() *Grid { return s.grid }

// Population returns the number of live cells.
func (s *Snapshot) Population() int { return s.grid.Population() }
