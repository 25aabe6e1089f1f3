package automata

import (
	"errors"
	"math/rand/v2"
	"testing"
)

// newTestGPUEngine opens a real device or skips the test when none is
// present, so the suite passes on machines without a GPU.
func newTestGPUEngine(t *testing.T, n int, p float64) *GPUEngine {
	t.Helper()
	e, err := NewGPUEngine(n, p)
	if err != nil {
		t.Skipf("no GPU available: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestNewGPUEngine_InvalidConfiguration(t *testing.T) {
	// Invalid parameters are rejected synchronously, before any device
	// work, so these cases run even without a GPU.
	if _, err := NewGPUEngine(8, -0.5); !errors.Is(err, ErrInvalidProbability) {
		t.Errorf("NewGPUEngine(8, -0.5) error = %v, want ErrInvalidProbability", err)
	}
	if _, err := NewGPUEngine(0, 0.5); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("NewGPUEngine(0, 0.5) error = %v, want ErrInvalidDimension", err)
	}
}

// TestGPUEngine_MatchesCPUReference is the primary correctness contract:
// for the same input grid the GPU kernel and the CPU reference must produce
// bit-identical generations, across a range of grid sizes including ones
// that do not divide evenly into 8x8 tiles.
func TestGPUEngine_MatchesCPUReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(12, 34))

	for _, n := range []int{1, 3, 8, 9, 16, 33, 64} {
		gpuEng := newTestGPUEngine(t, n, 0)
		cpuEng, err := NewCPUEngine(n, 0)
		if err != nil {
			t.Fatal(err)
		}
		defer cpuEng.Close()

		start, err := NewGrid(n)
		if err != nil {
			t.Fatal(err)
		}
		RandomSeed{P: 0.5, Rand: rng}.Seed(start)
		if err := gpuEng.Load(start); err != nil {
			t.Fatal(err)
		}
		if err := cpuEng.Load(start); err != nil {
			t.Fatal(err)
		}

		for step := 1; step <= 8; step++ {
			gpuSnap, err := gpuEng.Advance()
			if err != nil {
				t.Fatalf("n=%d step=%d gpu: %v", n, step, err)
			}
			cpuSnap, err := cpuEng.Advance()
			if err != nil {
				t.Fatalf("n=%d step=%d cpu: %v", n, step, err)
			}
			if !gpuSnap.Grid().Equal(cpuSnap.Grid()) {
				t.Fatalf("n=%d: gpu and cpu diverged at step %d", n, step)
			}
		}
	}
}

func TestGPUEngine_GenerationCounter(t *testing.T) {
	e := newTestGPUEngine(t, 16, 0.4)

	for k := 1; k <= 4; k++ {
		if _, err := e.Advance(); err != nil {
			t.Fatal(err)
		}
		if got := e.Generation(); got != uint64(k) {
			t.Errorf("after %d advances Generation() = %d", k, got)
		}
	}
	if err := e.Reset(0.4); err != nil {
		t.Fatal(err)
	}
	if got := e.Generation(); got != 0 {
		t.Errorf("Generation() after Reset = %d, want 0", got)
	}
}

func TestGPUEngine_BlockStillLife(t *testing.T) {
	e := newTestGPUEngine(t, 6, 0)

	block := mustGrid(t, []string{
		"......",
		".##...",
		".##...",
		"......",
		"......",
		"......",
	})
	if err := e.Load(block); err != nil {
		t.Fatal(err)
	}
	for range 4 {
		snap, err := e.Advance()
		if err != nil {
			t.Fatal(err)
		}
		if !snap.Grid().Equal(block) {
			t.Fatal("block still life changed on device")
		}
	}
}

func TestGPUEngine_LoneCellDies(t *testing.T) {
	e := newTestGPUEngine(t, 4, 0)

	g, _ := NewGrid(4)
	g.Set(0, 0, true)
	if err := e.Load(g); err != nil {
		t.Fatal(err)
	}
	snap, err := e.Advance()
	if err != nil {
		t.Fatal(err)
	}
	if got := snap.Population(); got != 0 {
		t.Errorf("population after step = %d, want 0", got)
	}
}

func TestGPUEngine_ClosedRejectsCalls(t *testing.T) {
	e := newTestGPUEngine(t, 4, 0.5)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := e.Advance(); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Advance on closed engine error = %v, want ErrEngineClosed", err)
	}
	if err := e.Reset(0.5); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Reset on closed engine error = %v, want ErrEngineClosed", err)
	}
}
