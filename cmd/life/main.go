// Command life runs the Game of Life engine headlessly and writes each
// generation as a scaled grayscale PNG, standing in for a windowed renderer.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/AndyCarnevale/automata"
)

func main() {
	var (
		n       = flag.Int("n", 256, "grid dimension")
		p       = flag.Float64("p", 0.25, "seed probability in [0, 1]")
		ticks   = flag.Int("ticks", 100, "generations to run")
		useCPU  = flag.Bool("cpu", false, "use the CPU reference engine instead of the GPU")
		outDir  = flag.String("o", "frames", "output directory for PNG frames")
		window  = flag.Int("window", 512, "output image edge in pixels")
		every   = flag.Int("every", 1, "write every k-th frame")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	automata.SetLogger(logger)

	if err := run(logger, *n, *p, *ticks, *useCPU, *outDir, *window, *every); err != nil {
		logger.Error("life: run failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, n int, p float64, ticks int, useCPU bool, outDir string, window, every int) error {
	var (
		eng automata.Engine
		err error
	)
	if useCPU {
		eng, err = automata.NewCPUEngine(n, p)
	} else {
		eng, err = automata.NewGPUEngine(n, p)
		if err != nil {
			logger.Warn("life: GPU unavailable, falling back to CPU", "err", err)
			eng, err = automata.NewCPUEngine(n, p)
		}
	}
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for range ticks {
		snap, err := eng.Advance()
		if err != nil {
			return err
		}
		gen := snap.Generation()
		if every > 1 && gen%uint64(every) != 0 {
			continue
		}
		path := filepath.Join(outDir, fmt.Sprintf("gen_%05d.png", gen))
		if err := writeFrame(path, snap, window); err != nil {
			return err
		}
		logger.Debug("life: frame written",
			"generation", gen, "population", snap.Population(), "path", path)
	}
	logger.Info("life: done", "generations", eng.Generation())
	return nil
}

// writeFrame rasterizes the snapshot to a grayscale image and scales it to
// the window size with nearest-neighbor so cells stay crisp squares.
func writeFrame(path string, snap *automata.Snapshot, window int) error {
	n := snap.Size()
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y := range n {
		for x := range n {
			if snap.Alive(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}

	scaled := image.NewGray(image.Rect(0, 0, window, window))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, scaled); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}
