// Package automata evolves a toroidal Conway's Game of Life grid with a
// double-buffered, GPU-accelerated update engine.
//
// # Overview
//
// The package exposes two implementations of the same Engine contract: a
// GPU engine that runs the update rule as a WebGPU compute dispatch via
// gogpu/wgpu, and a CPU engine that serves as the observational-equivalence
// reference. Both alternate between two generation buffers keyed by the
// parity of the generation counter, so an update pass only ever reads the
// frozen previous generation and writes the next one.
//
// # Quick Start
//
//	eng, err := automata.NewGPUEngine(256, 0.5)
//	if err != nil {
//	    // fall back to the CPU reference
//	    eng, err = automata.NewCPUEngine(256, 0.5)
//	}
//	defer eng.Close()
//
//	for range 100 {
//	    snap, err := eng.Advance()
//	    if err != nil {
//	        break
//	    }
//	    render(snap) // read-only; do not retain across ticks
//	}
//
// The engine owns the grid buffers. Renderers only ever see a Snapshot,
// which is a host copy valid until the next Advance call.
//
// By default the package produces no log output. Call SetLogger to enable
// structured logging of device selection and dispatch diagnostics.
package automata
