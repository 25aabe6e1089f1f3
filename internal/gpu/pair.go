package gpu

import "github.com/gogpu/wgpu/hal"

// bufferPair holds the two device-resident generation buffers and the two
// prebuilt bind groups wiring them as (read, write) for each step parity.
//
// The pair is an explicit 2-element array indexed by t % 2 so the parity
// invariant is mechanically checkable: even parity reads buffers[0] and
// writes buffers[1], odd parity the reverse. After an Upload, parity 0
// always designates buffers[0] as the source for the first dispatch.
type bufferPair struct {
	buffers [2]hal.Buffer
	groups  [2]hal.BindGroup
}

// pairFor returns the (read, write) buffer indices for a step parity.
// Exactly one buffer holds the authoritative current generation; the other
// is the write target for the next one.
func (p *bufferPair) pairFor(parity uint64) (read, write int) {
	read = int(parity % 2)
	return read, 1 - read
}
