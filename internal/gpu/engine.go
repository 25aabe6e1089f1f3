// Package gpu implements the device-resident Game of Life update engine:
// a gogpu/wgpu compute dispatch over a double-buffered cell grid with
// fenced readback into host memory.
package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

const (
	// TileSize is the square workgroup edge used to cover the grid.
	// Must match @workgroup_size in life.wgsl.
	TileSize = 8

	// cellBytes is the storage width of one cell: one u32 word.
	cellBytes = 4

	// paramsBytes is the allocated size of the uniform params buffer.
	paramsBytes = 16

	// submitTimeout bounds the fence wait after a submission.
	// A stalled device is a fatal error, not a cancellable operation.
	submitTimeout = 5 * time.Second
)

// Engine errors.
var (
	// ErrNoBackend is returned when no compute backend is registered.
	ErrNoBackend = errors.New("gpu: vulkan backend not available")

	// ErrNoAdapter is returned when the instance exposes no adapters.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrInvalidDimension is returned for a non-positive grid dimension.
	ErrInvalidDimension = errors.New("gpu: grid dimension must be >= 1")

	// ErrEngineClosed is returned when operating on a closed engine.
	ErrEngineClosed = errors.New("gpu: engine is closed")

	// ErrBadCellCount is returned when a cell slice does not hold exactly
	// one grid's worth of values.
	ErrBadCellCount = errors.New("gpu: cell slice length does not match grid")
)

// Config configures a GPU engine.
type Config struct {
	// N is the grid dimension.
	N int

	// Logger receives device selection and dispatch diagnostics.
	// Nil discards all output.
	Logger *slog.Logger
}

// Engine evolves an N×N toroidal Game of Life grid on the GPU.
//
// Two storage buffers hold consecutive generations. Each Advance issues one
// compute pass that reads the buffer selected by generation parity and
// writes the other, then copies the written buffer through a staging buffer
// back to the host. The generation counter increments only after readback
// succeeds, so a failed Advance leaves the engine exactly where it was and
// the caller may retry.
//
// Engine is single-caller: Advance, Upload and Close must not be invoked
// concurrently.
type Engine struct {
	n        int
	byteSize uint64
	logger   *slog.Logger

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	pair    bufferPair
	params  hal.Buffer
	staging hal.Buffer

	generation uint64
	scratch    []byte
}

// New acquires a compute device, builds the life pipeline and allocates the
// buffer pair plus staging memory for an N×N grid. Both generation buffers
// start zeroed; call Upload to seed generation zero.
func New(cfg Config) (*Engine, error) {
	if cfg.N < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimension, cfg.N)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		n:        cfg.N,
		byteSize: uint64(cfg.N) * uint64(cfg.N) * cellBytes,
		logger:   logger,
	}
	e.scratch = make([]byte, e.byteSize)

	if err := e.initDevice(); err != nil {
		e.Close()
		return nil, err
	}
	if err := e.createPipeline(); err != nil {
		e.Close()
		return nil, err
	}
	if err := e.createBuffers(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// initDevice opens the first discrete or integrated adapter exposed by the
// registered backend.
func (e *Engine) initDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("gpu: create instance: %w", err)
	}
	e.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("gpu: open device: %w", err)
	}
	e.device = openDev.Device
	e.queue = openDev.Queue
	e.logger.Info("gpu: adapter selected", "name", selected.Info.Name, "n", e.n)
	return nil
}

func (e *Engine) createPipeline() error {
	shader, err := e.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "life_step",
		Source: hal.ShaderSource{WGSL: lifeShaderSource},
	})
	if err != nil {
		return fmt.Errorf("gpu: compile life shader: %w", err)
	}
	e.shader = shader

	bindLayout, err := e.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "life_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group layout: %w", err)
	}
	e.bindLayout = bindLayout

	pipeLayout, err := e.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "life_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{e.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	e.pipeLayout = pipeLayout

	pipeline, err := e.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "life_pipeline", Layout: e.pipeLayout,
		Compute: hal.ComputeState{Module: e.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("gpu: create compute pipeline: %w", err)
	}
	e.pipeline = pipeline
	return nil
}

// createBuffers allocates the generation buffer pair, the uniform params
// buffer and the host-mappable staging buffer, then prebuilds one bind
// group per parity so Advance only ever indexes by t % 2.
func (e *Engine) createBuffers() error {
	for i := range e.pair.buffers {
		buf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("life_state_%d", i), Size: e.byteSize,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("gpu: create state buffer %d: %w", i, err)
		}
		e.pair.buffers[i] = buf
	}

	params, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_params", Size: paramsBytes,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create params buffer: %w", err)
	}
	e.params = params

	staging, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_staging", Size: e.byteSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	e.staging = staging

	paramsData := make([]byte, paramsBytes)
	binary.LittleEndian.PutUint32(paramsData, uint32(e.n))
	e.queue.WriteBuffer(e.params, 0, paramsData)

	for parity := range e.pair.groups {
		read, write := e.pair.pairFor(uint64(parity))
		bg, err := e.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: fmt.Sprintf("life_bind_%d", parity), Layout: e.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: e.params.NativeHandle(), Offset: 0, Size: paramsBytes}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: e.pair.buffers[read].NativeHandle(), Offset: 0, Size: e.byteSize}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: e.pair.buffers[write].NativeHandle(), Offset: 0, Size: e.byteSize}},
			},
		})
		if err != nil {
			return fmt.Errorf("gpu: create bind group %d: %w", parity, err)
		}
		e.pair.groups[parity] = bg
	}
	return nil
}

// N returns the grid dimension.
func (e *Engine) N() int { return e.n }

// Generation returns the tick counter since the last Upload.
func (e *Engine) Generation() uint64 { return e.generation }

// Upload writes cells into the parity-zero buffer, zero-fills the other and
// resets the generation counter, so the next Advance reads exactly this
// state. cells must hold n*n row-major values.
func (e *Engine) Upload(cells []uint32) error {
	if e.device == nil {
		return ErrEngineClosed
	}
	if len(cells) != e.n*e.n {
		return fmt.Errorf("%w: got %d, want %d", ErrBadCellCount, len(cells), e.n*e.n)
	}
	e.queue.WriteBuffer(e.pair.buffers[0], 0, encodeCells(cells))
	e.queue.WriteBuffer(e.pair.buffers[1], 0, make([]byte, e.byteSize))
	e.generation = 0
	return nil
}

// Advance executes one full-grid update and reads the result back into dst.
//
// The pass reads the buffer selected by the current parity and writes the
// other; the written buffer is then copied to staging, the submission is
// fenced, and the bytes are decoded only after the fence signals. dst must
// hold n*n values. On error nothing observable changed: the counter keeps
// its value and the read buffer still holds the current generation.
func (e *Engine) Advance(dst []uint32) error {
	if e.device == nil {
		return ErrEngineClosed
	}
	if len(dst) != e.n*e.n {
		return fmt.Errorf("%w: got %d, want %d", ErrBadCellCount, len(dst), e.n*e.n)
	}

	parity := e.generation % 2
	_, write := e.pair.pairFor(parity)

	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "life_encoder"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("life_step"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "life_pass"})
	pass.SetPipeline(e.pipeline)
	pass.SetBindGroup(0, e.pair.groups[parity], nil)
	tiles := uint32((e.n + TileSize - 1) / TileSize)
	pass.Dispatch(tiles, tiles, 1)
	pass.End()

	encoder.CopyBufferToBuffer(e.pair.buffers[write], e.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: e.byteSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)

	fence, err := e.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer e.device.DestroyFence(fence)

	if err := e.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	fenceOK, err := e.device.Wait(fence, 1, submitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("gpu: wait for device: ok=%v err=%w", fenceOK, err)
	}

	if err := e.queue.ReadBuffer(e.staging, 0, e.scratch); err != nil {
		return fmt.Errorf("gpu: readback: %w", err)
	}
	decodeCells(dst, e.scratch)

	e.generation++
	e.logger.Debug("gpu: generation advanced",
		"generation", e.generation, "tiles", tiles, "write_buffer", write)
	return nil
}

// Close destroys pipeline objects, buffers, device and instance.
// Safe to call more than once and on a partially constructed engine.
func (e *Engine) Close() error {
	if e.device != nil {
		for i, bg := range e.pair.groups {
			if bg != nil {
				e.device.DestroyBindGroup(bg)
				e.pair.groups[i] = nil
			}
		}
		for i, buf := range e.pair.buffers {
			if buf != nil {
				e.device.DestroyBuffer(buf)
				e.pair.buffers[i] = nil
			}
		}
		if e.staging != nil {
			e.device.DestroyBuffer(e.staging)
			e.staging = nil
		}
		if e.params != nil {
			e.device.DestroyBuffer(e.params)
			e.params = nil
		}
		if e.pipeline != nil {
			e.device.DestroyComputePipeline(e.pipeline)
			e.pipeline = nil
		}
		if e.pipeLayout != nil {
			e.device.DestroyPipelineLayout(e.pipeLayout)
			e.pipeLayout = nil
		}
		if e.bindLayout != nil {
			e.device.DestroyBindGroupLayout(e.bindLayout)
			e.bindLayout = nil
		}
		if e.shader != nil {
			e.device.DestroyShaderModule(e.shader)
			e.shader = nil
		}
		e.device.Destroy()
		e.device = nil
	}
	if e.instance != nil {
		e.instance.Destroy()
		e.instance = nil
	}
	e.queue = nil
	return nil
}

// encodeCells packs cells as little-endian u32 words for buffer upload.
func encodeCells(cells []uint32) []byte {
	out := make([]byte, len(cells)*cellBytes)
	for i, v := range cells {
		binary.LittleEndian.PutUint32(out[i*cellBytes:], v)
	}
	return out
}

// decodeCells unpacks little-endian u32 words from a readback.
func decodeCells(dst []uint32, raw []byte) {
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(raw[i*cellBytes:])
	}
}
